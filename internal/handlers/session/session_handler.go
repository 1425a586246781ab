// internal/handlers/session/session_handler.go
package session

import (
	"context"
	"errors"
	"net/http"

	"bnb-client/internal/domain/auth"
	xerrors "bnb-client/internal/pkg/errors"
	"bnb-client/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Manager is the session surface the gateway exposes.
type Manager interface {
	Login(ctx context.Context, name, password, role string) bool
	Logout(ctx context.Context)
	RefreshBalance(ctx context.Context)
	Restore(ctx context.Context) bool
	Current() *auth.Identity
	View() auth.SessionView
	LastError() error
}

type SessionHandler struct {
	sessions Manager
	logger   *zap.Logger
}

func NewSessionHandler(sessions Manager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Login signs in with {name,password,role}.
func (h *SessionHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if !h.sessions.Login(c.Request.Context(), req.Name, req.Password, req.Role) {
		err := h.sessions.LastError()
		h.logger.Info("gateway login failed",
			zap.String("name", req.Name),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.Error(c, loginStatus(err), xerrors.MessageOrDefault(err, "Login failed"), err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", h.sessions.Current())
}

// loginStatus is 401 for every failure except throttling and a login
// already running.
func loginStatus(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrLoginInProgress):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, xerrors.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusUnauthorized
}

func (h *SessionHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	response.Success(c, http.StatusOK, "logged out", h.sessions.View())
}

// RefreshBalance re-reads the student's berries. Failures keep the old
// balance, so it always answers with the current view.
func (h *SessionHandler) RefreshBalance(c *gin.Context) {
	h.sessions.RefreshBalance(c.Request.Context())
	response.Success(c, http.StatusOK, "balance refreshed", h.sessions.View())
}

func (h *SessionHandler) GetMe(c *gin.Context) {
	view := h.sessions.View()
	if view.User == nil {
		response.Unauthorized(c, "no active session")
		return
	}
	response.Success(c, http.StatusOK, "session retrieved", view)
}

// Restore rebuilds the session from the persisted token.
func (h *SessionHandler) Restore(c *gin.Context) {
	if !h.sessions.Restore(c.Request.Context()) {
		err := h.sessions.LastError()
		response.Error(c, http.StatusUnauthorized, xerrors.MessageOrDefault(err, "no stored session"), err)
		return
	}
	response.Success(c, http.StatusOK, "session restored", h.sessions.View())
}
