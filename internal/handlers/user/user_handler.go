// internal/handlers/user/user_handler.go
package user

import (
	"context"
	"encoding/json"
	"net/http"

	"bnb-client/internal/domain/shared"
	"bnb-client/internal/domain/user"
	"bnb-client/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type API interface {
	CreateUser(ctx context.Context, req user.CreateUserRequest) (json.RawMessage, error)
	ChangePassword(ctx context.Context, req user.ChangePasswordRequest) (*shared.MessageResponse, error)
}

type UserHandler struct {
	api API
}

func NewUserHandler(api API) *UserHandler {
	return &UserHandler{api: api}
}

// CreateUser creates an account (admin only).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.api.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, "Failed to create user")
		return
	}

	response.Success(c, http.StatusCreated, "user created successfully", result)
}

type changePasswordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword checks the password rules locally before calling the
// backend.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var body changePasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	req := user.ChangePasswordRequest{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
		ConfirmPassword: body.ConfirmPassword,
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error(), err, user.CheckPassword(req.NewPassword))
		return
	}

	result, err := h.api.ChangePassword(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, "Failed to change password")
		return
	}

	response.Success(c, http.StatusOK, result.MessageOr("password changed successfully"), nil)
}
