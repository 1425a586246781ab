// internal/handlers/bounty/bounty_handler.go
package bounty

import (
	"context"
	"net/http"

	"bnb-client/internal/domain/bounty"
	"bnb-client/internal/domain/participation"
	"bnb-client/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// API is the backend surface for events.
type API interface {
	SearchBounties(ctx context.Context, req bounty.SearchRequest) (*bounty.SearchResponse, error)
	GetBounty(ctx context.Context, id string) (*bounty.Bounty, error)
	RegisterForBounty(ctx context.Context, id string) (*bounty.RegisterResponse, error)
	BountyParticipants(ctx context.Context, bountyID string) (participation.ParticipantList, error)
}

// BalanceRefresher re-reads the session balance after a change.
type BalanceRefresher interface {
	RefreshBalance(ctx context.Context)
}

type BountyHandler struct {
	api      API
	balances BalanceRefresher
	logger   *zap.Logger
}

func NewBountyHandler(api API, balances BalanceRefresher, logger *zap.Logger) *BountyHandler {
	return &BountyHandler{
		api:      api,
		balances: balances,
		logger:   logger,
	}
}

// SearchBounties takes a search body, or builds the events screen query
// from ?status=&name=&category= when the body is empty.
func (h *BountyHandler) SearchBounties(c *gin.Context) {
	var req bounty.SearchRequest
	if c.Request.ContentLength == 0 {
		req = bounty.SectionSearch(c.Query("status"), c.Query("name"), c.Query("category"))
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.api.SearchBounties(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, "Failed to search events")
		return
	}

	response.Success(c, http.StatusOK, "events retrieved", result.Items())
}

func (h *BountyHandler) GetBounty(c *gin.Context) {
	result, err := h.api.GetBounty(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "Failed to fetch event")
		return
	}

	response.Success(c, http.StatusOK, "event retrieved", result)
}

// RegisterForBounty registers the student and refreshes their balance.
func (h *BountyHandler) RegisterForBounty(c *gin.Context) {
	id := c.Param("id")
	result, err := h.api.RegisterForBounty(c.Request.Context(), id)
	if err != nil {
		h.logger.Info("event registration failed", zap.String("bounty_id", id), zap.Error(err))
		response.FromError(c, err, "Failed to register for event")
		return
	}

	h.balances.RefreshBalance(c.Request.Context())
	response.Success(c, http.StatusOK, "registered for event", result)
}

// GetParticipants lists an event's participants (faculty and admin).
func (h *BountyHandler) GetParticipants(c *gin.Context) {
	result, err := h.api.BountyParticipants(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, "Failed to fetch participants")
		return
	}

	response.Success(c, http.StatusOK, "participants retrieved", result)
}
