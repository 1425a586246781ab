// internal/handlers/reward/reward_handler.go
package reward

import (
	"context"
	"net/http"
	"time"

	"bnb-client/internal/domain/reward"
	"bnb-client/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// API is the backend surface for rewards.
type API interface {
	ListRewards(ctx context.Context) (reward.List, error)
	ClaimReward(ctx context.Context, id string) (*reward.ClaimResponse, error)
	ClaimedRewards(ctx context.Context) (reward.ClaimedList, error)
}

type BalanceRefresher interface {
	RefreshBalance(ctx context.Context)
}

type RewardHandler struct {
	api      API
	balances BalanceRefresher
	logger   *zap.Logger
	now      func() time.Time
}

func NewRewardHandler(api API, balances BalanceRefresher, logger *zap.Logger) *RewardHandler {
	return &RewardHandler{
		api:      api,
		balances: balances,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *RewardHandler) ListRewards(c *gin.Context) {
	result, err := h.api.ListRewards(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "Failed to fetch rewards")
		return
	}

	response.Success(c, http.StatusOK, "rewards retrieved", result)
}

// ClaimReward spends berries on a reward and refreshes the balance.
func (h *RewardHandler) ClaimReward(c *gin.Context) {
	id := c.Param("id")
	result, err := h.api.ClaimReward(c.Request.Context(), id)
	if err != nil {
		h.logger.Info("reward claim failed", zap.String("reward_id", id), zap.Error(err))
		response.FromError(c, err, "Failed to claim reward")
		return
	}

	h.balances.RefreshBalance(c.Request.Context())
	response.Success(c, http.StatusOK, "reward claimed", result)
}

// GetClaimed lists claimed rewards, narrowed by
// ?section=active|redeemed|expiring|expired.
func (h *RewardHandler) GetClaimed(c *gin.Context) {
	result, err := h.api.ClaimedRewards(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "Failed to fetch claimed rewards")
		return
	}

	items := []reward.ClaimedReward(result)
	if section := c.Query("section"); section != "" {
		items = reward.FilterClaimed(items, section, h.now())
	}
	if items == nil {
		items = []reward.ClaimedReward{}
	}

	response.Success(c, http.StatusOK, "claimed rewards retrieved", items)
}
