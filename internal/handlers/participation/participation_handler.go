// internal/handlers/participation/participation_handler.go
package participation

import (
	"context"
	"net/http"
	"time"

	"bnb-client/internal/domain/participation"
	"bnb-client/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type API interface {
	MyParticipations(ctx context.Context) (*participation.MyParticipationsResponse, error)
}

type ParticipationHandler struct {
	api API
	now func() time.Time
}

func NewParticipationHandler(api API) *ParticipationHandler {
	return &ParticipationHandler{
		api: api,
		now: time.Now,
	}
}

// GetHistory renders participations as transactions, optionally filtered
// by ?type=earned|registered.
func (h *ParticipationHandler) GetHistory(c *gin.Context) {
	result, err := h.api.MyParticipations(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "Failed to fetch transactions")
		return
	}

	txs := participation.History(result.Items(), c.Query("type"), h.now())
	response.Success(c, http.StatusOK, "history retrieved", gin.H{
		"transactions": txs,
		"totalEarned":  participation.TotalEarned(txs),
	})
}
