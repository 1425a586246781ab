// internal/app/router.go
package app

import (
	bountyHandler "bnb-client/internal/handlers/bounty"
	participationHandler "bnb-client/internal/handlers/participation"
	rewardHandler "bnb-client/internal/handlers/reward"
	sessionHandler "bnb-client/internal/handlers/session"
	userHandler "bnb-client/internal/handlers/user"
	wsHandler "bnb-client/internal/handlers/websocket"
	"bnb-client/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	SessionHandler       *sessionHandler.SessionHandler
	BountyHandler        *bountyHandler.BountyHandler
	RewardHandler        *rewardHandler.RewardHandler
	ParticipationHandler *participationHandler.ParticipationHandler
	UserHandler          *userHandler.UserHandler
	WSHandler            *wsHandler.WebSocketHandler
	AuthMiddleware       *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)
	api.GET("/ws/stats", h.WSHandler.GetStats)

	// ==================== Session ====================
	sessions := api.Group("/session")
	{
		sessions.POST("/login", h.SessionHandler.Login)
		sessions.POST("/logout", h.SessionHandler.Logout)
		sessions.POST("/restore", h.SessionHandler.Restore)
		sessions.GET("/me", h.SessionHandler.GetMe)
		sessions.POST("/refresh-balance", h.AuthMiddleware.RequireSession(), h.SessionHandler.RefreshBalance)
	}

	// ==================== Bounties ====================
	bounties := api.Group("/bounties")
	{
		bounties.POST("/search", h.AuthMiddleware.RequireSession(), h.BountyHandler.SearchBounties)
		bounties.GET("/:id", h.AuthMiddleware.RequireSession(), h.BountyHandler.GetBounty)
		bounties.POST("/:id/register", append(h.AuthMiddleware.StudentOnly(), h.BountyHandler.RegisterForBounty)...)
		bounties.GET("/:id/participants", append(h.AuthMiddleware.StaffOnly(), h.BountyHandler.GetParticipants)...)
	}

	// ==================== Rewards ====================
	rewards := api.Group("/rewards")
	{
		rewards.GET("", h.AuthMiddleware.RequireSession(), h.RewardHandler.ListRewards)
		rewards.GET("/claimed", h.AuthMiddleware.RequireSession(), h.RewardHandler.GetClaimed)
		rewards.POST("/:id/claim", append(h.AuthMiddleware.StudentOnly(), h.RewardHandler.ClaimReward)...)
	}

	// ==================== Participations ====================
	participations := api.Group("/participations")
	participations.Use(h.AuthMiddleware.RequireSession())
	{
		participations.GET("/history", h.ParticipationHandler.GetHistory)
	}

	// ==================== Users ====================
	users := api.Group("/users")
	{
		users.POST("", append(h.AuthMiddleware.AdminOnly(), h.UserHandler.CreateUser)...)
		users.POST("/change-password", h.AuthMiddleware.RequireSession(), h.UserHandler.ChangePassword)
	}

	logger.Debug("gateway routes registered", zap.Int("routes", len(r.Routes())))
}
