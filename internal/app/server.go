// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bnb-client/internal/api"
	"bnb-client/internal/config"
	bountyHandler "bnb-client/internal/handlers/bounty"
	participationHandler "bnb-client/internal/handlers/participation"
	rewardHandler "bnb-client/internal/handlers/reward"
	sessionHandler "bnb-client/internal/handlers/session"
	userHandler "bnb-client/internal/handlers/user"
	wsHandler "bnb-client/internal/handlers/websocket"
	"bnb-client/internal/middleware"
	"bnb-client/internal/pkg/jwt"
	"bnb-client/internal/pkg/session"
	"bnb-client/internal/store"
	"bnb-client/internal/websocket"
	wsHandlers "bnb-client/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	logger *zap.Logger
	http   *http.Server
	store  *store.Opened
	cancel context.CancelFunc
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Gateway holds the collaborators behind the local routes.
type Gateway struct {
	Client   *api.Client
	Sessions *session.Manager
	Hub      *websocket.Hub
	Engine   *gin.Engine
}

// NewGateway wires the API client, session manager and event hub around kv
// and builds the router. The hub is not running until Run is called on it.
func NewGateway(cfg config.AppConfig, kv store.KV, decoder jwt.Decoder, logger *zap.Logger, opts ...api.Option) *Gateway {
	opts = append([]api.Option{api.WithUserAgent(cfg.UserAgent)}, opts...)
	client := api.NewClient(cfg.BackendURL, session.KVTokens{KV: kv}, logger, opts...)
	sessions := session.NewManager(client, kv, decoder, logger)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(sessions, logger)
	if err := hub.RegisterHandler(wsHandlers.NewSessionHandler(sessions)); err != nil {
		logger.Error("failed to register websocket handler", zap.Error(err))
	}

	// ----- Handlers -----
	handlers := &Handlers{
		SessionHandler:       sessionHandler.NewSessionHandler(sessions, logger),
		BountyHandler:        bountyHandler.NewBountyHandler(client, sessions, logger),
		RewardHandler:        rewardHandler.NewRewardHandler(client, sessions, logger),
		ParticipationHandler: participationHandler.NewParticipationHandler(client),
		UserHandler:          userHandler.NewUserHandler(client),
		WSHandler:            wsHandler.NewWebSocketHandler(hub, cfg.CORSOrigins, logger),
		AuthMiddleware:       middleware.NewAuthMiddleware(sessions),
	}

	// ----- Middlewares -----
	engine := gin.New()
	engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)
	SetupRouter(engine, logger, handlers)

	return &Gateway{
		Client:   client,
		Sessions: sessions,
		Hub:      hub,
		Engine:   engine,
	}
}

// Start opens the token store, restores any saved session and serves until
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	// ----- Token store -----
	opened, err := store.Open(ctx, s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	s.store = opened

	// ----- JWT -----
	decoder, err := jwt.BuildDecoder(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}
	if !decoder.Verifies() {
		s.logger.Warn("no JWT key configured; token claims are decoded without signature checks")
	}

	gw := NewGateway(s.cfg, opened.KV, decoder, s.logger)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go gw.Hub.Run(runCtx)

	if s.cfg.RestoreOnStart {
		if gw.Sessions.Restore(ctx) {
			s.logger.Info("previous session restored", zap.String("user_id", gw.Sessions.Current().ID))
		}
	}

	s.http = &http.Server{
		Addr:              s.cfg.GatewayAddr,
		Handler:           gw.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("gateway listening",
		zap.String("addr", s.cfg.GatewayAddr),
		zap.String("backend", gw.Client.BaseURL()),
		zap.String("token_store", s.cfg.TokenStore),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server, the hub and the token store.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.store != nil {
		s.store.Close()
	}
	return err
}
