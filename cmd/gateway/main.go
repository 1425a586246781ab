package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bnb-client/internal/app"
	"bnb-client/internal/config"
	"bnb-client/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}
	cfg := config.Load()

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if cfg.Environment != "development" && cfg.Environment != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := app.NewServer(cfg, zl)

	// Run server in a separate goroutine so we can listen for shutdown signals
	go func() {
		if err := srv.Start(context.Background()); err != nil {
			zl.Fatal("gateway failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("gateway shutdown", zap.Error(err))
	}
	zl.Info("gateway stopped")
}
