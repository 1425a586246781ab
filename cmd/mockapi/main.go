package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bnb-client/internal/config"
	"bnb-client/internal/db"
	"bnb-client/internal/mockapi"
	"bnb-client/internal/pkg/jwt"
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

	// The mock signs its own tokens; fall back to the dev secret when no
	// key material is configured.
	jwtCfg := cfg.JWT
	if jwtCfg.PrivPath == "" && jwtCfg.Secret == "" {
		jwtCfg.Secret = cfg.MockSecret
	}
	gen, err := jwt.BuildGenerator(jwtCfg, cfg.MockSecret)
	if err != nil {
		zl.Fatal("failed to build token generator", zap.Error(err))
	}
	dec, err := jwt.BuildDecoder(jwtCfg)
	if err != nil {
		zl.Fatal("failed to build token verifier", zap.Error(err))
	}

	opts := mockapi.Options{Generator: gen, Decoder: dec, Logger: zl}
	if cfg.MockLimiter == config.StoreRedis {
		client, err := db.NewRedisClient(context.Background(), db.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			zl.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		opts.Limiter = mockapi.NewRedisLimiter(client)
		zl.Info("login limiter backed by redis", zap.String("addr", cfg.RedisAddr))
	}

	mock, err := mockapi.New(opts)
	if err != nil {
		zl.Fatal("failed to build mock backend", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.MockAddr,
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("mock backend listening", zap.String("addr", cfg.MockAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("mock backend failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down mock backend")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("mock backend shutdown", zap.Error(err))
	}
}
