package store

import (
	"context"
	"fmt"

	"bnb-client/internal/config"
	"bnb-client/internal/db"

	"go.uber.org/zap"
)

// Opened is a KV plus whatever connection it holds open.
type Opened struct {
	KV    KV
	close func()
}

func (o *Opened) Close() {
	if o != nil && o.close != nil {
		o.close()
	}
}

// Open builds the store selected by cfg.TokenStore.
func Open(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*Opened, error) {
	switch cfg.TokenStore {
	case config.StoreMemory:
		logger.Warn("using in-memory token store; sessions will not survive restarts")
		return &Opened{KV: NewMemoryStore()}, nil

	case config.StoreFile, "":
		fs, err := NewFileStore(cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		logger.Info("token store ready", zap.String("backend", "file"), zap.String("path", fs.Path()))
		return &Opened{KV: fs}, nil

	case config.StoreRedis:
		client, err := db.NewRedisClient(ctx, db.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("token store ready", zap.String("backend", "redis"), zap.String("addr", cfg.RedisAddr))
		return &Opened{
			KV:    NewRedisStore(client, cfg.StoreNamespace, 0),
			close: func() { _ = client.Close() },
		}, nil

	case config.StorePostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		ps := NewPostgresStore(pool, cfg.StoreNamespace)
		if err := ps.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("token store ready", zap.String("backend", "postgres"))
		return &Opened{KV: ps, close: pool.Close}, nil
	}

	return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
}
