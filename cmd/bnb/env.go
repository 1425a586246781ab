package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"bnb-client/internal/api"
	"bnb-client/internal/config"
	"bnb-client/internal/pkg/jwt"
	"bnb-client/internal/pkg/logger"
	"bnb-client/internal/pkg/session"
	"bnb-client/internal/store"

	"go.uber.org/zap"
)

type envOptions struct {
	Backend string
	Store   string
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// env is what every command runs against.
type env struct {
	cfg      config.AppConfig
	logger   *zap.Logger
	store    *store.Opened
	client   *api.Client
	sessions *session.Manager
	out      io.Writer
}

func newEnv(ctx context.Context, opts envOptions) (*env, error) {
	cfg := config.Load()
	if opts.Backend != "" {
		cfg.BackendURL = strings.TrimRight(opts.Backend, "/")
	}
	if opts.Store != "" {
		cfg.TokenStore = strings.ToLower(opts.Store)
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	zl, err := logger.New(cfg.Environment, level)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	opened, err := store.Open(ctx, cfg, zl)
	if err != nil {
		zl.Sync()
		return nil, fmt.Errorf("open token store: %w", err)
	}

	decoder, err := jwt.BuildDecoder(cfg.JWT)
	if err != nil {
		opened.Close()
		zl.Sync()
		return nil, fmt.Errorf("load JWT verifier: %w", err)
	}

	client := api.NewClient(cfg.BackendURL, session.KVTokens{KV: opened.KV}, zl, api.WithUserAgent(cfg.UserAgent))
	return &env{
		cfg:      cfg,
		logger:   zl,
		store:    opened,
		client:   client,
		sessions: session.NewManager(client, opened.KV, decoder, zl),
		out:      opts.Stdout,
	}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.logger.Sync()
}

// print writes v as indented JSON.
func (e *env) print(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}
