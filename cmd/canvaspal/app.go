package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/canvaspal/internal/config"
	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/Sternrassler/canvaspal/pkg/client"
	"github.com/Sternrassler/canvaspal/pkg/logging"
	"github.com/Sternrassler/canvaspal/pkg/pagination"
	"github.com/Sternrassler/canvaspal/pkg/ratelimit"
	"github.com/Sternrassler/canvaspal/pkg/tokens"
)

// app is the wired pipeline shared by every command.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	pool    *tokens.Pool
	redis   *redis.Client
	tracker *ratelimit.Tracker
	client  *client.Client
	agg     *canvas.Aggregator
}

// newApp loads the token pool and builds client, fetcher and aggregator.
// An empty token directory is fatal.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := logging.NewLogger("canvaspal")

	pool, err := tokens.Load(cfg.TokenDir)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("tokens", pool.Len()).
		Str("token_dir", cfg.TokenDir).
		Msg("Loaded API tokens")

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	}

	tracker := ratelimit.NewTracker(rdb, logging.NewLogger("ratelimit"))

	c, err := client.New(client.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.HTTPTimeout,
		Pool:      pool,
		Tracker:   tracker,
	})
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, fmt.Errorf("create canvas client: %w", err)
	}

	fetcher := pagination.NewFetcher(c, pagination.DefaultConfig())

	return &app{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		redis:   rdb,
		tracker: tracker,
		client:  c,
		agg:     canvas.NewAggregator(fetcher, c.APIBase(), logging.NewLogger("aggregator")),
	}, nil
}

// Close releases the Redis connection, if any.
func (a *app) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
