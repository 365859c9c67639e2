package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/nDmitry/homepage/internal/aggregator"
	"github.com/nDmitry/homepage/internal/api/rest"
	"github.com/nDmitry/homepage/internal/cache"
	"github.com/nDmitry/homepage/internal/config"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/nDmitry/homepage/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCronSpec     = "*/30 * * * *"
	defaultBuildTimeout = 2 * time.Minute
)

// runServe serves the page over HTTP and rebuilds it on CRON_SPEC until ctx
// is canceled.
func runServe(ctx context.Context, cfg *entity.Config, logger *slog.Logger) error {
	agg, err := newAggregator(cfg, logger)

	if err != nil {
		return err
	}

	pageCache, err := newCache(ctx, logger)

	if err != nil {
		return err
	}

	defer pageCache.Close()

	store := aggregator.NewStore(agg, logger)

	sched, err := scheduler.New(
		config.GetEnvString("CRON_SPEC", defaultCronSpec),
		store,
		pageCache,
		config.GetEnvDuration("BUILD_TIMEOUT", defaultBuildTimeout),
		logger,
	)

	if err != nil {
		return err
	}

	server := rest.NewServer(pageCache, store, cfg.Site, config.GetEnvString("HTTP_SERVER_PORT", "8080"))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sched.Run(ctx)
		return nil
	})

	g.Go(func() error {
		return server.Run(ctx)
	})

	return g.Wait()
}

// newCache connects to Redis when REDIS_ADDR is set and keeps pages in
// memory otherwise.
func newCache(ctx context.Context, logger *slog.Logger) (cache.Cache, error) {
	addr := config.GetEnvString("REDIS_ADDR", "")

	if addr == "" {
		logger.Info("REDIS_ADDR is not set, caching pages in memory")
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(ctx, addr, config.GetEnvString("REDIS_PREFIX", ""))

	if err != nil {
		return nil, err
	}

	logger.Info("Caching pages in Redis", "addr", addr)

	return redisCache, nil
}
