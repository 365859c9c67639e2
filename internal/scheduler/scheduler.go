// Package scheduler rebuilds the page on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nDmitry/homepage/internal/aggregator"
	"github.com/nDmitry/homepage/internal/cache"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/robfig/cron/v3"
)

// Rebuilder is satisfied by *aggregator.Store.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*aggregator.Report, error)
}

type Scheduler struct {
	cron    *cron.Cron
	store   Rebuilder
	cache   cache.Cache
	timeout time.Duration
	logger  *slog.Logger
	ctx     context.Context
}

// New registers a rebuild job on spec. Each run gets timeout to finish.
func New(spec string, store Rebuilder, c cache.Cache, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		store:   store,
		cache:   c,
		timeout: timeout,
		logger:  logger,
		ctx:     context.Background(),
	}

	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	return s, nil
}

// Run builds the page once, then keeps rebuilding on schedule until ctx is
// canceled. It waits for a running build before returning.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx

	s.RunOnce(ctx)
	s.cron.Start()

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunOnce rebuilds the page and drops the cached renderings of the old one.
// A failed rebuild keeps both the previous page and the cache.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.store.Rebuild(ctx)

	if err != nil {
		s.logger.Error("Scheduled rebuild failed", "error", err)
		return
	}

	for _, w := range report.Warnings {
		s.logger.Warn("Section degraded", "source", w.Source, "kind", w.Kind, "message", w.Message)
	}

	keys := []string{
		cache.PageKey(entity.FormatJSON),
		cache.PageKey(entity.FormatRSS),
		cache.PageKey(entity.FormatAtom),
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Error("Failed to invalidate cached pages", "error", err)
	}

	s.logger.Info("Page rebuilt",
		"duration", time.Since(start),
		"posts", len(report.Page.Posts),
		"jobs", len(report.Page.Jobs),
		"warnings", len(report.Warnings))
}
