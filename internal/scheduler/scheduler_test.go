package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nDmitry/homepage/internal/aggregator"
	"github.com/nDmitry/homepage/internal/cache"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/nDmitry/homepage/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRebuilder is a mock implementation of the Rebuilder interface
type MockRebuilder struct {
	RebuildFunc func(ctx context.Context) (*aggregator.Report, error)
}

func (m *MockRebuilder) Rebuild(ctx context.Context) (*aggregator.Report, error) {
	return m.RebuildFunc(ctx)
}

func seededCache(t *testing.T) *cache.MemoryCache {
	t.Helper()

	c := cache.NewMemoryCache()

	for _, format := range []string{entity.FormatJSON, entity.FormatRSS, entity.FormatAtom} {
		require.NoError(t, c.Set(context.Background(), cache.PageKey(format), []byte("stale"), time.Hour))
	}

	return c
}

func TestScheduler_RunOnce(t *testing.T) {
	tests := []struct {
		name          string
		rebuildErr    error
		expectCleared bool
	}{
		{
			name:          "Successful rebuild invalidates cached pages",
			expectCleared: true,
		},
		{
			name:          "Failed rebuild keeps cached pages",
			rebuildErr:    errors.New("could not load datasets"),
			expectCleared: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := seededCache(t)
			store := &MockRebuilder{
				RebuildFunc: func(ctx context.Context) (*aggregator.Report, error) {
					_, hasDeadline := ctx.Deadline()
					assert.True(t, hasDeadline)

					if tt.rebuildErr != nil {
						return nil, tt.rebuildErr
					}

					return &aggregator.Report{
						Page:     &entity.Page{},
						Warnings: []aggregator.Warning{{Source: "jobs", Kind: "fetch", Message: "timeout"}},
					}, nil
				},
			}

			s, err := scheduler.New("@hourly", store, c, time.Minute, slog.Default())
			require.NoError(t, err)

			s.RunOnce(context.Background())

			for _, format := range []string{entity.FormatJSON, entity.FormatRSS, entity.FormatAtom} {
				_, err := c.Get(context.Background(), cache.PageKey(format))

				if tt.expectCleared {
					assert.ErrorIs(t, err, cache.ErrCacheMiss, format)
				} else {
					assert.NoError(t, err, format)
				}
			}
		})
	}
}

func TestScheduler_Run(t *testing.T) {
	var calls atomic.Int32

	store := &MockRebuilder{
		RebuildFunc: func(_ context.Context) (*aggregator.Report, error) {
			calls.Add(1)
			return &aggregator.Report{Page: &entity.Page{}}, nil
		},
	}

	s, err := scheduler.New("@every 1s", store, cache.NewMemoryCache(), time.Minute, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := scheduler.New("every tuesday", &MockRebuilder{}, cache.NewMemoryCache(), time.Minute, slog.Default())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron spec")
}
