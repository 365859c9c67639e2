// Package retry re-runs source fetches that failed for a transient reason.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/entity"
)

type Config struct {
	// 1 means a single attempt without retries.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Fraction of the delay added as random jitter, 0 to 1.
	JitterFraction float64
}

// NoRetry makes exactly one attempt.
func NoRetry() Config {
	return Config{MaxAttempts: 1}
}

// FromEntity converts the file configuration.
func FromEntity(c entity.RetryConfig) Config {
	return Config{
		MaxAttempts:    c.MaxAttempts,
		InitialDelay:   time.Duration(c.InitialDelay),
		MaxDelay:       time.Duration(c.MaxDelay),
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff calls fn until it succeeds, returns a non-retryable error or
// runs out of attempts. The last error is returned unwrapped so callers can
// still classify it.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	attempts := max(cfg.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()

		if lastErr == nil {
			if attempt > 1 {
				app.Logger().Info("fetch succeeded after retry", slog.Int("attempt", attempt))
			}

			return nil
		}

		if !IsRetryable(lastErr) || attempt == attempts {
			return lastErr
		}

		delay := cfg.Delay(attempt)

		app.Logger().Warn("fetch failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", errors.Join(ctx.Err(), lastErr))
		}
	}

	return lastErr
}

// Delay is the sleep after the given failed attempt, counted from 1. The
// base delay grows without jitter so jitter never compounds, and the jittered
// sleep stays within MaxDelay.
func (c Config) Delay(attempt int) time.Duration {
	base := float64(c.InitialDelay)

	for i := 1; i < attempt; i++ {
		base *= max(c.Multiplier, 1)

		if c.MaxDelay > 0 && base >= float64(c.MaxDelay) {
			break
		}
	}

	delay := time.Duration(base)

	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}

	delay = addJitter(delay, c.JitterFraction)

	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}

	return delay
}

// IsRetryable is true only for fetch errors with a transient cause.
// Parse and data shape errors would fail the same way again.
func IsRetryable(err error) bool {
	var fetchErr *entity.FetchError

	if !errors.As(err, &fetchErr) {
		return false
	}

	return fetchErr.Retryable()
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}

	fraction = min(fraction, 1.0)

	// #nosec G404 -- jitter does not need a cryptographic source.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
