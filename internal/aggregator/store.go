package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nDmitry/homepage/internal/entity"
)

// Builder produces a fresh page.
type Builder interface {
	Build(ctx context.Context) (*Report, error)
}

// Store keeps the last successfully built page for the HTTP server.
// A failed rebuild leaves the previous page in place.
type Store struct {
	builder Builder
	logger  *slog.Logger

	// Serializes builds.
	buildMu sync.Mutex

	mu       sync.RWMutex
	report   *Report
	builtAt  time.Time
	lastErr  error
	attempts int
}

func NewStore(builder Builder, logger *slog.Logger) *Store {
	return &Store{builder: builder, logger: logger}
}

// Rebuild runs a build and keeps its page if it succeeded.
func (s *Store) Rebuild(ctx context.Context) (*Report, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	report, err := s.builder.Build(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	s.lastErr = err

	if err != nil {
		if s.report != nil {
			s.logger.Warn("rebuild failed, keeping the previous page",
				slog.Time("built_at", s.builtAt),
				slog.Any("error", err))
		}

		return nil, err
	}

	s.report = report
	s.builtAt = time.Now().UTC()

	return report, nil
}

// Page returns the current page, building it first when there is none yet
// or refresh is set.
func (s *Store) Page(ctx context.Context, refresh bool) (*entity.Page, error) {
	if !refresh {
		s.mu.RLock()
		report := s.report
		s.mu.RUnlock()

		if report != nil {
			return report.Page, nil
		}
	}

	report, err := s.Rebuild(ctx)

	if err != nil {
		return nil, err
	}

	return report.Page, nil
}

// Status describes the store for health checks.
type Status struct {
	BuiltAt   time.Time `json:"builtAt"`
	Warnings  []Warning `json:"warnings"`
	LastError string    `json:"lastError,omitempty"`
	Builds    int       `json:"builds"`
	Ready     bool      `json:"ready"`
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		BuiltAt:  s.builtAt,
		Builds:   s.attempts,
		Ready:    s.report != nil,
		Warnings: []Warning{},
	}

	if s.report != nil {
		status.Warnings = s.report.Warnings
	}

	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}

	return status
}
