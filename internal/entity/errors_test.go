package entity_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"

	"github.com/nDmitry/homepage/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestFetchError_Retryable(t *testing.T) {
	tests := []struct {
		name     string
		err      *entity.FetchError
		expected bool
	}{
		{
			name:     "Server error",
			err:      &entity.FetchError{StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")},
			expected: true,
		},
		{
			name:     "Too many requests",
			err:      &entity.FetchError{StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")},
			expected: true,
		},
		{
			name:     "Not found",
			err:      &entity.FetchError{StatusCode: http.StatusNotFound, Err: errors.New("not found")},
			expected: false,
		},
		{
			name:     "Connection refused",
			err:      &entity.FetchError{Err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED)},
			expected: true,
		},
		{
			name:     "Deadline exceeded",
			err:      &entity.FetchError{Err: context.DeadlineExceeded},
			expected: false,
		},
		{
			name:     "Unknown cause",
			err:      &entity.FetchError{Err: errors.New("boom")},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Retryable())
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	fetchErr := fmt.Errorf("posts: %w", &entity.FetchError{Source: "feed", URL: "https://example.com", Err: errors.New("down")})
	parseErr := fmt.Errorf("posts: %w", &entity.ParseError{Source: "feed", Err: errors.New("bad xml")})
	shapeErr := fmt.Errorf("posts: %w", &entity.DataShapeError{Source: "listing", Item: "x", Field: "authors", Message: "mismatch"})

	assert.True(t, entity.IsFetchError(fetchErr))
	assert.False(t, entity.IsFetchError(parseErr))
	assert.True(t, entity.IsParseError(parseErr))
	assert.False(t, entity.IsParseError(shapeErr))
	assert.True(t, entity.IsDataShapeError(shapeErr))
	assert.False(t, entity.IsDataShapeError(fetchErr))

	assert.Contains(t, shapeErr.Error(), `invalid authors of "x": mismatch`)
	assert.Contains(t, fetchErr.Error(), "feed: fetch https://example.com: down")
}
