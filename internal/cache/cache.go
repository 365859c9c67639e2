// Package cache stores rendered page and feed documents between requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in the cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the interface for caching rendered output
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with optional expiration
	// If ttl is 0, the value will not be cached
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys, missing keys are ignored
	Delete(ctx context.Context, keys ...string) error

	// Close releases any resources used by the cache
	Close() error
}

// PageKey is the key of the page rendered in format.
func PageKey(format string) string {
	return "homepage:page:" + format
}
