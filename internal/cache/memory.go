package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local Cache used when no Redis address is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// The entry may have been replaced since the read lock was released.
		if current, ok := c.entries[key]; ok && !c.now().Before(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		return nil, ErrCacheMiss
	}

	return entry.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()

	for _, k := range keys {
		delete(c.entries, k)
	}

	c.mu.Unlock()

	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()

	return nil
}
