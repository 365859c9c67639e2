package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis at addr. Every key is stored under prefix
// so several sites can share one instance.
func NewRedisCache(ctx context.Context, addr, prefix string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client, prefix: prefix}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}

		return nil, err
	}

	return val, nil
}

// Set stores a value in Redis with the specified TTL
// If ttl is 0, the value will not be cached
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		return nil
	}

	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))

	for _, k := range keys {
		prefixed = append(prefixed, c.prefix+k)
	}

	return c.client.Del(ctx, prefixed...).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
