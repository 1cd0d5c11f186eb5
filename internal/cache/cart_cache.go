package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CartCache stores serialized carts in Redis, one key per cart session.
// It satisfies cart.Storage.
type CartCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewCartCache creates a new CartCache. Every save refreshes the TTL so an
// active cart never expires.
func NewCartCache(redis *RedisClient, ttl time.Duration) *CartCache {
	return &CartCache{
		redis: redis,
		ttl:   ttl,
	}
}

// key returns the Redis key for a cart session.
func (c *CartCache) key(session string) string {
	return fmt.Sprintf("cart:%s", session)
}

// Load returns the stored record, or nil when the session has none.
func (c *CartCache) Load(ctx context.Context, session string) ([]byte, error) {
	data, err := c.redis.Get(ctx, c.key(session))
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return []byte(data), nil
}

// Save overwrites the stored record.
func (c *CartCache) Save(ctx context.Context, session string, data []byte) error {
	if err := c.redis.Set(ctx, c.key(session), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete drops the stored record.
func (c *CartCache) Delete(ctx context.Context, session string) error {
	return c.redis.Delete(ctx, c.key(session))
}
