package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

const (
	catalogListKey    = "catalog:cakes"
	catalogCakePrefix = "catalog:cake:"
)

// CatalogCache keeps the upstream cake list and single cakes in Redis.
type CatalogCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(redis *RedisClient, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		redis: redis,
		ttl:   ttl,
	}
}

// SetList stores the full cake list and refreshes every per-cake entry.
func (c *CatalogCache) SetList(ctx context.Context, cakes []models.Product) error {
	jsonData, err := json.Marshal(cakes)
	if err != nil {
		return fmt.Errorf("failed to marshal cake list: %w", err)
	}
	if err := c.redis.Set(ctx, catalogListKey, string(jsonData), c.ttl); err != nil {
		return fmt.Errorf("failed to set cake list: %w", err)
	}
	for i := range cakes {
		if err := c.SetCake(ctx, &cakes[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetList returns the cached cake list or ErrMiss.
func (c *CatalogCache) GetList(ctx context.Context) ([]models.Product, error) {
	jsonData, err := c.redis.Get(ctx, catalogListKey)
	if err != nil {
		return nil, err
	}
	var cakes []models.Product
	if err := json.Unmarshal([]byte(jsonData), &cakes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cake list: %w", err)
	}
	return cakes, nil
}

// SetCake stores a single cake.
func (c *CatalogCache) SetCake(ctx context.Context, cake *models.Product) error {
	if cake.ID == "" {
		return nil
	}
	jsonData, err := json.Marshal(cake)
	if err != nil {
		return fmt.Errorf("failed to marshal cake: %w", err)
	}
	return c.redis.Set(ctx, catalogCakePrefix+cake.ID, string(jsonData), c.ttl)
}

// GetCake returns a cached cake or ErrMiss.
func (c *CatalogCache) GetCake(ctx context.Context, id string) (*models.Product, error) {
	jsonData, err := c.redis.Get(ctx, catalogCakePrefix+id)
	if err != nil {
		return nil, err
	}
	var cake models.Product
	if err := json.Unmarshal([]byte(jsonData), &cake); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cake: %w", err)
	}
	return &cake, nil
}

// Invalidate drops the list and every cached cake.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Delete(ctx, catalogListKey); err != nil {
		return err
	}
	return c.redis.DeletePattern(ctx, catalogCakePrefix+"*")
}
