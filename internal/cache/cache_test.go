package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_storefront/internal/config"
	"github.com/GTDGit/bakery_storefront/internal/models"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client, err := NewRedisClient(&config.RedisConfig{Host: m.Host(), Port: m.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, m
}

func TestRedisClient_GetMiss(t *testing.T) {
	r, _ := newTestRedis(t)

	_, err := r.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, r.Ping(context.Background()))
}

func TestCartCache_LoadSave(t *testing.T) {
	r, m := newTestRedis(t)
	c := NewCartCache(r, time.Hour)
	ctx := context.Background()

	data, err := c.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, c.Save(ctx, "s1", []byte(`[{"productId":"1"}]`)))

	data, err = c.Load(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"1"}]`, string(data))
	assert.Equal(t, time.Hour, m.TTL("cart:s1"))

	require.NoError(t, c.Delete(ctx, "s1"))
	assert.False(t, m.Exists("cart:s1"))
}

func TestCartCache_Expires(t *testing.T) {
	r, m := newTestRedis(t)
	c := NewCartCache(r, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "s1", []byte(`[]`)))
	m.FastForward(2 * time.Minute)

	data, err := c.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCartCache_LoadError(t *testing.T) {
	r, m := newTestRedis(t)
	c := NewCartCache(r, time.Minute)

	m.SetError("boom")
	_, err := c.Load(context.Background(), "s1")
	assert.Error(t, err)
}

func TestCatalogCache_ListAndCake(t *testing.T) {
	r, _ := newTestRedis(t)
	c := NewCatalogCache(r, time.Minute)
	ctx := context.Background()

	_, err := c.GetList(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	cakes := []models.Product{
		{ID: "a", Title: "Truffle", Variants: []models.Variant{{Label: "1 Kg", Price: &models.VariantPrice{OriginalPrice: 500, DiscountedPrice: 450}}}},
		{ID: "b", Title: "Black Forest"},
	}
	require.NoError(t, c.SetList(ctx, cakes))

	got, err := c.GetList(ctx)
	require.NoError(t, err)
	assert.Equal(t, cakes, got)

	one, err := c.GetCake(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Truffle", one.Title)
	assert.Equal(t, 450.0, one.Variants[0].Price.DiscountedPrice)

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.GetList(ctx)
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.GetCake(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
}
