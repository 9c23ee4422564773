package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-planner/internal/domain"
)

func TestSpotCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	caches := map[string]SpotCache{
		"memory": NewMemorySpotCache(),
		"redis":  NewRedisSpotCache(client),
	}
	spots := []domain.Spot{{ID: 1, Name: "大阪城", Lat: 34.69, Lon: 135.52, Type: "城"}}

	for name, cache := range caches {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, ok, err := cache.Get(ctx, "curated")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, cache.Set(ctx, "curated", spots, time.Minute))
			got, ok, err := cache.Get(ctx, "curated")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, spots, got)

			// TTL cero desactiva la caché.
			require.NoError(t, cache.Set(ctx, "nocache", spots, 0))
			_, ok, err = cache.Get(ctx, "nocache")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemorySpotCache_Expires(t *testing.T) {
	cache := NewMemorySpotCache().(*memorySpotCache)
	now := time.Now()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []domain.Spot{{ID: 1}}, time.Minute))
	now = now.Add(2 * time.Minute)
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSpotCache_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisSpotCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []domain.Spot{{ID: 1}}, time.Minute))
	mr.FastForward(2 * time.Minute)
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Nil(t, NewRedisSpotCache(nil))
}
