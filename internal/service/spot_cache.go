package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-planner/internal/domain"
)

// SpotCache guarda resultados de Overpass por clave de consulta.
type SpotCache interface {
	// Get devuelve ok=false si la clave no está o ha caducado.
	Get(ctx context.Context, key string) ([]domain.Spot, bool, error)
	Set(ctx context.Context, key string, spots []domain.Spot, ttl time.Duration) error
}

type memorySpotEntry struct {
	spots     []domain.Spot
	expiresAt time.Time
}

type memorySpotCache struct {
	mu      sync.Mutex
	entries map[string]memorySpotEntry
	now     func() time.Time
}

func NewMemorySpotCache() SpotCache {
	return &memorySpotCache{
		entries: make(map[string]memorySpotEntry),
		now:     time.Now,
	}
}

func (c *memorySpotCache) Get(_ context.Context, key string) ([]domain.Spot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.spots, true, nil
}

func (c *memorySpotCache) Set(_ context.Context, key string, spots []domain.Spot, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// Barrido perezoso para que las consultas libres no acumulen entradas caducadas.
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memorySpotEntry{spots: spots, expiresAt: now.Add(ttl)}
	return nil
}

type redisSpotCache struct {
	client redis.Cmdable
	prefix string
}

func NewRedisSpotCache(client redis.Cmdable) SpotCache {
	if client == nil {
		return nil
	}
	return &redisSpotCache{client: client, prefix: "spots:"}
}

func (c *redisSpotCache) Get(ctx context.Context, key string) ([]domain.Spot, bool, error) {
	payload, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var spots []domain.Spot
	if err := json.Unmarshal(payload, &spots); err != nil {
		return nil, false, err
	}
	return spots, true, nil
}

func (c *redisSpotCache) Set(ctx context.Context, key string, spots []domain.Spot, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(spots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, payload, ttl).Err()
}
