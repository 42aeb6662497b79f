package fakes

import (
	"context"
	"sync"
)

// MemoryCache imita o RedisClient usado pelo cache de contagens: valores,
// registries (sets) e contadores. Com Err definido, toda chamada falha.
type MemoryCache struct {
	mu       sync.Mutex
	values   map[string]string
	sets     map[string]map[string]struct{}
	counters map[string]int64
	Err      error
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		values:   make(map[string]string),
		sets:     make(map[string]map[string]struct{}),
		counters: make(map[string]int64),
	}
}

func (c *MemoryCache) GetKey(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", false, c.Err
	}
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *MemoryCache) SetWithRegistry(ctx context.Context, cacheKey string, cacheValue string, registryKeys []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.values[cacheKey] = cacheValue
	for _, registryKey := range registryKeys {
		if c.sets[registryKey] == nil {
			c.sets[registryKey] = make(map[string]struct{})
		}
		c.sets[registryKey][cacheKey] = struct{}{}
	}
	return nil
}

func (c *MemoryCache) GetMultipleSetMembers(ctx context.Context, keys []string) (map[string][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	members := make(map[string][]string, len(keys))
	for _, key := range keys {
		values := make([]string, 0, len(c.sets[key]))
		for member := range c.sets[key] {
			values = append(values, member)
		}
		members[key] = values
	}
	return members, nil
}

func (c *MemoryCache) InvalidateKeys(ctx context.Context, keys []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	for _, key := range keys {
		delete(c.values, key)
		delete(c.sets, key)
	}
	return nil
}

func (c *MemoryCache) GetCounter(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.counters[key], nil
}

func (c *MemoryCache) IncrCounter(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	c.counters[key]++
	return c.counters[key], nil
}

// Keys conta os valores guardados, sem registries e contadores.
func (c *MemoryCache) Keys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
