package database

import (
	"context"
	"sync"

	"github.com/ds124wfegd/autotagger/internal/entity"
)

// memoryTagCache lives as long as the process, entries are never evicted.
type memoryTagCache struct {
	mu    sync.RWMutex
	items map[string]entity.TagResult
}

func NewMemoryTagCache() TagCache {
	return &memoryTagCache{items: make(map[string]entity.TagResult)}
}

func (c *memoryTagCache) Get(_ context.Context, key string) (*entity.TagResult, bool, error) {
	c.mu.RLock()
	result, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	clone := result.Clone()
	return &clone, true, nil
}

func (c *memoryTagCache) Set(_ context.Context, key string, result *entity.TagResult) error {
	if result == nil {
		return nil
	}
	c.mu.Lock()
	c.items[key] = result.Clone()
	c.mu.Unlock()
	return nil
}

func (c *memoryTagCache) Len(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.items)), nil
}
