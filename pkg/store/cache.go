package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

// Cache memoises successful fetches from an underlying Fetcher. Concurrent
// misses for the same id share one upstream call. Failures are not cached.
type Cache struct {
	fetcher Fetcher
	group   singleflight.Group

	mu      sync.RWMutex
	entries map[string]schema.ComponentSchema
}

// NewCache wraps fetcher.
func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		entries: make(map[string]schema.ComponentSchema),
	}
}

// FetchSchema implements Fetcher.
func (c *Cache) FetchSchema(ctx context.Context, componentID string) (schema.ComponentSchema, error) {
	c.mu.RLock()
	cached, ok := c.entries[componentID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// The shared fetch outlives any one caller; each caller still honours
	// its own ctx while waiting.
	upstream := context.WithoutCancel(ctx)
	results := c.group.DoChan(componentID, func() (any, error) {
		found, err := c.fetcher.FetchSchema(upstream, componentID)
		if err != nil {
			return schema.ComponentSchema{}, err
		}
		c.mu.Lock()
		c.entries[componentID] = found
		c.mu.Unlock()
		return found, nil
	})
	select {
	case <-ctx.Done():
		return schema.ComponentSchema{}, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return schema.ComponentSchema{}, res.Err
		}
		return res.Val.(schema.ComponentSchema), nil
	}
}

// Invalidate drops one cached entry.
func (c *Cache) Invalidate(componentID string) {
	c.mu.Lock()
	delete(c.entries, componentID)
	c.mu.Unlock()
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]schema.ComponentSchema)
	c.mu.Unlock()
}
