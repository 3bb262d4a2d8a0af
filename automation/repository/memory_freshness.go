package repository

import (
	"context"
	"sync"
	"time"
)

type MemoryFreshnessCache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	nowFn   func() time.Time
}

func NewMemoryFreshnessCache() *MemoryFreshnessCache {
	return &MemoryFreshnessCache{entries: make(map[string]time.Time), nowFn: time.Now}
}

func (c *MemoryFreshnessCache) IsFresh(_ context.Context, tenantID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exp, ok := c.entries[tenantID]
	return ok && c.nowFn().Before(exp)
}

func (c *MemoryFreshnessCache) MarkFresh(_ context.Context, tenantID string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tenantID] = c.nowFn().Add(ttl)
}

func (c *MemoryFreshnessCache) Invalidate(_ context.Context, tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
}
