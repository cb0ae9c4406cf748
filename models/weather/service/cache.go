package service

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a resolved forecast is served without
// refetching.
const DefaultCacheTTL = 3 * time.Hour

// ForecastCache stores encoded forecast payloads by key. Implementations
// treat any backend failure as a miss.
type ForecastCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

type cacheEntry struct {
	value    []byte
	storedAt time.Time
}

// MemoryCache is a process-local ForecastCache. Stale entries are evicted
// when read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	clock   func() time.Time
}

func NewMemoryCache(ttl time.Duration, clock func() time.Time) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return append([]byte(nil), entry.value...), true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:    append([]byte(nil), value...),
		storedAt: c.clock(),
	}
}

// Len reports the number of entries held, stale ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
