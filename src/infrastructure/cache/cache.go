package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultConfigTTL is the expiry used for gateway-config lookups made by the
// dispatcher.
const DefaultConfigTTL = 5 * time.Minute

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a process-local read-through cache with absolute expiry.
// Correctness never depends on cache presence, only performance: it exists
// to keep the dispatch loop from re-reading cold storage on every tick.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowFunc func() time.Time
}

func NewTTLCache() *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		nowFunc: time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (c *TTLCache) WithClock(now func() time.Time) *TTLCache {
	c.nowFunc = now
	return c
}

// GetOrLoad returns the cached value for key when present and unexpired;
// otherwise it invokes loader, stores the result with expiry now+ttl, and
// returns it. Loader errors are returned without caching.
func (c *TTLCache) GetOrLoad(key string, ttl time.Duration, loader func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.nowFunc().Before(e.expiresAt) {
		return e.value, nil
	}

	value, err := loader()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.nowFunc().Add(ttl)}
	c.mu.Unlock()
	return value, nil
}

// Invalidate removes one key immediately. Used whenever the dispatcher itself
// mutates the underlying entity so the next read reflects the write.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every key with the given prefix.
func (c *TTLCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
