// Package infra provides the shared storage infrastructure: the in-process
// document cache and per-tenant secondary index maintenance.
package infra

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a cache entry stays valid.
const DefaultTTL = 60 * time.Second

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// Cache is a process-local TTL cache of small JSON documents keyed by
// storage path.
//
// The cache is advisory: every write path updates its entry so readers see
// their own writes within the process, while other processes observe up to
// TTL of staleness. Entries are never evicted proactively, so memory grows
// with the number of distinct paths touched over the process lifetime.
//
// Construct explicitly and inject; there is no package-level instance.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time // Overridable in tests.
	entries map[string]cacheEntry
}

// NewCache creates a cache with the given TTL. A zero ttl means [DefaultTTL].
func NewCache(ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key if it was set within the TTL window.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, resetting its TTL window.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

// Invalidate removes every entry whose key starts with prefix.
// Passing a tenant id drops everything cached for that tenant.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear empties the cache. Exposed for tests and lifecycle hooks.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
