// Package geo implements the location resolution core: the time-bounded
// resolution cache, the country/city catalog with its provider fallback
// chain, and the tiered forward geocoder.
package geo

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is a generic time-bounded key/value cache. Expiry is evaluated
// lazily at read time; there is no background eviction. Writes are
// last-write-wins, which is acceptable for the single-writer-per-key use
// here (catalog refresh, per-query geocode results).
type Cache[K comparable, V any] struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[K]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCache creates an empty cache using the given clock for TTL checks.
func NewCache[K comparable, V any](clock clockwork.Clock) *Cache[K, V] {
	return &Cache[K, V]{
		clock:   clock,
		entries: make(map[K]cacheEntry[V]),
	}
}

// Get returns the cached value for key. A read at or after the entry's
// expiry is a miss, never a stale hit.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.Invalidate(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.clock.Now().Add(ttl)}
}

// Invalidate removes key from the cache.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
