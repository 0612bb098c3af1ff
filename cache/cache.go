// Package cache implements a bounded, TTL-based in-memory cache for
// metadata lookups.
package cache

import (
	"sync"
	"time"
)

// entry pairs a cached value with its insertion time. An entry whose age
// exceeds the cache TTL is logically absent even before it is swept.
type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a mutex-serialized map with a TTL and a hard entry cap.
//
// Eviction is deliberately coarse: when a Put would push the cache past its
// cap, the entire cache is cleared first. There is no LRU bookkeeping, so a
// burst of unique keys causes a full reset rather than incremental eviction.
type Cache[V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry[V]
	now        func() time.Time
}

// New creates a cache holding at most maxEntries values, each fresh for ttl.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry[V]),
		now:        time.Now,
	}
}

// Get returns the fresh value for key. A stale entry is removed and reported
// as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key. If the cache is already at capacity, every
// existing entry is dropped before the insert.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.entries = make(map[string]entry[V])
	}
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len returns the number of physically present entries, stale ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
