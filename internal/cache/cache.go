// Package cache provides the in-process response cache used to memoize
// AI replies and product search results within a single service lifetime.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Cache is a key/value store with per-entry TTL. Expiry is checked lazily on
// read; there is no background sweeper. A single instance is created at
// startup and injected into consumers.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores a value under key for ttl. A zero or negative ttl makes the
// entry immediately expired.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
	}
}

// Get returns the value for key if present and unexpired. An expired entry is
// evicted and reported as a miss; stale data is never returned.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}

	return e.value, true
}

// Has reports whether key holds an unexpired value.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Remove drops one entry.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired or not. Intended for
// diagnostics only.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
