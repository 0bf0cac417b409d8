package inflow

import (
	"sync"
	"time"
)

// readCache caches GET response bodies keyed by the normalized request
// (method + path + encoded query). Entries expire after a TTL and the cache
// holds at most maxEntries, evicting oldest-first; without the bound the
// cache would grow for the life of the process.
type readCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	order      []string
	ttl        time.Duration
	maxEntries int
}

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

func newReadCache(ttl time.Duration, maxEntries int) *readCache {
	return &readCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *readCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.remove(key)
		return nil, false
	}
	return entry.body, true
}

func (c *readCache) set(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{
		body:      body,
		expiresAt: time.Now().Add(c.ttl),
	}

	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		c.remove(c.order[0])
	}
}

func (c *readCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// remove expects c.mu to be held
func (c *readCache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *readCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
