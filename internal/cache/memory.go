package cache

import (
	"sync"
	"time"
)

// MemoryCache is the fast ephemeral tier: a mutex-guarded map with lazy
// TTL expiry. It is constructed explicitly and injected, never a package
// singleton, so tests can instantiate isolated caches.
type MemoryCache struct {
	now func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock injects a clock so expiry tests need not sleep.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{now: now, entries: make(map[string]Entry)}
}

// Set stores an entry under the key, replacing any previous one.
func (c *MemoryCache) Set(key string, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	return nil
}

// Get returns the live entry for the key. Expired entries are deleted and
// reported absent.
func (c *MemoryCache) Get(key string) (Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if e.Expired(c.now()) {
		delete(c.entries, key)
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Delete removes the exact key. Unknown keys are a no-op.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	return nil
}

// Len reports the number of physically present entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
