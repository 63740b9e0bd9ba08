package news

import (
	"context"
	"sync"
	"time"

	"samachar/internal/core"
)

// Store is the cache contract the proxy service depends on. Keeping it an
// interface means the in-memory cache could be swapped for an external
// key-value store without touching callers.
type Store interface {
	Get(key string) (*NewsResult, bool)
	Set(key string, value *NewsResult)
	SetWithTTL(key string, value *NewsResult, ttl time.Duration)
	Delete(key string)
	Clear()
	Sweep() int
}

type cacheEntry struct {
	value     *NewsResult
	expiresAt time.Time
}

// MemoryCache is an in-memory TTL cache for news results.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	defaultTTL time.Duration
}

// NewMemoryCache creates a cache with the given default TTL.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]cacheEntry),
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a cached value. Returns (nil, false) on miss or expiry; an
// expired entry is deleted as a side effect of the read.
func (c *MemoryCache) Get(key string) (*NewsResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !time.Now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock so a concurrent Set is not lost.
		if current, ok := c.entries[key]; ok && !time.Now().Before(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Set stores a value with the default TTL.
func (c *MemoryCache) Set(key string, value *NewsResult) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with an explicit TTL, overwriting any existing
// entry for the key.
func (c *MemoryCache) SetWithTTL(key string, value *NewsResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Delete removes a single entry. Idempotent.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Sweep scans all entries once and deletes the expired ones, returning the
// count removed. Bounds growth from keys that are set once and never read.
func (c *MemoryCache) Sweep() int {
	now := time.Now()
	removed := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper runs Sweep on the given interval until the context is
// cancelled. It runs in its own goroutine and never blocks request handling.
func (c *MemoryCache) StartSweeper(ctx context.Context, interval time.Duration, logger *core.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					logger.Debug("Cache sweep", "removed", removed, "remaining", c.Len())
				}
			}
		}
	}()
}

var _ Store = (*MemoryCache)(nil)
