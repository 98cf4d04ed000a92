package main

import (
	"sync"
	"time"
)

// FeedCache is an in-memory TTL cache for scored feeds. Entries are
// immutable once stored; a refresh replaces the whole entry so concurrent
// readers never observe a half-updated list.
type FeedCache struct {
	mu      sync.RWMutex
	entries map[string]*FeedEntry
	now     func() time.Time

	hits   int64
	misses int64
}

// NewFeedCache creates an empty cache
func NewFeedCache() *FeedCache {
	return &FeedCache{
		entries: make(map[string]*FeedEntry),
		now:     time.Now,
	}
}

// Get returns the entry for key while it is still fresh
func (c *FeedCache) Get(key string) (*FeedEntry, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || !c.now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry, true
}

// Set stores an entry, replacing any previous value for the key.
// Last writer wins; entries are idempotently recomputable.
func (c *FeedCache) Set(key string, entry *FeedEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// Delete removes a single entry
func (c *FeedCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep drops expired entries and returns how many were removed
func (c *FeedCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats returns cache counters
func (c *FeedCache) Stats() (size int, hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), c.hits, c.misses
}
