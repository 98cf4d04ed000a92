package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCacheGetSet(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	cache := NewFeedCache()
	cache.now = func() time.Time { return now }

	_, ok := cache.Get("k1")
	assert.False(t, ok)

	entry := &FeedEntry{Key: "k1", FetchedAt: base, ExpiresAt: base.Add(5 * time.Minute)}
	cache.Set("k1", entry)

	got, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, entry, got)

	size, hits, misses := cache.Stats()
	assert.Equal(t, 1, size)
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestFeedCacheExpiry(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	cache := NewFeedCache()
	cache.now = func() time.Time { return now }

	cache.Set("k1", &FeedEntry{Key: "k1", ExpiresAt: base.Add(5 * time.Minute)})

	now = base.Add(4 * time.Minute)
	_, ok := cache.Get("k1")
	assert.True(t, ok)

	// Expiry boundary is exact: at ExpiresAt the entry is stale
	now = base.Add(5 * time.Minute)
	_, ok = cache.Get("k1")
	assert.False(t, ok)
}

func TestFeedCacheReplaceWhole(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewFeedCache()
	cache.now = func() time.Time { return base }

	first := &FeedEntry{Key: "k1", Articles: []ScoredArticle{{Title: "old"}}, ExpiresAt: base.Add(time.Minute)}
	second := &FeedEntry{Key: "k1", Articles: []ScoredArticle{{Title: "new"}}, ExpiresAt: base.Add(time.Minute)}

	cache.Set("k1", first)
	cache.Set("k1", second)

	got, ok := cache.Get("k1")
	require.True(t, ok)
	require.Len(t, got.Articles, 1)
	assert.Equal(t, "new", got.Articles[0].Title)
}

func TestFeedCacheSweep(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	cache := NewFeedCache()
	cache.now = func() time.Time { return now }

	cache.Set("fresh", &FeedEntry{ExpiresAt: base.Add(10 * time.Minute)})
	cache.Set("stale", &FeedEntry{ExpiresAt: base.Add(time.Minute)})

	now = base.Add(5 * time.Minute)
	removed := cache.Sweep()
	assert.Equal(t, 1, removed)

	size, _, _ := cache.Stats()
	assert.Equal(t, 1, size)

	_, ok := cache.Get("fresh")
	assert.True(t, ok)
}

func TestFeedPreferencesHashStable(t *testing.T) {
	a := FeedPreferences{Country: "us", Categories: []string{"tech", "science"}}
	b := FeedPreferences{Country: "us", Categories: []string{"science", "tech"}}
	c := FeedPreferences{Country: "us", Categories: []string{"sports"}}

	// Category order must not change the key
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}
