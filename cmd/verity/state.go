package main

import (
	"sync"
	"time"
)

// appState tracks runtime counters for the status endpoint
type appState struct {
	mu sync.RWMutex

	startTime         time.Time
	verifyCount       int64
	chatCount         int64
	feedCount         int64
	lastVerifyAt      time.Time
	lastFeedRefreshAt time.Time
}

var state = &appState{startTime: time.Now()}

func (s *appState) recordVerify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifyCount++
	s.lastVerifyAt = time.Now()
}

func (s *appState) recordChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatCount++
}

func (s *appState) recordFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedCount++
	s.lastFeedRefreshAt = time.Now()
}

// StatusSnapshot is the JSON body of the status endpoint
type StatusSnapshot struct {
	Uptime       string    `json:"uptime"`
	VerifyCount  int64     `json:"verify_count"`
	ChatCount    int64     `json:"chat_count"`
	FeedCount    int64     `json:"feed_count"`
	LastVerifyAt time.Time `json:"last_verify_at,omitempty"`
	CacheSize    int       `json:"cache_size"`
	CacheHits    int64     `json:"cache_hits"`
	CacheMisses  int64     `json:"cache_misses"`
	Monitors     int       `json:"monitor_clients"`
}

func (s *appState) snapshot(cache *FeedCache, hub *MonitorHub) StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size, hits, misses := cache.Stats()
	snap := StatusSnapshot{
		Uptime:       FormatDuration(time.Since(s.startTime)),
		VerifyCount:  s.verifyCount,
		ChatCount:    s.chatCount,
		FeedCount:    s.feedCount,
		LastVerifyAt: s.lastVerifyAt,
		CacheSize:    size,
		CacheHits:    hits,
		CacheMisses:  misses,
	}
	if hub != nil {
		snap.Monitors = hub.ClientCount()
	}
	return snap
}
