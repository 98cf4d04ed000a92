package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic maintenance jobs: cache sweeping and trend
// refreshes
type Scheduler struct {
	cron    *cron.Cron
	cache   *FeedCache
	curator *FeedCurator
	trends  *TrendTable
}

// NewScheduler wires the maintenance jobs
func NewScheduler(cache *FeedCache, curator *FeedCurator, trends *TrendTable) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cache:   cache,
		curator: curator,
		trends:  trends,
	}
}

// Start registers and starts all jobs
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.sweepCache); err != nil {
		return NewError(ErrorTypeInternal, "SCHED_001", "failed to schedule cache sweep", err)
	}
	if _, err := s.cron.AddFunc("0 * * * *", s.refreshTrends); err != nil {
		return NewError(ErrorTypeInternal, "SCHED_001", "failed to schedule trend refresh", err)
	}

	s.cron.Start()
	Logger().Info("Scheduler started")
	return nil
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	Logger().Info("Scheduler stopped")
}

// sweepCache drops expired feed entries
func (s *Scheduler) sweepCache() {
	defer RecoverFromPanic("sweep-cache")

	if removed := s.cache.Sweep(); removed > 0 {
		Logger().Debug("Cache sweep removed %d expired entries", removed)
	}
}

// refreshTrends recounts trending topic volume from current headlines
func (s *Scheduler) refreshTrends() {
	defer RecoverFromPanic("refresh-trends")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	articles := s.curator.Headlines(ctx)
	if len(articles) == 0 {
		Logger().Debug("Trend refresh skipped, no headlines available")
		return
	}

	s.trends.Refresh(articles)
	Logger().Info("Trending topics refreshed from %d headlines", len(articles))
}
