package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
)

// stubFeedProvider serves a fixed article list and counts fetches
type stubFeedProvider struct {
	name     string
	articles []ScoredArticle
	err      error
	calls    int
}

func (p *stubFeedProvider) Name() string { return p.name }

func (p *stubFeedProvider) Fetch(ctx context.Context, prefs FeedPreferences) ([]ScoredArticle, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return append([]ScoredArticle(nil), p.articles...), nil
}

func newTestCurator(headline, category, local FeedProvider, clock func() time.Time) (*FeedCurator, *FeedCache) {
	cache := NewFeedCache()
	cache.now = clock
	curator := &FeedCurator{
		headline:   headline,
		category:   category,
		local:      local,
		sources:    NewSourceTable(),
		cache:      cache,
		trends:     NewTrendTable(),
		ttl:        5 * time.Minute,
		maxFeed:    50,
		maxCurated: 20,
		now:        clock,
		folder:     cases.Fold(),
	}
	return curator, cache
}

func fixedArticle(title, source, category string, age time.Duration, base time.Time) ScoredArticle {
	return ScoredArticle{
		ID:          title,
		Title:       title,
		Description: "description for " + title,
		URL:         "https://example.com/" + title,
		Source:      source,
		Category:    category,
		PublishedAt: base.Add(-age),
	}
}

func TestFeedDeduplicatesByTitlePrefix(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	// Same title in different case from two providers; first provider wins
	headline := &stubFeedProvider{name: "headlines", articles: []ScoredArticle{
		fixedArticle("Climate Summit Reaches Historic Agreement On Targets", "Reuters", "environment", time.Hour, base),
	}}
	category := &stubFeedProvider{name: "categories", articles: []ScoredArticle{
		{
			ID:          "dup",
			Title:       "CLIMATE SUMMIT REACHES HISTORIC AGREEMENT ON TARGETS",
			Source:      "Other Wire",
			Category:    "environment",
			PublishedAt: base.Add(-time.Hour),
		},
	}}
	local := &stubFeedProvider{name: "local"}

	curator, _ := newTestCurator(headline, category, local, clock)

	entry, err := curator.Feed(context.Background(), "u1", FeedPreferences{})
	require.NoError(t, err)

	require.Len(t, entry.Articles, 1)
	assert.Equal(t, "Reuters", entry.Articles[0].Source)
}

func TestFeedCacheHitAndExpiry(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	clock := func() time.Time { return now }

	headline := &stubFeedProvider{name: "headlines", articles: []ScoredArticle{
		fixedArticle("Story one about markets", "Reuters", "business", time.Hour, base),
	}}
	category := &stubFeedProvider{name: "categories"}
	local := &stubFeedProvider{name: "local"}

	curator, _ := newTestCurator(headline, category, local, clock)
	prefs := FeedPreferences{Categories: []string{"business"}}

	first, err := curator.Feed(context.Background(), "u1", prefs)
	require.NoError(t, err)
	assert.Equal(t, 1, headline.calls)

	// Within the TTL the cached entry is served unchanged
	now = base.Add(4 * time.Minute)
	second, err := curator.Feed(context.Background(), "u1", prefs)
	require.NoError(t, err)
	assert.Equal(t, 1, headline.calls)
	assert.Equal(t, first.FetchedAt, second.FetchedAt)
	assert.Equal(t, first.Articles, second.Articles)

	// Past the TTL a fresh fetch replaces the whole entry
	now = base.Add(6 * time.Minute)
	third, err := curator.Feed(context.Background(), "u1", prefs)
	require.NoError(t, err)
	assert.Equal(t, 2, headline.calls)
	assert.True(t, third.FetchedAt.After(first.FetchedAt))
}

func TestFeedKeyVariesWithPreferences(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	headline := &stubFeedProvider{name: "headlines", articles: []ScoredArticle{
		fixedArticle("Story one about markets", "Reuters", "business", time.Hour, base),
	}}
	curator, _ := newTestCurator(headline, &stubFeedProvider{name: "c"}, &stubFeedProvider{name: "l"}, clock)

	_, err := curator.Feed(context.Background(), "u1", FeedPreferences{Categories: []string{"business"}})
	require.NoError(t, err)
	_, err = curator.Feed(context.Background(), "u1", FeedPreferences{Categories: []string{"sports"}})
	require.NoError(t, err)

	// Different preference sets must not share a cache entry
	assert.Equal(t, 2, headline.calls)
}

func TestFeedFallbackWhenAllProvidersFail(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	failing := errors.New("upstream down")
	curator, _ := newTestCurator(
		&stubFeedProvider{name: "h", err: failing},
		&stubFeedProvider{name: "c", err: failing},
		&stubFeedProvider{name: "l", err: failing},
		clock,
	)

	entry, err := curator.Feed(context.Background(), "u1", FeedPreferences{})
	require.NoError(t, err)
	require.NotEmpty(t, entry.Articles)

	// The built-in fallback set is fully scored like any other feed
	for _, a := range entry.Articles {
		assert.NotZero(t, a.TrustScore)
		assert.NotZero(t, a.RelevanceScore)
	}
}

func TestFeedCapsAndCuratedSlice(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	var many []ScoredArticle
	for i := 0; i < 60; i++ {
		many = append(many, fixedArticle(
			fmt.Sprintf("Story %02d with its own distinct headline", i),
			"Reuters", "general", time.Hour, base,
		))
	}

	headline := &stubFeedProvider{name: "headlines", articles: many}
	curator, _ := newTestCurator(headline, &stubFeedProvider{name: "c"}, &stubFeedProvider{name: "l"}, clock)

	entry, err := curator.Feed(context.Background(), "u1", FeedPreferences{})
	require.NoError(t, err)
	assert.Len(t, entry.Articles, 50)

	curated, err := curator.Curate(context.Background(), "u1", FeedPreferences{})
	require.NoError(t, err)
	assert.Len(t, curated.Articles, 20)
	for _, a := range curated.Articles {
		assert.NotEmpty(t, a.PersonalizedReason)
	}
}

func TestFeedOrderedByCombinedScore(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	headline := &stubFeedProvider{name: "headlines", articles: []ScoredArticle{
		fixedArticle("Unremarkable story from an unknown blog", "Random Blog", "general", 30*time.Hour, base),
		fixedArticle("Fresh wire story from a top source", "Reuters", "general", time.Hour, base),
	}}
	curator, _ := newTestCurator(headline, &stubFeedProvider{name: "c"}, &stubFeedProvider{name: "l"}, clock)

	entry, err := curator.Feed(context.Background(), "u1", FeedPreferences{})
	require.NoError(t, err)

	require.Len(t, entry.Articles, 2)
	assert.Equal(t, "Reuters", entry.Articles[0].Source)
}

func TestRelevanceScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prefs := FeedPreferences{
		Categories:     []string{"technology"},
		TrustedSources: []string{"Tech News Daily"},
	}

	fresh := ScoredArticle{Category: "technology", Source: "Tech News Daily", PublishedAt: now.Add(-2 * time.Hour)}
	assert.Equal(t, 95, relevanceScore(fresh, prefs, now))

	dayOld := fresh
	dayOld.PublishedAt = now.Add(-20 * time.Hour)
	assert.Equal(t, 90, relevanceScore(dayOld, prefs, now))

	stale := fresh
	stale.PublishedAt = now.Add(-48 * time.Hour)
	assert.Equal(t, 85, relevanceScore(stale, prefs, now))

	unrelated := ScoredArticle{Category: "sports", Source: "Other", PublishedAt: now.Add(-time.Hour)}
	assert.Equal(t, 60, relevanceScore(unrelated, FeedPreferences{Categories: []string{"technology"}}, now))
}

func TestSearchFiltersByQuery(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	headline := &stubFeedProvider{name: "headlines", articles: []ScoredArticle{
		fixedArticle("Climate report warns of rising seas", "Reuters", "environment", time.Hour, base),
		fixedArticle("Football final ends in penalties", "BBC", "sports", time.Hour, base),
	}}
	curator, _ := newTestCurator(headline, &stubFeedProvider{name: "c"}, &stubFeedProvider{name: "l"}, clock)

	results, err := curator.Search(context.Background(), "climate")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Title, "Climate")
}

func TestSummarizeSources(t *testing.T) {
	articles := []ScoredArticle{
		{Source: "Reuters", TrustScore: 95},
		{Source: "Reuters", TrustScore: 95},
		{Source: "BBC", TrustScore: 92},
	}

	summaries := summarizeSources(articles)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Reuters", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].ArticleCount)
	assert.Equal(t, "BBC", summaries[1].Name)
	assert.Equal(t, 1, summaries[1].ArticleCount)
}
