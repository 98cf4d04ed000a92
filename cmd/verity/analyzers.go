package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Analyzer names used as fixed keys in aggregate results
const (
	AnalyzerVerifier  = "verifier"
	AnalyzerModerator = "moderator"
	AnalyzerContext   = "context"
)

// Analyzer scores one dimension of a content item. Implementations are
// stateless; a failed analyzer never aborts the run.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, item ContentItem) (AnalysisResult, error)
}

// ContentModerator checks content for safety, bias, quality and
// misinformation issues. Its score is the safety score; the other checks
// surface through flags and the detail text.
type ContentModerator struct{}

// Name implements Analyzer
func (m *ContentModerator) Name() string {
	return AnalyzerModerator
}

// Analyze implements Analyzer
func (m *ContentModerator) Analyze(ctx context.Context, item ContentItem) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}

	safetyScore, safetyFlags := m.checkSafety(item)
	biasLevel, biasFlags := m.detectBias(item)
	qualityScore, qualityFlags := m.assessQuality(item)
	misinfoRisk, misinfoFlags := m.checkMisinformation(item)

	flags := append(safetyFlags, biasFlags...)
	flags = append(flags, qualityFlags...)
	flags = append(flags, misinfoFlags...)

	return AnalysisResult{
		Analyzer: AnalyzerModerator,
		Score:    safetyScore,
		Flags:    flags,
		Detail:   m.describe(safetyScore, biasLevel, qualityScore, misinfoRisk),
	}, nil
}

// checkSafety scores content safety, starting from a high baseline
func (m *ContentModerator) checkSafety(item ContentItem) (int, []string) {
	score := 90
	var flags []string

	lower := strings.ToLower(item.Body)
	if strings.Contains(lower, "violence") {
		flags = append(flags, "violence_content")
		score -= 30
	}
	if containsAny(lower, []string{"graphic", "gore"}) {
		flags = append(flags, "graphic_content")
		score -= 20
	}

	return clampScore(score), flags
}

// detectBias estimates presentation bias; lower is better
func (m *ContentModerator) detectBias(item ContentItem) (int, []string) {
	level := 20
	var flags []string

	if strings.Contains(item.Title, "BREAKING") || strings.Contains(item.Title, "SHOCKING") {
		flags = append(flags, "sensational_language")
		level += 20
	}
	if strings.Count(item.Title, "!") > 0 {
		flags = append(flags, "exclamatory_title")
		level += 10
	}

	return clampScore(level), flags
}

// assessQuality checks for basic editorial completeness
func (m *ContentModerator) assessQuality(item ContentItem) (int, []string) {
	score := 80
	var flags []string

	if item.SourceName == "" {
		flags = append(flags, "missing_source")
		score -= 15
	}
	if item.PublishedAt.IsZero() {
		flags = append(flags, "missing_date")
		score -= 10
	}

	return clampScore(score), flags
}

// checkMisinformation flags common misinformation patterns; lower is better
func (m *ContentModerator) checkMisinformation(item ContentItem) (int, []string) {
	risk := 20
	var flags []string

	lower := strings.ToLower(item.Body)
	if strings.Contains(lower, "scientists say") && !strings.Contains(lower, "study") {
		flags = append(flags, "unsubstantiated_claim")
		risk += 30
	}
	if containsAny(lower, []string{"they don't want you to know", "wake up"}) {
		flags = append(flags, "conspiracy_framing")
		risk += 25
	}

	return clampScore(risk), flags
}

// describe renders the moderation recommendations the sub-checks imply
func (m *ContentModerator) describe(safety, bias, quality, misinfo int) string {
	var notes []string
	if safety < 70 {
		notes = append(notes, "review content for safety concerns")
	}
	if bias > 60 {
		notes = append(notes, "consider bias in language and presentation")
	}
	if quality < 60 {
		notes = append(notes, "verify source attribution")
	}
	if misinfo > 50 {
		notes = append(notes, "cross-check claims with authoritative sources")
	}
	if len(notes) == 0 {
		return fmt.Sprintf("safety %d, bias %d, quality %d, misinformation risk %d", safety, bias, quality, misinfo)
	}
	return strings.Join(notes, "; ")
}

// TrendTable holds the current trending topics. Reads are frequent (every
// context analysis); refreshes replace the whole slice.
type TrendTable struct {
	mu     sync.RWMutex
	topics []TrendingTopic
}

// defaultTrendingTopics seeds the table at startup
var defaultTrendingTopics = []TrendingTopic{
	{Topic: "AI Technology", Momentum: 0.9, Volume: 1250},
	{Topic: "Climate Change", Momentum: 0.8, Volume: 980},
	{Topic: "Economic Policy", Momentum: 0.6, Volume: 750},
	{Topic: "Healthcare", Momentum: 0.7, Volume: 650},
}

// NewTrendTable creates a table seeded with the default topics
func NewTrendTable() *TrendTable {
	return &TrendTable{topics: append([]TrendingTopic(nil), defaultTrendingTopics...)}
}

// Current returns a copy of the trending topics
func (t *TrendTable) Current() []TrendingTopic {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]TrendingTopic(nil), t.topics...)
}

// Refresh recounts topic volume against a batch of recent articles and
// swaps the table in one write
func (t *TrendTable) Refresh(articles []ScoredArticle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	updated := make([]TrendingTopic, len(t.topics))
	copy(updated, t.topics)

	for i := range updated {
		count := 0
		needle := strings.ToLower(updated[i].Topic)
		for _, a := range articles {
			if strings.Contains(strings.ToLower(a.Title+" "+a.Description), needle) {
				count++
			}
		}
		if count > 0 {
			updated[i].Volume = count
		}
	}

	t.topics = updated
}

// ContextAnalyzer scores how relevant content is to current trends
type ContextAnalyzer struct {
	trends *TrendTable
}

// NewContextAnalyzer creates the analyzer over a trend table
func NewContextAnalyzer(trends *TrendTable) *ContextAnalyzer {
	return &ContextAnalyzer{trends: trends}
}

// Name implements Analyzer
func (c *ContextAnalyzer) Name() string {
	return AnalyzerContext
}

// Analyze implements Analyzer
func (c *ContextAnalyzer) Analyze(ctx context.Context, item ContentItem) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}

	text := strings.ToLower(item.Title + " " + item.Body)

	var matched []string
	total := 0.0
	for _, trend := range c.trends.Current() {
		if strings.Contains(text, strings.ToLower(trend.Topic)) {
			matched = append(matched, trend.Topic)
			total += trend.Momentum * 20
		}
	}

	score := roundScore(total)
	if score > 100 {
		score = 100
	}

	var flags []string
	for _, topic := range matched {
		flags = append(flags, "trend:"+strings.ReplaceAll(strings.ToLower(topic), " ", "_"))
	}

	return AnalysisResult{
		Analyzer: AnalyzerContext,
		Score:    score,
		Flags:    flags,
		Detail:   c.describe(item, matched),
	}, nil
}

// describe summarizes virality signals alongside matched trends
func (c *ContextAnalyzer) describe(item ContentItem, matched []string) string {
	virality := 0
	if strings.Contains(item.Title, "Breaking") {
		virality += 20
	}
	if strings.Contains(item.Title, "Exclusive") {
		virality += 15
	}
	if len(item.Body) > 500 {
		virality += 10
	}

	if len(matched) == 0 {
		return fmt.Sprintf("no trending topics matched, virality potential %d", virality)
	}
	return fmt.Sprintf("matched trends: %s, virality potential %d", strings.Join(matched, ", "), virality)
}
