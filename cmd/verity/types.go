package main

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"
)

// ContentKind identifies how a piece of content reached us
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentURL   ContentKind = "url"
	ContentImage ContentKind = "image"
)

// ContentItem is a normalized piece of content produced by extraction.
// It is immutable once built; analyzers only read it.
type ContentItem struct {
	ID          string      `json:"id"`
	Kind        ContentKind `json:"kind"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	SourceName  string      `json:"source_name"`
	URL         string      `json:"url,omitempty"`
	PublishedAt time.Time   `json:"published_at"`
}

// AnalysisResult is the output of a single analyzer for one run
type AnalysisResult struct {
	Analyzer string   `json:"analyzer"`
	Score    int      `json:"score"` // 0-100
	Flags    []string `json:"flags,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// HasFlag reports whether the result carries the given flag
func (r AnalysisResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Verdict is the discrete classification derived from a trust score
type Verdict string

const (
	VerdictVerified    Verdict = "VERIFIED"
	VerdictLikelyTrue  Verdict = "LIKELY_TRUE"
	VerdictMixed       Verdict = "MIXED"
	VerdictLikelyFalse Verdict = "LIKELY_FALSE"
	VerdictFalse       Verdict = "FALSE"
	VerdictUnknown     Verdict = "UNKNOWN"
)

// VerdictForScore maps a trust score to its verdict band.
// Boundaries are exact: 80, 60, 40 and 20 belong to the upper band.
func VerdictForScore(score int) Verdict {
	switch {
	case score >= 80:
		return VerdictVerified
	case score >= 60:
		return VerdictLikelyTrue
	case score >= 40:
		return VerdictMixed
	case score >= 20:
		return VerdictLikelyFalse
	default:
		return VerdictFalse
	}
}

// Recommendation priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is an actionable note derived from one analysis run
type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// AggregateVerdict is the combined outcome of one orchestration run
type AggregateVerdict struct {
	ID              string                    `json:"id"`
	OverallScore    int                       `json:"overall_score"`
	Verdict         Verdict                   `json:"verdict"`
	PerAnalyzer     map[string]AnalysisResult `json:"per_analyzer"`
	Recommendations []Recommendation          `json:"recommendations"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// SourceFinding is a normalized credibility datum about content, either a
// matched publisher or a fact-check review
type SourceFinding struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // verified_publisher or fact_checker
	Credibility string `json:"credibility"`
	Score       int    `json:"score"`
	Claim       string `json:"claim,omitempty"`
	Verdict     string `json:"verdict,omitempty"`
}

// ContentAnalysis is the heuristic assessment of content quality
type ContentAnalysis struct {
	FactualAccuracy       int      `json:"factual_accuracy"`
	BiasScore             int      `json:"bias_score"` // lower is better
	EmotionalManipulation int      `json:"emotional_manipulation"`
	SourceReliability     int      `json:"source_reliability"`
	OverallCredibility    int      `json:"overall_credibility"`
	Confidence            float64  `json:"confidence"` // 0-1
	Reasoning             []string `json:"reasoning,omitempty"`
	Flags                 []string `json:"flags,omitempty"`
}

// VerificationReport is the human-readable portion of a verification
type VerificationReport struct {
	Summary         string            `json:"summary"`
	Recommendations []string          `json:"recommendations"`
	Details         map[string]string `json:"details"`
}

// VerifyResult is the Trust Score Engine output for one content item
type VerifyResult struct {
	TrustScore int                 `json:"trust_score"`
	Verdict    Verdict             `json:"verdict"`
	Sources    []SourceFinding     `json:"sources"`
	Confidence float64             `json:"confidence"`
	Analysis   ContentAnalysis     `json:"analysis"`
	Report     *VerificationReport `json:"report,omitempty"`
}

// FeedPreferences describe what a user wants in their feed
type FeedPreferences struct {
	Country        string   `json:"country"`
	Categories     []string `json:"categories"`
	TrustedSources []string `json:"trusted_sources"`
	Location       string   `json:"location"`
}

// Hash produces a stable key fragment for a preference set
func (p FeedPreferences) Hash() string {
	cats := append([]string(nil), p.Categories...)
	sort.Strings(cats)
	srcs := append([]string(nil), p.TrustedSources...)
	sort.Strings(srcs)

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s", p.Country, strings.Join(cats, ","), strings.Join(srcs, ","), p.Location)
	return fmt.Sprintf("%016x", h.Sum64())
}

// ScoredArticle is a feed article annotated with trust and relevance scores
type ScoredArticle struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	URL                string    `json:"url"`
	ImageURL           string    `json:"image_url,omitempty"`
	Source             string    `json:"source"`
	Category           string    `json:"category"`
	PublishedAt        time.Time `json:"published_at"`
	TrustScore         int       `json:"trust_score"`
	RelevanceScore     int       `json:"relevance_score"`
	PersonalizedReason string    `json:"personalized_reason,omitempty"`
}

// SourceSummary aggregates per-source stats for a feed
type SourceSummary struct {
	Name         string `json:"name"`
	TrustScore   int    `json:"trust_score"`
	ArticleCount int    `json:"article_count"`
}

// FeedEntry is one cached, fully-scored feed. Entries are replaced whole on
// refresh, never patched in place.
type FeedEntry struct {
	Key       string          `json:"key"`
	Articles  []ScoredArticle `json:"articles"`
	Sources   []SourceSummary `json:"sources"`
	FetchedAt time.Time       `json:"fetched_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a user's conversation history
type ConversationTurn struct {
	Role        string    `json:"role"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	Intent      string    `json:"intent,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Degraded    bool      `json:"degraded,omitempty"`
}

// TrendingTopic is a topic with current momentum
type TrendingTopic struct {
	Topic    string  `json:"topic"`
	Momentum float64 `json:"momentum"`
	Volume   int     `json:"volume"`
}
