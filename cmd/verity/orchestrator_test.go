package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyzer returns a fixed result or error, optionally after a delay
type stubAnalyzer struct {
	name  string
	res   AnalysisResult
	err   error
	delay time.Duration
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(ctx context.Context, item ContentItem) (AnalysisResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return AnalysisResult{}, ctx.Err()
		}
	}
	return s.res, s.err
}

func newTestOrchestrator(verifier, moderator, contextual Analyzer) *Orchestrator {
	return &Orchestrator{
		verifier:  verifier,
		moderator: moderator,
		context:   contextual,
		results:   newResultStore(100),
		now:       time.Now,
	}
}

func TestAnalyzeWeightedAggregate(t *testing.T) {
	o := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, res: AnalysisResult{Analyzer: AnalyzerVerifier, Score: 50}},
		&stubAnalyzer{name: AnalyzerModerator, res: AnalysisResult{Analyzer: AnalyzerModerator, Score: 60}},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Analyzer: AnalyzerContext, Score: 90}},
	)

	verdict, err := o.Analyze(context.Background(), ContentItem{Title: "t", Body: "b"})
	require.NoError(t, err)

	// 50*0.4 + 60*0.3 + 90*0.3 = 65
	assert.Equal(t, 65, verdict.OverallScore)
	assert.Equal(t, VerdictLikelyTrue, verdict.Verdict)
	require.Len(t, verdict.PerAnalyzer, 3)

	// All three thresholds trip, in fixed order
	require.Len(t, verdict.Recommendations, 3)
	assert.Equal(t, "verification", verdict.Recommendations[0].Type)
	assert.Equal(t, PriorityHigh, verdict.Recommendations[0].Priority)
	assert.Equal(t, "moderation", verdict.Recommendations[1].Type)
	assert.Equal(t, PriorityMedium, verdict.Recommendations[1].Priority)
	assert.Equal(t, "engagement", verdict.Recommendations[2].Type)
	assert.Equal(t, PriorityLow, verdict.Recommendations[2].Priority)
}

func TestAnalyzeDeterministicAcrossCompletionOrder(t *testing.T) {
	// The slow analyzer finishes last; the outcome must not change
	fast := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, res: AnalysisResult{Analyzer: AnalyzerVerifier, Score: 80}},
		&stubAnalyzer{name: AnalyzerModerator, res: AnalysisResult{Analyzer: AnalyzerModerator, Score: 70}},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Analyzer: AnalyzerContext, Score: 60}},
	)
	slow := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, res: AnalysisResult{Analyzer: AnalyzerVerifier, Score: 80}, delay: 30 * time.Millisecond},
		&stubAnalyzer{name: AnalyzerModerator, res: AnalysisResult{Analyzer: AnalyzerModerator, Score: 70}},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Analyzer: AnalyzerContext, Score: 60}},
	)

	a, err := fast.Analyze(context.Background(), ContentItem{Title: "t"})
	require.NoError(t, err)
	b, err := slow.Analyze(context.Background(), ContentItem{Title: "t"})
	require.NoError(t, err)

	assert.Equal(t, a.OverallScore, b.OverallScore)
	assert.Equal(t, a.Verdict, b.Verdict)
	assert.Equal(t, a.PerAnalyzer[AnalyzerVerifier].Score, b.PerAnalyzer[AnalyzerVerifier].Score)
}

func TestAnalyzeDegradedModerator(t *testing.T) {
	o := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, res: AnalysisResult{Analyzer: AnalyzerVerifier, Score: 80}},
		&stubAnalyzer{name: AnalyzerModerator, err: NewProviderError(ErrProviderTimeout, "moderation backend down", nil)},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Analyzer: AnalyzerContext, Score: 60}},
	)

	verdict, err := o.Analyze(context.Background(), ContentItem{Title: "t"})
	require.NoError(t, err)

	mod := verdict.PerAnalyzer[AnalyzerModerator]
	assert.Equal(t, 50, mod.Score)
	assert.True(t, mod.HasFlag("error"))
	assert.True(t, mod.HasFlag("moderator_error"))

	// 80*0.4 + 50*0.3 + 60*0.3 = 65
	assert.Equal(t, 65, verdict.OverallScore)
	assert.Equal(t, VerdictLikelyTrue, verdict.Verdict)
}

func TestAnalyzeTotalEngineFailure(t *testing.T) {
	o := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, err: NewAggregationError("pipeline collapsed", nil)},
		&stubAnalyzer{name: AnalyzerModerator, res: AnalysisResult{Analyzer: AnalyzerModerator, Score: 70}},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Analyzer: AnalyzerContext, Score: 60}},
	)

	verdict, err := o.Analyze(context.Background(), ContentItem{Title: "t"})
	require.NoError(t, err)

	assert.Equal(t, 0, verdict.OverallScore)
	assert.Equal(t, VerdictUnknown, verdict.Verdict)

	ver := verdict.PerAnalyzer[AnalyzerVerifier]
	assert.True(t, ver.HasFlag("error"))
	assert.True(t, ver.HasFlag("aggregation_error"))

	// The healthy analyzers are still reported
	assert.Equal(t, 70, verdict.PerAnalyzer[AnalyzerModerator].Score)
	assert.Equal(t, 60, verdict.PerAnalyzer[AnalyzerContext].Score)
}

func TestAnalyzeCancelledContext(t *testing.T) {
	o := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, res: AnalysisResult{Score: 80}},
		&stubAnalyzer{name: AnalyzerModerator, res: AnalysisResult{Score: 70}},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Score: 60}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdict, err := o.Analyze(ctx, ContentItem{Title: "t"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, verdict)
}

func TestAnalyzeStoresResult(t *testing.T) {
	o := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, res: AnalysisResult{Analyzer: AnalyzerVerifier, Score: 80}},
		&stubAnalyzer{name: AnalyzerModerator, res: AnalysisResult{Analyzer: AnalyzerModerator, Score: 70}},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Analyzer: AnalyzerContext, Score: 60}},
	)

	verdict, err := o.Analyze(context.Background(), ContentItem{Title: "t"})
	require.NoError(t, err)
	require.NotEmpty(t, verdict.ID)

	stored, ok := o.Result(verdict.ID)
	require.True(t, ok)
	assert.Equal(t, verdict.OverallScore, stored.OverallScore)
}

// recordingSink captures published verdicts
type recordingSink struct {
	published []*AggregateVerdict
}

func (s *recordingSink) PublishVerdict(v *AggregateVerdict) {
	s.published = append(s.published, v)
}

func TestAnalyzePublishesToSink(t *testing.T) {
	o := newTestOrchestrator(
		&stubAnalyzer{name: AnalyzerVerifier, res: AnalysisResult{Analyzer: AnalyzerVerifier, Score: 80}},
		&stubAnalyzer{name: AnalyzerModerator, res: AnalysisResult{Analyzer: AnalyzerModerator, Score: 70}},
		&stubAnalyzer{name: AnalyzerContext, res: AnalysisResult{Analyzer: AnalyzerContext, Score: 60}},
	)
	sink := &recordingSink{}
	o.SetSink(sink)

	verdict, err := o.Analyze(context.Background(), ContentItem{Title: "t"})
	require.NoError(t, err)

	require.Len(t, sink.published, 1)
	assert.Equal(t, verdict.ID, sink.published[0].ID)
}

func TestResultStoreEviction(t *testing.T) {
	store := newResultStore(2)

	store.put(&AggregateVerdict{ID: "a"})
	store.put(&AggregateVerdict{ID: "b"})
	store.put(&AggregateVerdict{ID: "c"})

	_, ok := store.get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = store.get("b")
	assert.True(t, ok)
	_, ok = store.get("c")
	assert.True(t, ok)
}

func TestVerifierAnalyzerFlags(t *testing.T) {
	engine := NewTrustEngine(NewSourceTable(), NewFactCheckAggregator(NewStaticReviewProvider()))
	analyzer := NewVerifierAnalyzer(engine)

	res, err := analyzer.Analyze(context.Background(), ContentItem{
		Title:      "BREAKING: MIRACLE Cure Discovered!!!",
		Body:       "Doctors hate it. A stranger discovered a miracle cure that big pharma does not want you to see.",
		SourceName: "dailybuzz.net",
	})
	require.NoError(t, err)

	assert.Equal(t, 38, res.Score)
	assert.True(t, res.HasFlag("low_credibility"))
	assert.True(t, res.HasFlag("insufficient_sources"))
	assert.True(t, res.HasFlag("low_confidence"))
}
