package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Aggregate weights, fixed by design and pinned by tests
const (
	weightVerification = 0.4
	weightModeration   = 0.3
	weightContext      = 0.3
)

// maxStoredResults bounds the in-memory result store
const maxStoredResults = 1000

// VerdictSink receives completed verdicts, e.g. for dashboard broadcast.
// Implementations must not block.
type VerdictSink interface {
	PublishVerdict(v *AggregateVerdict)
}

// VerifierAnalyzer adapts the Trust Score Engine to the Analyzer interface
type VerifierAnalyzer struct {
	engine *TrustEngine
}

// NewVerifierAnalyzer wraps a trust engine
func NewVerifierAnalyzer(engine *TrustEngine) *VerifierAnalyzer {
	return &VerifierAnalyzer{engine: engine}
}

// Name implements Analyzer
func (v *VerifierAnalyzer) Name() string {
	return AnalyzerVerifier
}

// Analyze implements Analyzer by running the verification pipeline and
// flagging weak results
func (v *VerifierAnalyzer) Analyze(ctx context.Context, item ContentItem) (AnalysisResult, error) {
	result, err := v.engine.Verify(ctx, item)
	if err != nil {
		return AnalysisResult{}, err
	}

	var flags []string
	if result.TrustScore < 40 {
		flags = append(flags, "low_credibility")
	}
	if len(result.Sources) < 2 {
		flags = append(flags, "insufficient_sources")
	}
	if result.Confidence < 0.6 {
		flags = append(flags, "low_confidence")
	}

	detail := ""
	if result.Report != nil {
		detail = result.Report.Summary
	}

	return AnalysisResult{
		Analyzer: AnalyzerVerifier,
		Score:    result.TrustScore,
		Flags:    flags,
		Detail:   detail,
	}, nil
}

// Orchestrator fans a content item out to the analyzer set, joins all
// results and combines them into one AggregateVerdict
type Orchestrator struct {
	verifier  Analyzer
	moderator Analyzer
	context   Analyzer

	results *resultStore
	sink    VerdictSink
	now     func() time.Time
}

// NewOrchestrator builds the orchestrator with the standard analyzer set
func NewOrchestrator(engine *TrustEngine, trends *TrendTable) *Orchestrator {
	return &Orchestrator{
		verifier:  NewVerifierAnalyzer(engine),
		moderator: &ContentModerator{},
		context:   NewContextAnalyzer(trends),
		results:   newResultStore(maxStoredResults),
		now:       time.Now,
	}
}

// SetSink attaches an optional verdict sink
func (o *Orchestrator) SetSink(sink VerdictSink) {
	o.sink = sink
}

// Analyze runs all analyzers concurrently, waits for every one of them and
// combines the results. A single analyzer failure degrades that sub-result
// to a neutral score with an error flag; only cancellation or a total
// engine failure changes the overall outcome.
func (o *Orchestrator) Analyze(ctx context.Context, item ContentItem) (*AggregateVerdict, error) {
	var (
		wg          sync.WaitGroup
		verRes      AnalysisResult
		modRes      AnalysisResult
		ctxRes      AnalysisResult
		verErr      error
		modErr      error
		ctxAnalyErr error
	)

	// Each goroutine writes only its own slot; the weighted formula below
	// never depends on completion order.
	wg.Add(3)
	go func() {
		defer wg.Done()
		defer RecoverFromPanic("analyze-verifier")
		verRes, verErr = o.verifier.Analyze(ctx, item)
	}()
	go func() {
		defer wg.Done()
		defer RecoverFromPanic("analyze-moderator")
		modRes, modErr = o.moderator.Analyze(ctx, item)
	}()
	go func() {
		defer wg.Done()
		defer RecoverFromPanic("analyze-context")
		ctxRes, ctxAnalyErr = o.context.Analyze(ctx, item)
	}()
	wg.Wait()

	// Never return a partially aggregated verdict on cancellation
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verdict := &AggregateVerdict{
		ID:          uuid.NewString(),
		PerAnalyzer: make(map[string]AnalysisResult, 3),
		CreatedAt:   o.now(),
	}

	// Total engine failure is reported as an UNKNOWN verdict, never as a
	// silent empty result
	if verErr != nil && IsErrorType(verErr, ErrorTypeAggregation) {
		Logger().Error("Trust engine failed: %v", verErr)
		verdict.OverallScore = 0
		verdict.Verdict = VerdictUnknown
		verdict.PerAnalyzer[AnalyzerVerifier] = AnalysisResult{
			Analyzer: AnalyzerVerifier,
			Score:    0,
			Flags:    []string{"error", "aggregation_error"},
		}
		verdict.PerAnalyzer[AnalyzerModerator] = degradeOrKeep(AnalyzerModerator, modRes, modErr, 50)
		verdict.PerAnalyzer[AnalyzerContext] = degradeOrKeep(AnalyzerContext, ctxRes, ctxAnalyErr, 50)
		o.finish(verdict)
		return verdict, nil
	}

	verdict.PerAnalyzer[AnalyzerVerifier] = degradeOrKeep(AnalyzerVerifier, verRes, verErr, 0)
	verdict.PerAnalyzer[AnalyzerModerator] = degradeOrKeep(AnalyzerModerator, modRes, modErr, 50)
	verdict.PerAnalyzer[AnalyzerContext] = degradeOrKeep(AnalyzerContext, ctxRes, ctxAnalyErr, 50)

	verification := verdict.PerAnalyzer[AnalyzerVerifier]
	moderation := verdict.PerAnalyzer[AnalyzerModerator]
	contextual := verdict.PerAnalyzer[AnalyzerContext]

	verdict.OverallScore = roundScore(
		float64(verification.Score)*weightVerification +
			float64(moderation.Score)*weightModeration +
			float64(contextual.Score)*weightContext,
	)
	verdict.Verdict = VerdictForScore(verdict.OverallScore)
	verdict.Recommendations = synthesizeRecommendations(verification, moderation, contextual)

	o.finish(verdict)
	return verdict, nil
}

// finish stores the verdict and notifies the sink
func (o *Orchestrator) finish(v *AggregateVerdict) {
	o.results.put(v)
	if o.sink != nil {
		o.sink.PublishVerdict(v)
	}
}

// degradeOrKeep converts an analyzer failure into a neutral sub-result
// carrying an error flag, so a degraded collaborator never fails the run
func degradeOrKeep(name string, res AnalysisResult, err error, neutral int) AnalysisResult {
	if err == nil {
		return res
	}
	Logger().Warning("Analyzer %s degraded: %v", name, err)
	return AnalysisResult{
		Analyzer: name,
		Score:    neutral,
		Flags:    []string{"error", name + "_error"},
		Detail:   err.Error(),
	}
}

// synthesizeRecommendations applies the threshold rules in fixed order so
// output ordering is deterministic
func synthesizeRecommendations(verification, moderation, contextual AnalysisResult) []Recommendation {
	var recommendations []Recommendation

	if verification.Score < 60 {
		recommendations = append(recommendations, Recommendation{
			Type:     "verification",
			Priority: PriorityHigh,
			Message:  "Content requires additional fact-checking before sharing",
		})
	}
	if moderation.Score < 70 {
		recommendations = append(recommendations, Recommendation{
			Type:     "moderation",
			Priority: PriorityMedium,
			Message:  "Content may contain misleading or harmful information",
		})
	}
	if contextual.Score > 80 {
		recommendations = append(recommendations, Recommendation{
			Type:     "engagement",
			Priority: PriorityLow,
			Message:  "Content is highly relevant to current trends",
		})
	}

	return recommendations
}

// Result returns a stored verdict by analysis id
func (o *Orchestrator) Result(id string) (*AggregateVerdict, bool) {
	return o.results.get(id)
}

// resultStore is a bounded analysisId -> verdict map with FIFO eviction
type resultStore struct {
	mu    sync.RWMutex
	byID  map[string]*AggregateVerdict
	order []string
	max   int
}

func newResultStore(max int) *resultStore {
	return &resultStore{
		byID: make(map[string]*AggregateVerdict),
		max:  max,
	}
}

func (s *resultStore) put(v *AggregateVerdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[v.ID]; !exists {
		s.order = append(s.order, v.ID)
	}
	s.byID[v.ID] = v

	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, oldest)
	}
}

func (s *resultStore) get(id string) (*AggregateVerdict, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byID[id]
	return v, ok
}

// PersonalizedBundle groups feed, trend and learning recommendations for
// one user
type PersonalizedBundle struct {
	Feed      *FeedEntry      `json:"feed"`
	Trends    []TrendingTopic `json:"trends"`
	Learning  *LearningPlan   `json:"learning"`
	Timestamp time.Time       `json:"timestamp"`
}

// Recommender fans out to the curator, trend table and educator for a
// personalized bundle
type Recommender struct {
	curator  *FeedCurator
	trends   *TrendTable
	educator *Educator
	now      func() time.Time
}

// NewRecommender wires the personalization fan-out
func NewRecommender(curator *FeedCurator, trends *TrendTable, educator *Educator) *Recommender {
	return &Recommender{
		curator:  curator,
		trends:   trends,
		educator: educator,
		now:      time.Now,
	}
}

// Recommendations fetches curated feed, trending topics and learning
// content concurrently and joins the results
func (r *Recommender) Recommendations(ctx context.Context, userID string, prefs FeedPreferences) (*PersonalizedBundle, error) {
	var (
		wg      sync.WaitGroup
		feed    *FeedEntry
		feedErr error
		topics  []TrendingTopic
		plan    *LearningPlan
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		defer RecoverFromPanic("recommend-curate")
		feed, feedErr = r.curator.Curate(ctx, userID, prefs)
	}()
	go func() {
		defer wg.Done()
		topics = r.trends.Current()
	}()
	go func() {
		defer wg.Done()
		plan = r.educator.RecommendedLearning(userID)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if feedErr != nil {
		return nil, feedErr
	}

	return &PersonalizedBundle{
		Feed:      feed,
		Trends:    topics,
		Learning:  plan,
		Timestamp: r.now(),
	}, nil
}
