package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// factCheckTimeout bounds every provider call
const factCheckTimeout = 10 * time.Second

// FactCheckProvider answers claims with zero or more normalized findings
type FactCheckProvider interface {
	Name() string
	Check(ctx context.Context, claim string) ([]SourceFinding, error)
}

// FactCheckAggregator fans a claim across its providers and collects
// whatever findings come back. A failing provider is logged and skipped,
// never fatal. Providers that talk to external services throttle
// themselves; local table lookups run at full speed.
type FactCheckAggregator struct {
	providers []FactCheckProvider
	timeout   time.Duration
}

// NewFactCheckAggregator creates an aggregator over the given providers
func NewFactCheckAggregator(providers ...FactCheckProvider) *FactCheckAggregator {
	return &FactCheckAggregator{
		providers: providers,
		timeout:   factCheckTimeout,
	}
}

// Query asks every provider about the claim. An empty result is a valid
// outcome, not an error.
func (a *FactCheckAggregator) Query(ctx context.Context, claim string) []SourceFinding {
	var findings []SourceFinding

	for _, provider := range a.providers {
		pctx, cancel := context.WithTimeout(ctx, a.timeout)
		result, err := provider.Check(pctx, claim)
		cancel()

		if err != nil {
			Logger().Warning("Fact check provider %s failed: %v", provider.Name(), err)
			continue
		}
		findings = append(findings, result...)
	}

	return findings
}

// claimReview is one entry in the static review table
type claimReview struct {
	match    string
	reviewer string
	verdict  string
	score    int
}

// StaticReviewProvider serves fact-check findings from a fixed claim review
// table. It stands in for external fact-check APIs and keeps the scoring
// pipeline deterministic.
type StaticReviewProvider struct {
	reviews []claimReview
}

// NewStaticReviewProvider builds the provider with its built-in review table
func NewStaticReviewProvider() *StaticReviewProvider {
	return &StaticReviewProvider{
		reviews: []claimReview{
			{match: "climate summit", reviewer: "FactCheck.org", verdict: "mostly_true", score: 85},
			{match: "climate summit", reviewer: "Snopes", verdict: "true", score: 80},
			{match: "carbon emissions", reviewer: "Reuters Fact Check", verdict: "true", score: 88},
			{match: "vaccine microchip", reviewer: "FactCheck.org", verdict: "false", score: 10},
			{match: "vaccine microchip", reviewer: "PolitiFact", verdict: "pants_on_fire", score: 5},
			{match: "election fraud", reviewer: "AP Fact Check", verdict: "mostly_false", score: 25},
			{match: "flat earth", reviewer: "Snopes", verdict: "false", score: 5},
			{match: "5g coronavirus", reviewer: "Reuters Fact Check", verdict: "false", score: 8},
		},
	}
}

// Name implements FactCheckProvider
func (p *StaticReviewProvider) Name() string {
	return "static_reviews"
}

// Check returns findings for every review whose match string appears in the
// claim. Unmatched claims return an empty list.
func (p *StaticReviewProvider) Check(ctx context.Context, claim string) ([]SourceFinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(claim)
	var findings []SourceFinding
	for _, review := range p.reviews {
		if strings.Contains(lower, review.match) {
			findings = append(findings, SourceFinding{
				Name:        review.reviewer,
				Type:        "fact_checker",
				Credibility: "high",
				Score:       review.score,
				Claim:       claim,
				Verdict:     review.verdict,
			})
		}
	}
	return findings, nil
}

// OpenAIFactCheckProvider asks an LLM to rate a claim. It is only wired in
// when an API key is configured.
type OpenAIFactCheckProvider struct {
	client  *openai.Client
	limiter *rate.Limiter
}

// NewOpenAIFactCheckProvider creates the provider from an API key
func NewOpenAIFactCheckProvider(apiKey string) *OpenAIFactCheckProvider {
	return &OpenAIFactCheckProvider{
		client:  openai.NewClient(apiKey),
		limiter: rate.NewLimiter(rate.Limit(5), 10), // stay polite toward the external API
	}
}

// Name implements FactCheckProvider
func (p *OpenAIFactCheckProvider) Name() string {
	return "openai"
}

const factCheckSystemPrompt = `You are a fact-checking assistant. Analyze the claim and respond as JSON:
{
  "rating": "true|mostly_true|mixed|mostly_false|false|unverifiable",
  "explanation": "one sentence",
  "trust_score": 0.5
}
trust_score is between 0.0 (completely false) and 1.0 (completely true).`

// Check implements FactCheckProvider using a chat completion
func (p *OpenAIFactCheckProvider) Check(ctx context.Context, claim string) ([]SourceFinding, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: factCheckSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Fact check this claim: " + claim},
		},
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, NewProviderError(ErrProviderFetch, "OpenAI fact check failed", err)
	}

	var parsed struct {
		Rating      string  `json:"rating"`
		Explanation string  `json:"explanation"`
		TrustScore  float64 `json:"trust_score"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, NewProviderError(ErrProviderFetch, "failed to parse OpenAI response", err)
	}

	return []SourceFinding{{
		Name:        "OpenAI Analysis",
		Type:        "fact_checker",
		Credibility: "medium",
		Score:       roundScore(parsed.TrustScore * 100),
		Claim:       claim,
		Verdict:     parsed.Rating,
	}}, nil
}
