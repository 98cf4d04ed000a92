package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticReviewProviderMatches(t *testing.T) {
	provider := NewStaticReviewProvider()

	findings, err := provider.Check(context.Background(), "Historic climate summit agreement announced")
	require.NoError(t, err)

	require.Len(t, findings, 2)
	assert.Equal(t, "FactCheck.org", findings[0].Name)
	assert.Equal(t, 85, findings[0].Score)
	assert.Equal(t, "Snopes", findings[1].Name)
	assert.Equal(t, 80, findings[1].Score)
}

func TestStaticReviewProviderNoMatch(t *testing.T) {
	provider := NewStaticReviewProvider()

	findings, err := provider.Check(context.Background(), "Local bakery wins award")
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// failingProvider always errors
type failingProvider struct{}

func (p *failingProvider) Name() string { return "failing" }

func (p *failingProvider) Check(ctx context.Context, claim string) ([]SourceFinding, error) {
	return nil, errors.New("backend unavailable")
}

func TestAggregatorSkipsFailingProvider(t *testing.T) {
	aggregator := NewFactCheckAggregator(&failingProvider{}, NewStaticReviewProvider())

	findings := aggregator.Query(context.Background(), "the flat earth theory resurfaces")

	// The failing provider is skipped; the healthy one still answers
	require.Len(t, findings, 1)
	assert.Equal(t, "Snopes", findings[0].Name)
	assert.Equal(t, "false", findings[0].Verdict)
}

func TestAggregatorEmptyResultIsValid(t *testing.T) {
	aggregator := NewFactCheckAggregator(NewStaticReviewProvider())

	findings := aggregator.Query(context.Background(), "nothing notable here")
	assert.Empty(t, findings)
}

func TestAggregatorLocalProvidersNotThrottled(t *testing.T) {
	aggregator := NewFactCheckAggregator(NewStaticReviewProvider())

	// 50 sequential queries against the in-process table must complete in
	// far less time than any request-per-second budget would allow
	start := time.Now()
	for i := 0; i < 50; i++ {
		aggregator.Query(context.Background(), "the flat earth theory resurfaces")
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}
