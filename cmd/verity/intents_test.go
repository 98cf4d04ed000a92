package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyOrderedRules(t *testing.T) {
	classifier := NewIntentClassifier()

	cases := []struct {
		text   string
		intent string
	}{
		{"Can you verify this claim about vaccines?", IntentVerification},
		{"fact check the mayor's statement", IntentVerification},
		{"is this true: the moon landing was staged", IntentVerification},
		{"https://example.com/story", IntentURLVerification},
		{"Is https://example.com/story true?", IntentURLVerification},
		{"hello, look at https://example.com/story", IntentURLVerification},
		{"news about climate change", IntentNewsSearch},
		{"show me the latest news on elections", IntentNewsSearch},
		{"Is BBC a reliable source?", IntentSourceCredibility},
		{"how trustworthy is that outlet", IntentSourceCredibility},
		{"how do i spot misinformation", IntentHowTo},
		{"hello", IntentGreeting},
		{"good morning", IntentGreeting},
		{"tell me about quantum computers", IntentGeneralQuestion},
	}

	for _, tc := range cases {
		intent := classifier.Classify(tc.text)
		assert.Equal(t, tc.intent, intent.Name, "text %q", tc.text)
	}
}

func TestClassifyVerificationBeatsURL(t *testing.T) {
	// A message with both a verification keyword and a URL classifies by
	// the earlier rule but still carries the URL along
	intent := NewIntentClassifier().Classify("Please verify https://example.com/article")

	assert.Equal(t, IntentVerification, intent.Name)
	require.Len(t, intent.URLs, 1)
	assert.Equal(t, "https://example.com/article", intent.URLs[0])
}

func TestExtractClaim(t *testing.T) {
	assert.Equal(t, "the earth is flat", extractClaim("verify the earth is flat"))
	assert.Equal(t, "the new policy cuts taxes", extractClaim("Please fact check: the new policy cuts taxes"))
	assert.Empty(t, extractClaim("verify"))
	assert.Empty(t, extractClaim("check this"))
}

func TestExtractSearchQuery(t *testing.T) {
	assert.Equal(t, "climate change", extractSearchQuery("news about climate change"))
	assert.Equal(t, "elections", extractSearchQuery("show me the latest news on elections"))
	assert.Empty(t, extractSearchQuery("hello there"))
}

func TestExtractSourceName(t *testing.T) {
	assert.Equal(t, "BBC", extractSourceName("Is BBC reliable?"))
	assert.Equal(t, "BBC", extractSourceName("Is BBC a reliable source?"))
	assert.Equal(t, "CNN", extractSourceName("How credible is CNN?"))
	assert.Empty(t, extractSourceName("what about the weather"))
}

func TestSourceBlurbs(t *testing.T) {
	blurb, ok := sourceBlurb("BBC")
	require.True(t, ok)
	assert.Contains(t, blurb, "92/100")

	blurb, ok = sourceBlurb("reuters")
	require.True(t, ok)
	assert.Contains(t, blurb, "95/100")

	_, ok = sourceBlurb("some random blog")
	assert.False(t, ok)
}

func TestFormatVerificationResponse(t *testing.T) {
	verdict := &AggregateVerdict{
		ID:           "v1",
		OverallScore: 72,
		Verdict:      VerdictLikelyTrue,
		PerAnalyzer: map[string]AnalysisResult{
			AnalyzerVerifier: {Analyzer: AnalyzerVerifier, Score: 70, Detail: "This content appears mostly reliable but may require additional verification."},
		},
		Recommendations: []Recommendation{
			{Type: "moderation", Priority: PriorityMedium, Message: "Content may contain misleading or harmful information"},
		},
	}

	text := formatVerificationResponse(verdict)
	assert.Contains(t, text, "LIKELY_TRUE")
	assert.Contains(t, text, "72/100")
	assert.Contains(t, text, "mostly reliable")
	assert.Contains(t, text, "misleading or harmful")
}
