package main

import (
	"fmt"
	"regexp"
	"strings"
)

// Intent names
const (
	IntentVerification      = "verification"
	IntentURLVerification   = "url_verification"
	IntentNewsSearch        = "news_search"
	IntentSourceCredibility = "source_credibility"
	IntentHowTo             = "how_to"
	IntentGreeting          = "greeting"
	IntentGeneralQuestion   = "general_question"
)

// Intent is the outcome of classifying one message
type Intent struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	URLs       []string `json:"urls,omitempty"`
}

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// Classification keyword sets. Rule order below is fixed; the first match
// wins, so a message with both verification keywords and a URL classifies
// as verification.
var (
	verificationKeywords = []string{"verify", "check", "fact check", "is this true", "real or fake"}
	newsSearchKeywords   = []string{"news about", "latest news", "find news", "search news"}
	sourceKeywords       = []string{"source", "credible", "reliable", "trustworthy"}
	howToKeywords        = []string{"how to", "how do i", "how can i", "what is"}
	greetingKeywords     = []string{"hello", "hi", "hey", "good morning", "good afternoon"}
)

// IntentClassifier maps messages to intents with a fixed rule order
type IntentClassifier struct{}

// NewIntentClassifier creates the classifier
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{}
}

// Classify applies the rules in order and returns the first match. Every
// message classifies; the fallthrough is general_question.
func (c *IntentClassifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	urls := urlPattern.FindAllString(text, -1)

	switch {
	case containsAny(lower, verificationKeywords):
		return Intent{Name: IntentVerification, Confidence: 0.9, URLs: urls}
	case len(urls) > 0:
		return Intent{Name: IntentURLVerification, Confidence: 0.95, URLs: urls}
	case containsAny(lower, newsSearchKeywords):
		return Intent{Name: IntentNewsSearch, Confidence: 0.8}
	case containsAny(lower, sourceKeywords):
		return Intent{Name: IntentSourceCredibility, Confidence: 0.7}
	case containsAny(lower, howToKeywords):
		return Intent{Name: IntentHowTo, Confidence: 0.6}
	case containsAny(lower, greetingKeywords):
		return Intent{Name: IntentGreeting, Confidence: 0.9}
	default:
		return Intent{Name: IntentGeneralQuestion, Confidence: 0.5}
	}
}

var (
	claimLeadIn  = regexp.MustCompile(`(?i)^(please\s+)?(can you\s+)?(verify|check|fact check)( this| that| if| whether)?[:,]?\s*`)
	searchLeadIn = regexp.MustCompile(`(?i)^.*?(news about|latest news on|latest news about|find news about|search news for|search news about)\s+`)
	sourceAsk    = regexp.MustCompile(`(?i)(?:is|how credible is|how reliable is|can i trust)\s+([A-Za-z][A-Za-z0-9 ]{1,40}?)\s*(?:a\s+|an\s+)?(?:reliable|credible|trustworthy|good source|\?|$)`)
)

// extractClaim strips the verification lead-in and returns the claim text
func extractClaim(text string) string {
	claim := claimLeadIn.ReplaceAllString(strings.TrimSpace(text), "")
	claim = strings.Trim(claim, `"' ?`)
	if len(strings.Fields(claim)) < 2 {
		return ""
	}
	return claim
}

// extractSearchQuery returns the topic after the search lead-in
func extractSearchQuery(text string) string {
	loc := searchLeadIn.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	query := strings.TrimSpace(text[loc[1]:])
	return strings.Trim(query, `"'?.!`)
}

// extractSourceName pulls the outlet name from a credibility question
func extractSourceName(text string) string {
	match := sourceAsk.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// sourceBlurbs are short editorial notes on well-known outlets
var sourceBlurbs = map[string]string{
	"bbc":      "BBC is a highly reliable international news source with a trust score of 92/100. It maintains strong editorial standards and fact-checking practices.",
	"cnn":      "CNN is a mainstream news source with a trust score of 75/100. Its news reporting is generally factual, though opinion content can lean partisan.",
	"fox news": "Fox News has a trust score of 70/100. Its straight news reporting is generally accurate, but opinion programming shows a strong editorial slant.",
	"fox":      "Fox News has a trust score of 70/100. Its straight news reporting is generally accurate, but opinion programming shows a strong editorial slant.",
	"reuters":  "Reuters is one of the most trusted wire services in the world with a trust score of 95/100. It is known for neutral, fact-based reporting.",
	"ap":       "The Associated Press is a highly trusted wire service with a trust score of 94/100. Its reporting is widely syndicated and rigorously fact-checked.",
}

// sourceBlurb returns the canned note for an outlet when we have one
func sourceBlurb(name string) (string, bool) {
	blurb, ok := sourceBlurbs[strings.ToLower(strings.TrimSpace(name))]
	return blurb, ok
}

// formatVerificationResponse renders an aggregate verdict as chat text
func formatVerificationResponse(v *AggregateVerdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Verification result: %s** (trust score %d/100)\n", v.Verdict, v.OverallScore)

	if verifier, ok := v.PerAnalyzer[AnalyzerVerifier]; ok && verifier.Detail != "" {
		b.WriteString(verifier.Detail)
		b.WriteString("\n")
	}

	if len(v.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range v.Recommendations {
			fmt.Fprintf(&b, "• [%s] %s\n", rec.Priority, rec.Message)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatSearchResponse renders search hits as chat text
func formatSearchResponse(query string, articles []ScoredArticle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here's what I found about \"%s\":\n", query)
	limit := len(articles)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		a := articles[i]
		fmt.Fprintf(&b, "%d. %s — %s (trust %d/100)\n", i+1, a.Title, a.Source, a.TrustScore)
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatGuidanceResponse renders fact-checking guidance as chat text
func formatGuidanceResponse(g *FactCheckGuidance) string {
	var b strings.Builder

	b.WriteString("Here's how to fact-check like a pro:\n")
	for i, step := range g.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	if len(g.RedFlags) > 0 {
		b.WriteString("\nWatch out for these red flags:\n")
		for _, flag := range g.RedFlags {
			fmt.Fprintf(&b, "• %s\n", flag)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
