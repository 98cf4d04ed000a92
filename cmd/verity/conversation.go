package main

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// HistoryStore keeps a bounded per-user conversation history. When the
// bound is exceeded the oldest turns are dropped first.
type HistoryStore struct {
	mu       sync.RWMutex
	turns    map[string][]ConversationTurn
	capacity int
}

// NewHistoryStore creates a store holding at most capacity turns per user
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = 10
	}
	return &HistoryStore{
		turns:    make(map[string][]ConversationTurn),
		capacity: capacity,
	}
}

// Append adds a turn to the user's history, evicting the oldest turns once
// the capacity is reached
func (h *HistoryStore) Append(userID string, turn ConversationTurn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	history := append(h.turns[userID], turn)
	if len(history) > h.capacity {
		history = history[len(history)-h.capacity:]
	}
	h.turns[userID] = history
}

// History returns a copy of the user's turns, oldest first
func (h *HistoryStore) History(userID string) []ConversationTurn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]ConversationTurn(nil), h.turns[userID]...)
}

// Clear drops one user's history
func (h *HistoryStore) Clear(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, userID)
}

// ConversationEngine turns user messages into responses. A message is
// classified into an intent, dispatched to the matching handler, and both
// the message and the response are recorded in history.
type ConversationEngine struct {
	classifier   *IntentClassifier
	orchestrator *Orchestrator
	extractor    ContentExtractor
	curator      *FeedCurator
	sources      *SourceTable
	educator     *Educator
	history      *HistoryStore
	now          func() time.Time
}

// NewConversationEngine wires the engine over its collaborators
func NewConversationEngine(orchestrator *Orchestrator, extractor ContentExtractor, curator *FeedCurator, sources *SourceTable, educator *Educator, cfg *Config) *ConversationEngine {
	return &ConversationEngine{
		classifier:   NewIntentClassifier(),
		orchestrator: orchestrator,
		extractor:    extractor,
		curator:      curator,
		sources:      sources,
		educator:     educator,
		history:      NewHistoryStore(cfg.HistoryLimit),
		now:          time.Now,
	}
}

// History exposes the underlying store
func (e *ConversationEngine) History(userID string) []ConversationTurn {
	return e.history.History(userID)
}

// ProcessMessage handles one user message end to end. A handler failure
// degrades to an apologetic response; the user always gets an answer and
// both turns are always recorded.
func (e *ConversationEngine) ProcessMessage(ctx context.Context, userID, text string) (ConversationTurn, error) {
	if err := ctx.Err(); err != nil {
		return ConversationTurn{}, err
	}

	intent := e.classifier.Classify(text)

	e.history.Append(userID, ConversationTurn{
		Role:      RoleUser,
		Text:      text,
		Timestamp: e.now(),
		Intent:    intent.Name,
	})

	reply, suggestions, err := e.dispatch(ctx, userID, text, intent)

	turn := ConversationTurn{
		Role:        RoleAssistant,
		Timestamp:   e.now(),
		Intent:      intent.Name,
		Suggestions: suggestions,
	}
	if err != nil {
		Logger().Warning("Handler for intent %s failed: %v", intent.Name, err)
		turn.Text = "I ran into a problem while working on that. Please try again in a moment."
		turn.Degraded = true
	} else {
		turn.Text = reply
	}

	e.history.Append(userID, turn)
	return turn, nil
}

// dispatch routes an intent to its handler
func (e *ConversationEngine) dispatch(ctx context.Context, userID, text string, intent Intent) (string, []string, error) {
	switch intent.Name {
	case IntentVerification:
		return e.handleVerification(ctx, text)
	case IntentURLVerification:
		return e.handleURLVerification(ctx, intent.URLs)
	case IntentNewsSearch:
		return e.handleNewsSearch(ctx, text)
	case IntentSourceCredibility:
		return e.handleSourceCredibility(text)
	case IntentHowTo:
		return e.handleHowTo()
	case IntentGreeting:
		return e.handleGreeting()
	default:
		return e.handleGeneralQuestion()
	}
}

// handleVerification verifies a textual claim embedded in the message
func (e *ConversationEngine) handleVerification(ctx context.Context, text string) (string, []string, error) {
	claim := extractClaim(text)
	if claim == "" {
		return "Please share the claim or article you'd like me to verify.",
			[]string{"Paste the text of the claim", "Share a link to the article"}, nil
	}

	item, err := e.extractor.Extract(ctx, claim)
	if err != nil {
		return "", nil, err
	}
	verdict, err := e.orchestrator.Analyze(ctx, item)
	if err != nil {
		return "", nil, err
	}

	return formatVerificationResponse(verdict),
		[]string{"Verify another claim", "How do I spot misinformation?"}, nil
}

// handleURLVerification verifies the first URL found in the message
func (e *ConversationEngine) handleURLVerification(ctx context.Context, urls []string) (string, []string, error) {
	if len(urls) == 0 {
		return "I couldn't find a link in your message. Please paste the full URL.", nil, nil
	}

	item, err := e.extractor.Extract(ctx, urls[0])
	if err != nil {
		return "", nil, err
	}
	verdict, err := e.orchestrator.Analyze(ctx, item)
	if err != nil {
		return "", nil, err
	}

	return formatVerificationResponse(verdict),
		[]string{"Check another article", "Tell me about this source"}, nil
}

// handleNewsSearch searches provider articles for the query
func (e *ConversationEngine) handleNewsSearch(ctx context.Context, text string) (string, []string, error) {
	query := extractSearchQuery(text)
	if query == "" {
		return "What topic would you like news about?",
			[]string{"News about climate change", "Latest news on AI"}, nil
	}

	articles, err := e.curator.Search(ctx, query)
	if err != nil {
		return "", nil, err
	}
	if len(articles) == 0 {
		return "I couldn't find recent articles about \"" + query + "\". Try a broader topic.",
			[]string{"Show trending topics"}, nil
	}

	return formatSearchResponse(query, articles),
		[]string{"Verify one of these articles", "Search another topic"}, nil
}

// handleSourceCredibility reports what we know about a named source
func (e *ConversationEngine) handleSourceCredibility(text string) (string, []string, error) {
	name := extractSourceName(text)
	if name == "" {
		return "Which news source would you like to know about?",
			[]string{"Is BBC reliable?", "How credible is CNN?"}, nil
	}

	blurb, known := sourceBlurb(name)
	if known {
		return blurb, []string{"Ask about another source", "How are sources scored?"}, nil
	}

	score := e.sources.TrustScore(name)
	return "I don't have detailed notes on " + name + ", but its estimated trust score is " +
			strconv.Itoa(score) + "/100. Cross-check its reporting with established outlets.",
		[]string{"Ask about another source"}, nil
}

// handleHowTo returns fact-checking guidance
func (e *ConversationEngine) handleHowTo() (string, []string, error) {
	guidance := e.educator.FactCheckGuidance()
	return formatGuidanceResponse(guidance),
		[]string{"Verify a claim now", "Show me trusted sources"}, nil
}

// handleGreeting returns the standard greeting
func (e *ConversationEngine) handleGreeting() (string, []string, error) {
	return "Hello! I'm your news verification assistant. I can fact-check claims, " +
			"verify articles, and help you find trustworthy news. What can I do for you?",
		[]string{"Verify a claim", "Find news on a topic", "Check a source's credibility"}, nil
}

// handleGeneralQuestion is the fallthrough for unmatched messages
func (e *ConversationEngine) handleGeneralQuestion() (string, []string, error) {
	return "I can help you verify news and claims. Try pasting an article link, " +
			"asking me to fact-check a statement, or searching for news on a topic.",
		[]string{"Verify a claim", "Search for news", "How do I spot misinformation?"}, nil
}
