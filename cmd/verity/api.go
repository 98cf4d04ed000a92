package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const apiRequestTimeout = 30 * time.Second

// APIServer exposes verification, feed and chat over HTTP
type APIServer struct {
	orchestrator *Orchestrator
	extractor    ContentExtractor
	curator      *FeedCurator
	conversation *ConversationEngine
	recommender  *Recommender
	hub          *MonitorHub
	cache        *FeedCache

	server *http.Server
}

// NewAPIServer wires the HTTP layer
func NewAPIServer(cfg *Config, orchestrator *Orchestrator, extractor ContentExtractor, curator *FeedCurator, conversation *ConversationEngine, recommender *Recommender, hub *MonitorHub, cache *FeedCache) *APIServer {
	s := &APIServer{
		orchestrator: orchestrator,
		extractor:    extractor,
		curator:      curator,
		conversation: conversation,
		recommender:  recommender,
		hub:          hub,
		cache:        cache,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/verify", s.handleVerify).Methods(http.MethodPost)
	router.HandleFunc("/api/verify/{id}", s.handleVerifyResult).Methods(http.MethodGet)
	router.HandleFunc("/api/feed/{userID}", s.handleFeed).Methods(http.MethodGet)
	router.HandleFunc("/api/feed/{userID}/curated", s.handleCurated).Methods(http.MethodGet)
	router.HandleFunc("/api/recommendations/{userID}", s.handleRecommendations).Methods(http.MethodGet)
	router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/{userID}/history", s.handleChatHistory).Methods(http.MethodGet)
	router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.hub.HandleWS)

	s.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start runs the HTTP server until it is shut down
func (s *APIServer) Start() error {
	Logger().Info("HTTP API listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type verifyRequest struct {
	Content string `json:"content"`
}

// handleVerify runs the full analysis pipeline on submitted content
func (s *APIServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithHTTPError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondWithHTTPError(w, http.StatusBadRequest, "content is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), apiRequestTimeout)
	defer cancel()

	item, err := s.extractor.Extract(ctx, req.Content)
	if err != nil {
		if IsErrorType(err, ErrorTypeExtraction) {
			respondWithHTTPError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondWithHTTPError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	verdict, err := s.orchestrator.Analyze(ctx, item)
	if err != nil {
		respondWithHTTPError(w, http.StatusServiceUnavailable, "analysis did not complete")
		return
	}

	state.recordVerify()
	respondWithJSON(w, http.StatusOK, verdict)
}

// handleVerifyResult returns a previously computed verdict
func (s *APIServer) handleVerifyResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	verdict, ok := s.orchestrator.Result(id)
	if !ok {
		respondWithHTTPError(w, http.StatusNotFound, "no result for id "+id)
		return
	}
	respondWithJSON(w, http.StatusOK, verdict)
}

// prefsFromQuery builds feed preferences from query parameters
func prefsFromQuery(r *http.Request) FeedPreferences {
	q := r.URL.Query()
	prefs := FeedPreferences{
		Country:  q.Get("country"),
		Location: q.Get("location"),
	}
	if cats := q.Get("categories"); cats != "" {
		prefs.Categories = strings.Split(cats, ",")
	}
	if srcs := q.Get("sources"); srcs != "" {
		prefs.TrustedSources = strings.Split(srcs, ",")
	}
	return prefs
}

// handleFeed returns the scored feed for a user
func (s *APIServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	ctx, cancel := context.WithTimeout(r.Context(), apiRequestTimeout)
	defer cancel()

	entry, err := s.curator.Feed(ctx, userID, prefsFromQuery(r))
	if err != nil {
		respondWithHTTPError(w, http.StatusServiceUnavailable, "feed unavailable")
		return
	}

	state.recordFeed()
	respondWithJSON(w, http.StatusOK, entry)
}

// handleCurated returns the personalized top slice of the feed
func (s *APIServer) handleCurated(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	ctx, cancel := context.WithTimeout(r.Context(), apiRequestTimeout)
	defer cancel()

	entry, err := s.curator.Curate(ctx, userID, prefsFromQuery(r))
	if err != nil {
		respondWithHTTPError(w, http.StatusServiceUnavailable, "feed unavailable")
		return
	}

	state.recordFeed()
	respondWithJSON(w, http.StatusOK, entry)
}

// handleRecommendations returns the personalized bundle for a user
func (s *APIServer) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	ctx, cancel := context.WithTimeout(r.Context(), apiRequestTimeout)
	defer cancel()

	bundle, err := s.recommender.Recommendations(ctx, userID, prefsFromQuery(r))
	if err != nil {
		respondWithHTTPError(w, http.StatusServiceUnavailable, "recommendations unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, bundle)
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// handleChat processes one conversational message
func (s *APIServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithHTTPError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || strings.TrimSpace(req.Message) == "" {
		respondWithHTTPError(w, http.StatusBadRequest, "user_id and message are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), apiRequestTimeout)
	defer cancel()

	turn, err := s.conversation.ProcessMessage(ctx, req.UserID, req.Message)
	if err != nil {
		respondWithHTTPError(w, http.StatusServiceUnavailable, "chat unavailable")
		return
	}

	state.recordChat()
	respondWithJSON(w, http.StatusOK, turn)
}

// handleChatHistory returns a user's recorded turns, oldest first
func (s *APIServer) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	respondWithJSON(w, http.StatusOK, s.conversation.History(userID))
}

// handleStatus returns runtime counters
func (s *APIServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, state.snapshot(s.cache, s.hub))
}
