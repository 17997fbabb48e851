// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// server.go - loopback web chat server for gemrun.
//
// Endpoints:
//   - GET    /                        - The chat page
//   - POST   /api/chat                - Submit a message, get the transcript
//   - GET    /api/conversations       - List saved conversations
//   - DELETE /api/conversations/{id}  - Delete a conversation
//   - GET    /api/suggestions         - Built-in prompt decks
//   - GET    /api/search?q=           - Full-text search
//   - GET    /health                  - Health check
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/markdown"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/store"
	"github.com/jeranaias/gemrun-tui/internal/suggest"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default listen port for gemrun serve.
	DefaultPort = 8791

	// MaxRequestBodySize caps request bodies at 1MB.
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxTextLength caps a single chat message.
	MaxTextLength = 32 * 1024

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 5 * time.Second

	// rateBurst is the token bucket burst on top of the configured rate.
	rateBurst = 10
)

// Version is reported by /health. Overridden from main at startup.
var Version = "0.1.0"

// ============================================================================
// SERVER
// ============================================================================

// Server hosts the browser chat surface on loopback.
type Server struct {
	cfg   *config.Config
	store *store.TranscriptStore
	idx   *index.ConversationIndex

	handler http.Handler
	httpSrv *http.Server
}

// New creates a Server. idx may be nil; search then reports unavailable
// while everything else keeps working.
func New(cfg *config.Config, st *store.TranscriptStore, idx *index.ConversationIndex) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		idx:   idx,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/conversations", s.handleConversations)
	mux.HandleFunc("DELETE /api/conversations/{id}", s.handleDeleteConversation)
	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /health", s.handleHealth)

	rateLimit := cfg.Server.RateLimit
	if rateLimit <= 0 {
		rateLimit = 5
	}

	s.handler = Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(),
		RateLimitMiddleware(rateLimit, rateBurst),
	)(mux)

	s.httpSrv = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Addr returns the loopback listen address.
func (s *Server) Addr() string {
	port := s.cfg.Server.Port
	if port <= 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("127.0.0.1:%d", port)
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Printf("SERVER_SHUTDOWN | addr=%s", s.Addr())
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ============================================================================
// JSON HELPERS
// ============================================================================

// apiError is the JSON error envelope.
type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON_ENCODE_FAILED | error=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// ============================================================================
// CHAT API
// ============================================================================

// chatRequest is the POST /api/chat request body.
type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Text           string `json:"text"`
	Simple         bool   `json:"simple"`
}

// chatMessage is one transcript entry in API responses, with the content
// already rendered to an HTML fragment.
type chatMessage struct {
	Role   string `json:"role"`
	HTML   string `json:"html"`
	Failed bool   `json:"failed,omitempty"`
}

// chatResponse is the POST /api/chat response body.
type chatResponse struct {
	Conversation model.ConversationMeta `json:"conversation"`
	Messages     []chatMessage          `json:"messages"`
}

// handleChat submits one message and returns the updated transcript.
// A failed completion still returns 200: the failure shows up as a
// failed-flagged transcript entry, the same way the TUI renders it.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is empty")
		return
	}
	if len(text) > MaxTextLength {
		writeError(w, http.StatusRequestEntityTooLarge, "text too long")
		return
	}

	if s.store.Busy() {
		writeError(w, http.StatusConflict, "a completion is already in flight")
		return
	}

	if req.ConversationID != "" && req.ConversationID != s.store.ActiveID() {
		if err := s.store.LoadConversation(req.ConversationID); err != nil {
			writeError(w, http.StatusNotFound, "unknown conversation "+req.ConversationID)
			return
		}
	}
	s.store.SetSimpleMode(req.Simple)

	if _, err := s.store.Send(r.Context(), text); err != nil {
		// The store records the failure as a transcript entry; only
		// pre-submit errors surface as HTTP errors.
		log.Printf("CHAT_TURN_FAILED | error=%v", err)
	}

	conv := s.store.Active()
	if conv == nil {
		writeError(w, http.StatusInternalServerError, "no active conversation")
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse(conv))
}

// transcriptResponse renders a conversation for the API.
func transcriptResponse(conv *model.Conversation) chatResponse {
	resp := chatResponse{
		Conversation: conv.Meta(),
		Messages:     make([]chatMessage, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		resp.Messages = append(resp.Messages, chatMessage{
			Role:   msg.Role.String(),
			HTML:   markdown.Format(msg.Content),
			Failed: msg.Failed,
		})
	}
	return resp
}

// ============================================================================
// CONVERSATIONS API
// ============================================================================

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Conversations())
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteConversation(id); err != nil {
		writeError(w, http.StatusNotFound, "unknown conversation "+id)
		return
	}
	log.Printf("CONVERSATION_DELETED | id=%s", id)
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// SUGGESTIONS AND SEARCH API
// ============================================================================

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, suggest.Categories())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	if s.idx == nil {
		writeError(w, http.StatusServiceUnavailable, "search index unavailable")
		return
	}

	matches, err := s.idx.Search(query, index.DefaultMaxResults)
	if err != nil {
		if errors.Is(err, index.ErrNotIndexed) {
			writeError(w, http.StatusServiceUnavailable, "search index not built yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if matches == nil {
		matches = []index.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// ============================================================================
// HEALTH
// ============================================================================

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Conversations int    `json:"conversations"`
	SearchIndexed bool   `json:"search_indexed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		Version:       Version,
		Conversations: s.store.Count(),
	}
	if s.idx != nil {
		resp.SearchIndexed = s.idx.IsIndexed()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// CHAT PAGE
// ============================================================================

// pageMessage is one transcript entry for the template, pre-rendered.
// The HTML field is the formatter's escaped output; nothing else on the
// page bypasses escaping.
type pageMessage struct {
	Role   string
	Label  string
	HTML   template.HTML
	Failed bool
}

// pageData feeds the chat page template.
type pageData struct {
	Title         string
	ActiveID      string
	ActiveTitle   string
	SimpleMode    bool
	Messages      []pageMessage
	Conversations []model.ConversationMeta
	Decks         []suggest.Category
}

// handleIndex serves the chat page with the active transcript inlined.
// Sidebar links navigate with ?c=<id> to switch conversations and ?new=1
// to start a fresh one.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("c"); id != "" && id != s.store.ActiveID() {
		if err := s.store.LoadConversation(id); err != nil {
			log.Printf("CONVERSATION_LOAD_FAILED | id=%s error=%v", id, err)
		}
	} else if r.URL.Query().Get("new") != "" {
		if conv := s.store.Active(); conv == nil || !conv.IsEmpty() {
			if _, err := s.store.StartNewChat(); err != nil {
				log.Printf("NEW_CHAT_FAILED | error=%v", err)
			}
		}
	}

	data := pageData{
		Title:         "gemrun",
		SimpleMode:    s.store.SimpleMode(),
		Conversations: s.store.Conversations(),
		Decks:         suggest.Categories(),
	}

	if conv := s.store.Active(); conv != nil {
		data.ActiveID = conv.ID
		data.ActiveTitle = conv.DisplayTitle()
		for _, msg := range conv.Messages {
			data.Messages = append(data.Messages, pageMessage{
				Role:   msg.Role.String(),
				Label:  msg.Role.DisplayName(),
				HTML:   template.HTML(markdown.Format(msg.Content)),
				Failed: msg.Failed,
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatPageTemplate.Execute(w, data); err != nil {
		log.Printf("TEMPLATE_RENDER_FAILED | error=%v", err)
	}
}
