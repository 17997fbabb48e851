// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/store"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// echoCompleter answers every exchange with a fixed reply.
type echoCompleter struct {
	reply string
	err   error
}

func (c *echoCompleter) Complete(ctx context.Context, conv *model.Conversation, simple bool) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func newTestServer(t *testing.T, completer store.Completer) *Server {
	t.Helper()

	archive, err := store.NewArchiveWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchiveWithDir: %v", err)
	}
	st := store.NewTranscriptStore(completer, archive)

	cfg := config.Default()
	cfg.Server.RateLimit = 1000 // keep test requests under the limiter

	return New(cfg, st, nil)
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

// =============================================================================
// CHAT API
// =============================================================================

func TestChat_RoundTrip(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "hello from gemini"})

	w := postChat(t, srv, `{"text":"hi there"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Conversation.ID == "" {
		t.Error("conversation ID missing")
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(resp.Messages))
	}
	if resp.Messages[0].Role != "user" || resp.Messages[1].Role != "assistant" {
		t.Errorf("roles = %s/%s", resp.Messages[0].Role, resp.Messages[1].Role)
	}
	if !strings.Contains(resp.Messages[1].HTML, "hello from gemini") {
		t.Errorf("assistant html = %q", resp.Messages[1].HTML)
	}
}

func TestChat_RendersMarkdown(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "Use `go vet` first."})

	w := postChat(t, srv, `{"text":"how do I lint"}`)
	var resp chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Messages[1].HTML, `<code class="inline-code">go vet</code>`) {
		t.Errorf("html = %q, want inline code span", resp.Messages[1].HTML)
	}
}

func TestChat_EmptyTextRejected(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "unused"})

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`} {
		w := postChat(t, srv, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestChat_InvalidJSONRejected(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "unused"})

	w := postChat(t, srv, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChat_UnknownConversationIs404(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "unused"})

	w := postChat(t, srv, `{"conversation_id":"conv_nope","text":"hi"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestChat_FailureBecomesFailedMessage(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{err: errors.New("quota exhausted")})

	w := postChat(t, srv, `{"text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(resp.Messages))
	}
	if !resp.Messages[1].Failed {
		t.Error("second message should carry the failed flag")
	}
}

func TestChat_SimpleFlagFlipsStoreMode(t *testing.T) {
	completer := &echoCompleter{reply: "ok"}
	srv := newTestServer(t, completer)

	postChat(t, srv, `{"text":"hi","simple":true}`)
	if !srv.store.SimpleMode() {
		t.Error("store should be in simple mode after a simple request")
	}

	postChat(t, srv, `{"text":"hi again","simple":false}`)
	if srv.store.SimpleMode() {
		t.Error("store should be back in technical mode")
	}
}

// =============================================================================
// CONVERSATIONS API
// =============================================================================

func TestConversations_ListAndDelete(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})
	postChat(t, srv, `{"text":"make a conversation"}`)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}

	var metas []model.ConversationMeta
	if err := json.Unmarshal(w.Body.Bytes(), &metas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(metas) == 0 {
		t.Fatal("expected at least one conversation")
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/conversations/"+metas[0].ID, nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, del)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
}

func TestDeleteConversation_Unknown404(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})

	req := httptest.NewRequest(http.MethodDelete, "/api/conversations/conv_missing", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// =============================================================================
// SUGGESTIONS, SEARCH, HEALTH
// =============================================================================

func TestSuggestions(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/suggestions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Programming") {
		t.Error("expected the Programming deck in the payload")
	}
}

func TestSearch_WithoutIndexUnavailable(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search?q=docker", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when no index is wired", w.Code)
	}
}

func TestSearch_MissingQuery400(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status field = %q, want ok", resp.Status)
	}
	if resp.SearchIndexed {
		t.Error("search_indexed should be false without an index")
	}
}

// =============================================================================
// CHAT PAGE
// =============================================================================

func TestIndexPage_RendersTranscript(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "Answer with `code` in it"})
	postChat(t, srv, `{"text":"show me code"}`)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<title>gemrun</title>") {
		t.Error("page title missing")
	}
	if !strings.Contains(body, `<code class="inline-code">code</code>`) {
		t.Error("formatted transcript missing from page")
	}
	if !strings.Contains(body, "copy-btn") && !strings.Contains(body, "chat-form") {
		t.Error("page script hooks missing")
	}
}

func TestIndexPage_ShowsSuggestionChipsWhenEmpty(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(w.Body.String(), `class="chip"`) {
		t.Error("expected suggestion chips on an empty transcript")
	}
}

func TestIndexPage_EscapesMessageText(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})
	postChat(t, srv, `{"text":"<script>alert(1)</script>"}`)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Contains(w.Body.String(), "<script>alert(1)</script>") {
		t.Error("raw user HTML leaked into the page")
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}
	for name, want := range headers {
		if got := w.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy missing")
	}
}

func TestRateLimit_Enforced(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})
	srv.handler = Chain(RateLimitMiddleware(1, 2))(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	limited := false
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "127.0.0.1:50000"
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			if w.Header().Get("Retry-After") == "" {
				t.Error("429 without Retry-After")
			}
			break
		}
	}
	if !limited {
		t.Error("burst of requests never hit the rate limit")
	}
}

func TestRecovery_Converts500(t *testing.T) {
	handler := Chain(RecoveryMiddleware())(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAddr_DefaultsToLoopback(t *testing.T) {
	srv := newTestServer(t, &echoCompleter{reply: "ok"})
	if !strings.HasPrefix(srv.Addr(), "127.0.0.1:") {
		t.Errorf("Addr = %q, want a loopback address", srv.Addr())
	}
}
