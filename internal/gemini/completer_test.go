// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/gemrun-tui/internal/model"
)

// =============================================================================
// CONVERSATION CONVERSION TESTS
// =============================================================================

func TestContentsFromConversation_FramesNewestUserTurn(t *testing.T) {
	conv := model.NewConversation()
	conv.AddUserMessage("What is recursion?")
	conv.AddAssistantMessage("Recursion is a function calling itself.")
	conv.AddUserMessage("And iteration?")

	contents := ContentsFromConversation(conv, false)

	if len(contents) != 3 {
		t.Fatalf("got %d turns, want 3", len(contents))
	}
	// Earlier turns stay as the user wrote them
	if got := contents[0].Parts[0].Text; got != "What is recursion?" {
		t.Errorf("turn 0 = %q, want unframed original", got)
	}
	// Only the newest user turn carries the framing
	want := TechnicalFraming + "And iteration?"
	if got := contents[2].Parts[0].Text; got != want {
		t.Errorf("turn 2 = %q, want %q", got, want)
	}
}

func TestContentsFromConversation_SimpleMode(t *testing.T) {
	conv := model.NewConversation()
	conv.AddUserMessage("What is recursion?")

	contents := ContentsFromConversation(conv, true)

	if len(contents) != 1 {
		t.Fatalf("got %d turns, want 1", len(contents))
	}
	want := SimpleFraming + "What is recursion?"
	if got := contents[0].Parts[0].Text; got != want {
		t.Errorf("turn 0 = %q, want %q", got, want)
	}
}

func TestContentsFromConversation_SkipsFailedEntries(t *testing.T) {
	conv := model.NewConversation()
	conv.AddUserMessage("first question")
	conv.AddFailedMessage("Something went wrong. Please try again.")
	conv.AddUserMessage("second question")

	contents := ContentsFromConversation(conv, false)

	if len(contents) != 2 {
		t.Fatalf("got %d turns, want 2 (failed entry skipped)", len(contents))
	}
	for i, c := range contents {
		if c.Role != RoleUser {
			t.Errorf("turn %d role = %q, want user", i, c.Role)
		}
	}
	want := TechnicalFraming + "second question"
	if got := contents[1].Parts[0].Text; got != want {
		t.Errorf("turn 1 = %q, want %q", got, want)
	}
}

func TestContentsFromConversation_MapsAssistantToModelRole(t *testing.T) {
	conv := model.NewConversation()
	conv.AddUserMessage("hello")
	conv.AddAssistantMessage("hi there")

	contents := ContentsFromConversation(conv, false)

	if len(contents) != 2 {
		t.Fatalf("got %d turns, want 2", len(contents))
	}
	if contents[1].Role != RoleModel {
		t.Errorf("assistant turn role = %q, want %q", contents[1].Role, RoleModel)
	}
}

// =============================================================================
// COMPLETER TESTS
// =============================================================================

func TestCompleter_Complete(t *testing.T) {
	var gotReq GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Iteration repeats a block of code.\n"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	completer := NewCompleter(NewClient(testAPIKey).WithBaseURL(server.URL))

	conv := model.NewConversation()
	conv.AddUserMessage("What is recursion?")
	conv.AddAssistantMessage("Recursion is a function calling itself.")
	conv.AddUserMessage("And iteration?")

	reply, err := completer.Complete(context.Background(), conv, false)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if reply != "Iteration repeats a block of code." {
		t.Errorf("Complete() = %q", reply)
	}

	if len(gotReq.Contents) != 3 {
		t.Fatalf("sent %d turns, want full history of 3", len(gotReq.Contents))
	}
	want := TechnicalFraming + "And iteration?"
	if got := gotReq.Contents[2].Parts[0].Text; got != want {
		t.Errorf("newest turn = %q, want %q", got, want)
	}
}

func TestCompleter_Complete_PropagatesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Permission denied.","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	completer := NewCompleter(NewClient(testAPIKey).WithBaseURL(server.URL))

	conv := model.NewConversation()
	conv.AddUserMessage("hello")

	_, err := completer.Complete(context.Background(), conv, false)
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Complete() = %v, want ErrAuthFailed", err)
	}
}

func TestCompleter_Complete_EmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	completer := NewCompleter(NewClient(testAPIKey).WithBaseURL(server.URL))

	conv := model.NewConversation()
	conv.AddUserMessage("hello")

	_, err := completer.Complete(context.Background(), conv, false)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Complete() = %v, want ErrEmptyResponse", err)
	}
}
