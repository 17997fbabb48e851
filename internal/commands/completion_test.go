// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/gemrun-tui/internal/model"
)

// =============================================================================
// COMMAND NAME COMPLETION
// =============================================================================

func TestCompleteCommandNames(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	t.Run("prefix narrows candidates", func(t *testing.T) {
		got := completer.Complete("/mo", 3)
		if len(got) < 3 {
			t.Fatalf("Complete(/mo) = %d results, want at least /mode /model /models", len(got))
		}
		for _, c := range got {
			if !strings.HasPrefix(c.Value, "/mo") {
				t.Errorf("completion %q does not match prefix /mo", c.Value)
			}
		}
	})

	t.Run("bare slash lists everything", func(t *testing.T) {
		got := completer.Complete("/", 1)
		if len(got) < 10 {
			t.Errorf("Complete(/) = %d results, want the full command set", len(got))
		}
	})

	t.Run("plain text yields nothing", func(t *testing.T) {
		if got := completer.Complete("what is recursion", 17); got != nil {
			t.Errorf("plain text should not complete, got %v", got)
		}
	})

	t.Run("exact match ranks first", func(t *testing.T) {
		got := completer.Complete("/mode", 5)
		if len(got) == 0 {
			t.Fatal("expected completions for /mode")
		}
		if got[0].Value != "/mode" {
			t.Errorf("first completion = %q, want /mode", got[0].Value)
		}
	})
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func TestCompleteEnumArgs(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	got := completer.Complete("/mode s", 7)
	if len(got) != 1 || got[0].Value != "simple" {
		t.Errorf("Complete(/mode s) = %v, want [simple]", got)
	}

	got = completer.Complete("/export ", 8)
	if len(got) != 4 {
		t.Errorf("Complete(/export ) = %d results, want 4 formats", len(got))
	}
}

func TestCompleteCategories(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	got := completer.Complete("/suggest Pro", 12)
	if len(got) != 1 || got[0].Value != "Programming" {
		t.Errorf("Complete(/suggest Pro) = %v, want [Programming]", got)
	}
}

func TestCompleteConversations(t *testing.T) {
	completer := NewCompleter(NewRegistry())
	completer.ConversationsFn = func() []model.ConversationMeta {
		return []model.ConversationMeta{
			{ID: "conv_100", Title: "What is recursion?", Date: "2026-08-20", UpdatedAt: time.Now()},
			{ID: "conv_200", Title: "Why is the sky blue?", Date: "2026-08-21", UpdatedAt: time.Now()},
		}
	}

	t.Run("matches by ID prefix", func(t *testing.T) {
		got := completer.Complete("/load conv_1", 12)
		if len(got) != 1 || got[0].Value != "conv_100" {
			t.Errorf("Complete(/load conv_1) = %v, want [conv_100]", got)
		}
	})

	t.Run("matches by title substring", func(t *testing.T) {
		got := completer.Complete("/load sky", 9)
		if len(got) != 1 || got[0].Value != "conv_200" {
			t.Errorf("Complete(/load sky) = %v, want [conv_200]", got)
		}
	})

	t.Run("no callback means no completions", func(t *testing.T) {
		bare := NewCompleter(NewRegistry())
		if got := bare.Complete("/load conv", 10); got != nil {
			t.Errorf("expected nil without ConversationsFn, got %v", got)
		}
	})
}

func TestCompleteModels(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	got := completer.Complete("/model gemini", 13)
	if len(got) == 0 {
		t.Fatal("expected model completions for the gemini prefix")
	}
	for _, c := range got {
		if !strings.HasPrefix(strings.ToLower(c.Value), "gemini") {
			t.Errorf("completion %q does not match prefix gemini", c.Value)
		}
	}
}

// =============================================================================
// COMPLETION STATE
// =============================================================================

func TestCompletionState(t *testing.T) {
	cs := NewCompletionState()

	if cs.Visible {
		t.Error("fresh state should not be visible")
	}

	cs.Update("/mo", []Completion{
		{Value: "/mode"},
		{Value: "/model"},
		{Value: "/models"},
	})

	if !cs.Visible {
		t.Error("state with completions should be visible")
	}
	if cs.Accept() != "/mode" {
		t.Errorf("Accept() = %q, want first item auto-selected", cs.Accept())
	}

	cs.Next()
	if cs.Accept() != "/model" {
		t.Errorf("after Next, Accept() = %q, want /model", cs.Accept())
	}

	cs.Prev()
	cs.Prev()
	if cs.Accept() != "/models" {
		t.Errorf("Prev should wrap to last item, got %q", cs.Accept())
	}

	cs.Clear()
	if cs.Visible || len(cs.Completions) != 0 {
		t.Error("Clear should reset the state")
	}
}
