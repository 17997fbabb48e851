// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strconv"
	"strings"
	"testing"
)

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "short text unchanged",
			input: "short",
			want:  "short",
		},
		{
			name:  "exactly thirty runes unchanged",
			input: "abcdefghijklmnopqrstuvwxyz0123",
			want:  "abcdefghijklmnopqrstuvwxyz0123",
		},
		{
			name:  "thirty one runes truncated with ellipsis",
			input: "abcdefghijklmnopqrstuvwxyz01234",
			want:  "abcdefghijklmnopqrstuvwxyz0123…",
		},
		{
			name:  "newlines collapse to spaces",
			input: "line one\nline two",
			want:  "line one line two",
		},
		{
			name:  "interior whitespace collapses before measuring",
			input: "  what   is\n\nrecursion?  ",
			want:  "what is recursion?",
		},
		{
			name:  "multibyte runes counted not bytes",
			input: strings.Repeat("界", 31),
			want:  strings.Repeat("界", 30) + "…",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveTitle(tc.input)
			if got != tc.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDeriveTitle_TruncatedLength(t *testing.T) {
	got := DeriveTitle(strings.Repeat("x", 100))
	if n := len([]rune(got)); n != TitleMaxRunes+1 {
		t.Errorf("truncated title has %d runes, want %d (budget + ellipsis)", n, TitleMaxRunes+1)
	}
	if !strings.HasSuffix(got, titleEllipsis) {
		t.Errorf("truncated title %q should end with ellipsis", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	conv := NewConversation()

	if !strings.HasPrefix(conv.ID, "conv_") {
		t.Errorf("ID = %q, want conv_ prefix", conv.ID)
	}
	if _, err := strconv.ParseInt(strings.TrimPrefix(conv.ID, "conv_"), 10, 64); err != nil {
		t.Errorf("ID suffix should be unix nanos: %v", err)
	}
	if conv.Date != conv.CreatedAt.Format("2006-01-02") {
		t.Errorf("Date = %q, want creation date %q", conv.Date, conv.CreatedAt.Format("2006-01-02"))
	}
	if !conv.IsEmpty() {
		t.Error("new conversation should be empty")
	}
	if conv.Title != "" {
		t.Errorf("new conversation Title = %q, want empty", conv.Title)
	}
}

func TestConversation_TitleFixedOnFirstUserMessage(t *testing.T) {
	conv := NewConversation()

	conv.AddUserMessage("What is recursion?")
	if conv.Title != "What is recursion?" {
		t.Errorf("Title = %q, want %q", conv.Title, "What is recursion?")
	}

	// Later messages never change the title.
	conv.AddAssistantMessage("Recursion is when a function calls itself.")
	conv.AddUserMessage("A different question entirely")
	if conv.Title != "What is recursion?" {
		t.Errorf("Title changed to %q after later messages", conv.Title)
	}
}

func TestConversation_TitleTruncatesLongFirstMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage(strings.Repeat("a", 31))

	want := strings.Repeat("a", 30) + "…"
	if conv.Title != want {
		t.Errorf("Title = %q, want %q", conv.Title, want)
	}
}

func TestConversation_AddMessages(t *testing.T) {
	conv := NewConversation()

	user := conv.AddUserMessage("hello")
	asst := conv.AddAssistantMessage("hi there")
	failed := conv.AddFailedMessage("request failed: rate limited")

	if conv.MessageCount() != 3 {
		t.Fatalf("MessageCount() = %d, want 3", conv.MessageCount())
	}
	if user.Role != RoleUser {
		t.Errorf("user message role = %q", user.Role)
	}
	if asst.Role != RoleAssistant || asst.Failed {
		t.Errorf("assistant message role = %q, failed = %v", asst.Role, asst.Failed)
	}
	if failed.Role != RoleAssistant || !failed.Failed {
		t.Errorf("failed message role = %q, failed = %v", failed.Role, failed.Failed)
	}
	if user.ID == asst.ID {
		t.Error("message IDs should be unique")
	}
}

func TestConversation_FirstAndLastLookups(t *testing.T) {
	conv := NewConversation()

	if conv.FirstUserMessage() != nil {
		t.Error("FirstUserMessage() on empty conversation should be nil")
	}
	if conv.LastAssistantMessage() != nil {
		t.Error("LastAssistantMessage() on empty conversation should be nil")
	}

	conv.AddUserMessage("first question")
	conv.AddAssistantMessage("first answer")
	conv.AddUserMessage("second question")
	failed := conv.AddFailedMessage("request failed: server error")

	if got := conv.FirstUserMessage().Content; got != "first question" {
		t.Errorf("FirstUserMessage().Content = %q", got)
	}
	if got := conv.LastUserMessage().Content; got != "second question" {
		t.Errorf("LastUserMessage().Content = %q", got)
	}
	// Failed entries hold the assistant slot for their turn.
	if got := conv.LastAssistantMessage(); got != failed {
		t.Errorf("LastAssistantMessage() = %+v, want the failed entry", got)
	}
}

func TestConversation_Clone(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("original")
	conv.SimpleMode = true

	clone := conv.Clone()

	if clone.ID != conv.ID || clone.Title != conv.Title || clone.Date != conv.Date {
		t.Error("clone should copy identity fields")
	}
	if !clone.SimpleMode {
		t.Error("clone should copy SimpleMode")
	}

	// Mutating the clone must not touch the original.
	clone.Messages[0].Content = "mutated"
	if conv.Messages[0].Content != "original" {
		t.Error("clone shares message storage with the original")
	}
}

func TestConversation_MessageByID(t *testing.T) {
	conv := NewConversation()
	msg := conv.AddUserMessage("findable")

	if got := conv.MessageByID(msg.ID); got != msg {
		t.Errorf("MessageByID(%q) = %+v, want the added message", msg.ID, got)
	}
	if got := conv.MessageByID("missing"); got != nil {
		t.Errorf("MessageByID(missing) = %+v, want nil", got)
	}
}

func TestConversation_PruneOldMessages(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddMessage(NewUserMessage(strconv.Itoa(i)))
	}

	if conv.MessageCount() != MaxMessages {
		t.Errorf("MessageCount() = %d, want %d after pruning", conv.MessageCount(), MaxMessages)
	}
	// The newest messages survive, in order.
	if got := conv.LastMessage().Content; got != strconv.Itoa(MaxMessages+9) {
		t.Errorf("LastMessage().Content = %q", got)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short content unchanged", "hello", 10, "hello"},
		{"long content truncated", "hello world", 8, "hello..."},
		{"multibyte safe", strings.Repeat("日", 10), 8, strings.Repeat("日", 5) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewUserMessage(tc.content)
			if got := msg.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestRole_DisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", got)
	}
	if got := RoleAssistant.DisplayName(); got != "Gemini" {
		t.Errorf("RoleAssistant.DisplayName() = %q", got)
	}
}

// =============================================================================
// MODEL REGISTRY TESTS
// =============================================================================

func TestModels_HaveRequiredFields(t *testing.T) {
	for alias, info := range Models {
		t.Run(alias, func(t *testing.T) {
			if info.ID == "" {
				t.Error("ModelInfo.ID should not be empty")
			}
			if info.Name == "" {
				t.Error("ModelInfo.Name should not be empty")
			}
			if info.ContextTokens <= 0 {
				t.Error("ModelInfo.ContextTokens should be positive")
			}
		})
	}
}

func TestGetModelInfo(t *testing.T) {
	// By short alias
	info, ok := GetModelInfo("flash")
	if !ok {
		t.Fatal("GetModelInfo(flash) should return true")
	}
	if info.ID != "gemini-2.0-flash" {
		t.Errorf("GetModelInfo(flash).ID = %q", info.ID)
	}

	// By full API ID
	if _, ok := GetModelInfo("gemini-1.5-pro"); !ok {
		t.Error("GetModelInfo should find model by API ID")
	}

	// Unknown
	if _, ok := GetModelInfo("nonexistent-model"); ok {
		t.Error("GetModelInfo(nonexistent-model) should return false")
	}
}

func TestResolveModelID(t *testing.T) {
	if got := ResolveModelID("pro"); got != "gemini-1.5-pro" {
		t.Errorf("ResolveModelID(pro) = %q", got)
	}
	// Unknown names pass through for forward compatibility.
	if got := ResolveModelID("gemini-9.9-future"); got != "gemini-9.9-future" {
		t.Errorf("ResolveModelID passthrough = %q", got)
	}
}

func TestDefaultModel_IsRegistered(t *testing.T) {
	if _, ok := GetModelInfo(DefaultModel); !ok {
		t.Errorf("DefaultModel %q should be in the registry", DefaultModel)
	}
}
