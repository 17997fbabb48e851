// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"path/filepath"
	"testing"

	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/store"
)

// =============================================================================
// INDEX WIRING
// =============================================================================

// Opening the index must leave it queryable: archived conversations are
// picked up without any separate rebuild step.
func TestOpenIndex_SearchableImmediately(t *testing.T) {
	dir := t.TempDir()

	archive, err := store.NewArchiveWithDir(filepath.Join(dir, "conversations"))
	if err != nil {
		t.Fatalf("NewArchiveWithDir: %v", err)
	}
	conv := model.NewConversation()
	conv.AddUserMessage("What is recursion?")
	conv.AddAssistantMessage("A function calling itself.")
	if err := archive.Save(conv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg := config.Default()
	cfg.Storage.Dir = dir

	idx, err := openIndex(cfg)
	if err != nil {
		t.Fatalf("openIndex: %v", err)
	}
	defer idx.Close()

	matches, err := idx.Search("recursion", index.DefaultMaxResults)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected the archived conversation to match")
	}
	if matches[0].ConversationID != conv.ID {
		t.Errorf("match ConversationID = %q, want %q", matches[0].ConversationID, conv.ID)
	}
}

// An empty archive still yields a working index rather than ErrNotIndexed.
func TestOpenIndex_EmptyArchiveYieldsEmptyResults(t *testing.T) {
	dir := t.TempDir()
	if _, err := store.NewArchiveWithDir(filepath.Join(dir, "conversations")); err != nil {
		t.Fatalf("NewArchiveWithDir: %v", err)
	}

	cfg := config.Default()
	cfg.Storage.Dir = dir

	idx, err := openIndex(cfg)
	if err != nil {
		t.Fatalf("openIndex: %v", err)
	}
	defer idx.Close()

	matches, err := idx.Search("anything", index.DefaultMaxResults)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from an empty archive, want 0", len(matches))
	}
}
