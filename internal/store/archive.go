// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns conversation state and persistence for gemrun.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/util"
)

// DefaultMaxConversations caps how many conversations stay on disk.
const DefaultMaxConversations = 100

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive persists conversations as one JSON file each. model.Conversation
// carries its own JSON tags, so conversations are written as-is with no
// parallel stored type.
type Archive struct {
	// BaseDir is the directory for storing conversations
	// Default: ~/.gemrun/conversations/
	BaseDir string

	// MaxConversations limits stored conversations (0 = unlimited)
	MaxConversations int
}

// NewArchive creates an archive in the default location.
func NewArchive() (*Archive, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewArchiveWithDir(filepath.Join(homeDir, ".gemrun", "conversations"))
}

// NewArchiveWithDir creates an archive with a custom directory.
func NewArchiveWithDir(baseDir string) (*Archive, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &Archive{
		BaseDir:          baseDir,
		MaxConversations: DefaultMaxConversations,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation.
func (a *Archive) Save(conv *model.Conversation) error {
	if err := validateConversationID(conv.ID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(a.filePath(conv.ID), data, 0644); err != nil {
		return err
	}

	// Enforce max conversations limit
	if a.MaxConversations > 0 {
		a.enforceLimit()
	}

	return nil
}

// enforceLimit removes oldest conversations if over limit.
func (a *Archive) enforceLimit() {
	metas, err := a.List()
	if err != nil || len(metas) <= a.MaxConversations {
		return
	}

	// Sort by updated time (oldest first)
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	// Delete excess
	excess := len(metas) - a.MaxConversations
	for i := 0; i < excess; i++ {
		a.Delete(metas[i].ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID.
func (a *Archive) Load(id string) (*model.Conversation, error) {
	if err := validateConversationID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(a.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}

	return &conv, nil
}

// LoadAll retrieves every stored conversation, newest first.
// Corrupted files are skipped so one bad write never hides the rest.
func (a *Archive) LoadAll() ([]*model.Conversation, error) {
	entries, err := os.ReadDir(a.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var convs []*model.Conversation
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		conv, err := a.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip corrupted files
		}
		convs = append(convs, conv)
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	return convs, nil
}

// =============================================================================
// LIST AND SEARCH OPERATIONS
// =============================================================================

// List returns metadata for all saved conversations (most recent first).
func (a *Archive) List() ([]model.ConversationMeta, error) {
	convs, err := a.LoadAll()
	if err != nil {
		return nil, err
	}

	metas := make([]model.ConversationMeta, 0, len(convs))
	for _, conv := range convs {
		metas = append(metas, conv.Meta())
	}
	return metas, nil
}

// Search finds conversations whose title or preview matches the query
// (case-insensitive).
func (a *Archive) Search(query string) ([]model.ConversationMeta, error) {
	all, err := a.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []model.ConversationMeta

	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}

	return results, nil
}

// SearchMessages searches conversations by message content.
// Returns conversations where any message contains the query string
// (case-insensitive).
func (a *Archive) SearchMessages(query string) ([]model.ConversationMeta, error) {
	convs, err := a.LoadAll()
	if err != nil {
		return nil, err
	}
	if query == "" {
		metas := make([]model.ConversationMeta, 0, len(convs))
		for _, conv := range convs {
			metas = append(metas, conv.Meta())
		}
		return metas, nil
	}

	query = strings.ToLower(query)
	var results []model.ConversationMeta

	for _, conv := range convs {
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, conv.Meta())
				break // Found a match, move to next conversation
			}
		}
	}

	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (a *Archive) Delete(id string) error {
	if err := validateConversationID(id); err != nil {
		return err
	}

	if err := os.Remove(a.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}

	return nil
}

// Clear removes all saved conversations.
func (a *Archive) Clear() error {
	entries, err := os.ReadDir(a.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(a.BaseDir, entry.Name()))
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a conversation ID.
func (a *Archive) filePath(id string) string {
	return filepath.Join(a.BaseDir, id+".json")
}

// validateConversationID rejects IDs unusable as file names.
// SECURITY: IDs arrive from the HTTP API as well as from our own generator,
// so anything that could escape BaseDir is refused.
func validateConversationID(id string) error {
	if id == "" {
		return &ConversationError{Message: "conversation ID is empty"}
	}
	if !strings.HasPrefix(id, "conv_") {
		return ErrConversationNotFound
	}
	for _, r := range id[len("conv_"):] {
		if r < '0' || r > '9' {
			return ErrConversationNotFound
		}
	}
	return nil
}
