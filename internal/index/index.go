// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/gemrun-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotIndexed    = errors.New("conversations not indexed")
	ErrIndexing      = errors.New("indexing in progress")
	ErrDatabaseError = errors.New("database error")
	ErrInvalidPath   = errors.New("invalid path")
)

// =============================================================================
// CONVERSATION INDEX
// =============================================================================

// ConversationIndex indexes the JSON conversation archive for fast search.
type ConversationIndex struct {
	db      *sql.DB
	watcher *ArchiveWatcher
	dir     string
	mu      sync.RWMutex

	// Indexing state
	indexing   bool
	indexingMu sync.Mutex
	lastBuilt  time.Time
	convCount  int
	msgCount   int

	config *Config
}

// Config holds index configuration.
type Config struct {
	// ArchiveDir is the conversation archive directory.
	ArchiveDir string

	// DatabasePath is where to store the SQLite database.
	DatabasePath string

	// WatchDebounce is the debounce duration for file change events.
	WatchDebounce time.Duration
}

// DefaultConfig returns the default configuration for an archive directory.
// The database lives next to the archive, not inside it, so the watcher
// never sees its own writes.
func DefaultConfig(archiveDir string) *Config {
	return &Config{
		ArchiveDir:    archiveDir,
		DatabasePath:  filepath.Join(filepath.Dir(archiveDir), "search.db"),
		WatchDebounce: 500 * time.Millisecond,
	}
}

// Open opens (creating if necessary) the conversation index.
func Open(config *Config) (*ConversationIndex, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	info, err := os.Stat(config.ArchiveDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory", ErrInvalidPath)
	}

	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; keep a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	idx := &ConversationIndex{
		db:     db,
		dir:    config.ArchiveDir,
		config: config,
	}

	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Stale stats are harmless; Rebuild refreshes them
	idx.loadStats()

	return idx, nil
}

// initSchema creates the database schema.
func (idx *ConversationIndex) initSchema() error {
	if _, err := idx.db.Exec(Schema); err != nil {
		return err
	}
	if _, err := idx.db.Exec(InitMetadata); err != nil {
		return err
	}
	_, err := idx.db.Exec("UPDATE metadata SET value = ? WHERE key = 'archive_dir'", idx.dir)
	return err
}

// Close closes the index and releases resources.
func (idx *ConversationIndex) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.watcher != nil {
		idx.watcher.Close()
		idx.watcher = nil
	}
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Dir returns the archive directory the index covers.
func (idx *ConversationIndex) Dir() string {
	return idx.dir
}

// =============================================================================
// INDEXING
// =============================================================================

// Rebuild drops and recreates the index from every conversation file in
// the archive directory. Corrupt files are skipped, matching the
// archive's own tolerance for them.
func (idx *ConversationIndex) Rebuild(ctx context.Context) error {
	idx.indexingMu.Lock()
	if idx.indexing {
		idx.indexingMu.Unlock()
		return ErrIndexing
	}
	idx.indexing = true
	idx.indexingMu.Unlock()

	defer func() {
		idx.indexingMu.Lock()
		idx.indexing = false
		idx.indexingMu.Unlock()
	}()

	startTime := time.Now()

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages_fts"); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}

	entries, err := os.ReadDir(idx.dir)
	if err != nil {
		return fmt.Errorf("failed to read archive directory: %w", err)
	}

	var convCount, msgCount int
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		conv, err := readConversationFile(filepath.Join(idx.dir, entry.Name()))
		if err != nil {
			// Corrupt file; skip rather than fail the rebuild
			continue
		}

		if err := insertConversation(tx, conv); err != nil {
			return err
		}
		convCount++
		msgCount += len(conv.Messages)
	}

	now := time.Now().Unix()
	if _, err := tx.Exec("UPDATE metadata SET value = ? WHERE key = 'last_rebuild'", now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	idx.mu.Lock()
	idx.lastBuilt = startTime
	idx.convCount = convCount
	idx.msgCount = msgCount
	idx.mu.Unlock()

	return nil
}

// Add indexes (or reindexes) a single conversation.
func (idx *ConversationIndex) Add(conv *model.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("%w: nil conversation", ErrInvalidPath)
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := deleteConversation(tx, conv.ID); err != nil {
		return err
	}
	if err := insertConversation(tx, conv); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	idx.refreshStats()
	return nil
}

// AddFile indexes the conversation stored in a single archive file.
func (idx *ConversationIndex) AddFile(path string) error {
	conv, err := readConversationFile(path)
	if err != nil {
		return err
	}
	return idx.Add(conv)
}

// Remove drops a conversation from the index.
func (idx *ConversationIndex) Remove(id string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := deleteConversation(tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	idx.refreshStats()
	return nil
}

// insertConversation writes one conversation's rows. Text is normalized
// to NFC so composed and decomposed spellings of the same word match.
func insertConversation(tx *sql.Tx, conv *model.Conversation) error {
	title := norm.NFC.String(conv.DisplayTitle())

	_, err := tx.Exec(`
		INSERT INTO conversations (id, title, date, message_count, updated_at, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, conv.ID, title, conv.Date, len(conv.Messages), conv.UpdatedAt.Unix(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for _, msg := range conv.Messages {
		_, err := tx.Exec(`
			INSERT INTO messages_fts (conv_id, role, title, content)
			VALUES (?, ?, ?, ?)
		`, conv.ID, string(msg.Role), title, norm.NFC.String(msg.Content))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}
	return nil
}

// deleteConversation removes one conversation's rows.
func deleteConversation(tx *sql.Tx, id string) error {
	if _, err := tx.Exec("DELETE FROM messages_fts WHERE conv_id = ?", id); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := tx.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// readConversationFile loads one archived conversation.
func readConversationFile(path string) (*model.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("corrupt conversation file %s: %w", filepath.Base(path), err)
	}
	if conv.ID == "" {
		return nil, fmt.Errorf("conversation file %s has no id", filepath.Base(path))
	}
	return &conv, nil
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats holds index statistics.
type Stats struct {
	ConversationCount int
	MessageCount      int
	LastRebuild       time.Time
	IsIndexing        bool
	DatabaseSize      int64
}

// Stats returns current index statistics.
func (idx *ConversationIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	idx.indexingMu.Lock()
	indexing := idx.indexing
	idx.indexingMu.Unlock()

	var dbSize int64
	if info, err := os.Stat(idx.config.DatabasePath); err == nil {
		dbSize = info.Size()
	}

	return Stats{
		ConversationCount: idx.convCount,
		MessageCount:      idx.msgCount,
		LastRebuild:       idx.lastBuilt,
		IsIndexing:        indexing,
		DatabaseSize:      dbSize,
	}
}

// IsIndexed reports whether a rebuild has completed for this process.
func (idx *ConversationIndex) IsIndexed() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return !idx.lastBuilt.IsZero()
}

// loadStats restores statistics persisted by a previous run.
func (idx *ConversationIndex) loadStats() {
	var lastRebuild int64
	if err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_rebuild'").Scan(&lastRebuild); err == nil && lastRebuild > 0 {
		idx.lastBuilt = time.Unix(lastRebuild, 0)
	}
	idx.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&idx.convCount)
	idx.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&idx.msgCount)
}

// refreshStats recounts after an incremental change.
func (idx *ConversationIndex) refreshStats() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&idx.convCount)
	idx.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&idx.msgCount)
}
