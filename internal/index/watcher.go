// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// ARCHIVE WATCHER
// =============================================================================

// ArchiveWatcher keeps the index in step with the archive directory using
// fsnotify. Saves are debounced (editors and atomic renames produce
// bursts of events for one logical change); deletions are applied
// immediately.
type ArchiveWatcher struct {
	idx      *ConversationIndex
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]time.Time // file path -> last change time
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewArchiveWatcher creates a watcher over the index's archive directory.
func NewArchiveWatcher(idx *ConversationIndex, debounce time.Duration) (*ArchiveWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ArchiveWatcher{
		idx:      idx,
		watcher:  watcher,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for archive changes.
func (aw *ArchiveWatcher) Watch() error {
	if err := aw.watcher.Add(aw.idx.Dir()); err != nil {
		return err
	}

	go aw.processEvents()
	go aw.processPending()

	return nil
}

// Close stops watching and releases resources.
func (aw *ArchiveWatcher) Close() error {
	aw.cancel()
	return aw.watcher.Close()
}

// processEvents routes file system events.
func (aw *ArchiveWatcher) processEvents() {
	defer func() {
		// A panic here must not take down the app; the index just goes stale
		recover()
	}()

	for {
		select {
		case <-aw.ctx.Done():
			return

		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if !isConversationFile(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				aw.mu.Lock()
				aw.pending[event.Name] = time.Now()
				aw.mu.Unlock()
			}

			// Atomic saves rename a temp file over the target, so a
			// rename of the target itself means it is gone
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				aw.mu.Lock()
				delete(aw.pending, event.Name)
				aw.mu.Unlock()
				aw.idx.Remove(conversationIDFromPath(event.Name))
			}

		case _, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; Rebuild recovers anything missed
		}
	}
}

// processPending reindexes debounced file changes.
func (aw *ArchiveWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-aw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			aw.mu.Lock()
			var toProcess []string
			for path, changeTime := range aw.pending {
				if now.Sub(changeTime) >= aw.debounce {
					toProcess = append(toProcess, path)
					delete(aw.pending, path)
				}
			}
			aw.mu.Unlock()

			for _, path := range toProcess {
				// A file may be gone again by now; Remove cleans that up
				if err := aw.idx.AddFile(path); err != nil {
					aw.idx.Remove(conversationIDFromPath(path))
				}
			}
		}
	}
}

// isConversationFile reports whether a path looks like an archived
// conversation (conv_<nanos>.json). Temp files from atomic writes and
// the SQLite database never match.
func isConversationFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, "conv_") && strings.HasSuffix(name, ".json")
}

// conversationIDFromPath extracts the conversation ID from a file path.
func conversationIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}
