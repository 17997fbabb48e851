// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search over archived conversations.
//
// The index is a SQLite database (pure Go driver) with one row per
// conversation and an FTS5 table over message bodies. It is derived
// state: the JSON archive stays the source of truth and the index can
// always be recreated from it with Rebuild.
//
// A directory watcher keeps the index fresh while the TUI or the HTTP
// server runs: changes to conversation files are debounced and
// reindexed in the background, deletions drop the rows.
//
// # Usage
//
// Open and populate the index:
//
//	idx, err := index.Open(index.DefaultConfig(conversationsDir))
//	err = idx.Rebuild(ctx)
//	defer idx.Close()
//
// Search it:
//
//	matches, err := idx.Search("recursion", 20)
//	for _, m := range matches {
//	    fmt.Printf("%s  %s\n", m.Title, m.Snippet)
//	}
//
// Keep it fresh while the app runs:
//
//	watcher, err := index.NewArchiveWatcher(idx, 500*time.Millisecond)
//	err = watcher.Watch()
//	defer watcher.Close()
package index
