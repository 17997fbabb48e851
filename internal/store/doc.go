// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns conversation state and persistence for gemrun.
//
// The TranscriptStore holds the in-memory conversation list, tracks which
// conversation is active, and enforces the single-flight completion rule:
// one pending exchange at a time, everywhere. All three frontends (TUI, CLI
// chat, HTTP server) drive the same store so their behavior cannot drift.
//
// The Archive persists conversations as one JSON file each and restores
// them at startup.
//
// # Key Types
//
//   - TranscriptStore: conversation list, active selection, pending turn
//   - Archive: JSON-per-conversation persistence with a stored-count cap
//   - Completer: the seam through which replies are produced
//
// # Usage
//
// Wire a store and run an exchange:
//
//	archive, err := store.NewArchive()
//	ts := store.NewTranscriptStore(completer, archive)
//	msg, err := ts.SubmitMessage("What is recursion?")
//	reply, err := ts.CompleteTurn(ctx)
//
// The two-phase shape exists for the TUI: SubmitMessage returns immediately
// so the user's message renders at once, and CompleteTurn runs inside a
// command while the spinner shows. Send combines both for one-shot callers.
//
// # Storage Location
//
// Conversations are stored in ~/.gemrun/conversations/ as JSON files.
package store
