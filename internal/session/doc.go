// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks TUI session activity for autosave and idle warnings.
//
// The manager keeps the last-activity timestamp, a dirty flag for the
// active transcript, and fires callbacks from a periodic tick: autosave
// when the transcript has unsaved changes, a warning when the session has
// been idle for a while.
//
// # Key Types
//
//   - Manager: activity tracker with autosave and idle callbacks
//   - TickMsg / AutoSaveMsg / IdleWarningMsg: Bubble Tea messages
//
// # Usage
//
// Create a manager and wire it into the update loop:
//
//	mgr := session.NewManager(session.DefaultConfig())
//	mgr.SetAutoSaveCallback(saveTranscript)
//
//	// in Init: session.TickCmd()
//	// on TickMsg: cmds = append(cmds, mgr.HandleTick())
//
// Record activity on every keystroke or submit:
//
//	mgr.RecordActivity()
package session
