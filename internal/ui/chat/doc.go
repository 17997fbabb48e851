// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat screen of the gemrun TUI.
//
// Model is the root Bubble Tea model. It wires the transcript store, the
// slash command registry, the session manager, and the optional search index
// to the visual components in internal/ui/components.
//
// The message flow for a turn is:
//
//  1. Enter submits the input. Slash commands run through the command
//     registry; plain text goes to TranscriptStore.SubmitMessage.
//  2. completeTurnCmd runs TranscriptStore.CompleteTurn off the UI
//     goroutine and delivers a replyMsg.
//  3. handleReply resyncs the viewport from the store, which holds either
//     the reply or a failed placeholder that can be retried.
//
// Overlays (command palette, conversation sidebar, suggestion picker,
// search results, help) are modal: while one is open it captures all
// keyboard input until dismissed with Esc.
package chat
