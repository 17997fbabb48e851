// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// This package handles parsing and executing slash commands in the chat
// interface, providing autocomplete and command registration.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Parser: Turns raw input into a ParseResult
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /help: Show available commands
//   - /new, /load, /sessions, /delete: Conversation management
//   - /mode, /simple, /technical: Answer mode switching
//   - /copy, /export: Getting answers out of the TUI
//   - /search: Full-text search over saved conversations
//   - /suggest: Starter question suggestions
//   - /model, /models: Gemini model selection
//
// # Usage
//
// Parse and execute a command:
//
//	result := parser.Parse(input)
//	if result.IsCommand && result.Command != nil {
//	    return result.Command.Handler(ctx, result.Args)
//	}
//
// Get completions:
//
//	completions := completer.Complete("/mo", 3)
//	// Returns /mode, /model, /models
package commands
