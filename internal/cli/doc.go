// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the gemrun command-line interface.
//
// The package parses arguments into a Command plus Args and dispatches to
// per-command handlers: ask (one-shot question), chat (liner REPL),
// sessions (archive management), export, auth, config, serve (loopback
// web chat), suggest, and version. Plain output goes through shared
// lipgloss styles that honor NO_COLOR and piped output.
package cli
