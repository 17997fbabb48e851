// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server hosts the gemrun browser chat surface on loopback.
//
// The server binds 127.0.0.1 only and renders a single chat page over the
// same transcript store the TUI uses: a sidebar of saved conversations,
// the active transcript formatted by the markdown subset renderer,
// suggestion chips, a simple-mode toggle, and an input form driving the
// JSON API.
//
// # Endpoints
//
//   - GET    /                        - The chat page
//   - POST   /api/chat                - Submit a message, get the transcript
//   - GET    /api/conversations       - List saved conversations
//   - DELETE /api/conversations/{id}  - Delete a conversation
//   - GET    /api/suggestions         - Built-in prompt decks
//   - GET    /api/search?q=           - Full-text search over the archive
//   - GET    /health                  - Health check
//
// Every request passes through recovery, security headers, pipe-delimited
// request logging, and per-IP token-bucket rate limiting.
//
// # Usage
//
//	srv := server.New(cfg, store, idx)
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package server
