// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders the markdown subset used in chat messages.
//
// The subset is deliberately small: fenced code blocks, inline code spans,
// double-asterisk bold, and single-level bullet lists. Everything else is
// plain text. Parsing is a single line-oriented pass (states: normal text,
// in fence) with a second inline pass per text segment (state: in inline
// code), not a regex cascade, so ordering ambiguities between passes cannot
// arise and fence contents are never touched by inline substitutions.
//
// The same parse feeds two renderers:
//
//   - Format produces an HTML fragment for the browser chat page. All text
//     is HTML-escaped. Code blocks carry a copy button whose data-copy
//     attribute holds the exact trimmed code text.
//   - FormatANSI produces styled terminal output with chroma syntax
//     highlighting for the TUI and CLI.
//
// Format is not idempotent: it emits HTML, not the input subset.
package markdown
