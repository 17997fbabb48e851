// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides conversation export functionality for gemrun.
//
// This package supports exporting conversations to various formats with
// styling and metadata.
//
// # Key Types
//
//   - Exporter: interface implemented by every format
//   - Options: export configuration options
//
// # Supported Formats
//
//   - Markdown: human-readable with formatting
//   - JSON: machine-readable with full metadata
//   - HTML: standalone page styled for browsers, with working copy buttons
//   - Text: plain transcript
//
// # Usage
//
// Export a conversation to a file:
//
//	exporter, err := export.ForFormat("md")
//	path, err := export.ExportToFile(conv, exporter, nil)
//
// Or get the raw bytes:
//
//	content, err := exporter.Export(conv)
package export
