// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/gemrun-tui/internal/model"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter exports conversations as a plain text transcript.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a conversation to plain text.
func (e *TextExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	var sb strings.Builder

	sb.WriteString(conv.DisplayTitle())
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", len(conv.DisplayTitle())))
	sb.WriteString("\n")
	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("%s | %d messages | %s mode\n",
			conv.Date, len(conv.Messages), modeLabel(conv.SimpleMode)))
	}
	sb.WriteString("\n")

	for _, msg := range conv.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("[%s] %s:\n", formatShortTimestamp(msg.Timestamp), roleLabel(msg)))
		} else {
			sb.WriteString(fmt.Sprintf("%s:\n", roleLabel(msg)))
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
