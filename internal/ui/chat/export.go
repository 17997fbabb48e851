// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/commands"
	"github.com/jeranaias/gemrun-tui/internal/export"
)

// =============================================================================
// CONVERSATION EXPORT
// =============================================================================

// exportCmd writes the active conversation to a file in the given format.
func (m *Model) exportCmd(format string) tea.Cmd {
	conv := m.store.Active()
	return func() tea.Msg {
		if conv == nil || conv.IsEmpty() {
			return commands.ExportCompleteMsg{
				Error: errors.New("nothing to export yet"),
			}
		}

		exporter, err := export.ForFormat(format)
		if err != nil {
			return commands.ExportCompleteMsg{Error: err}
		}

		path, err := export.ExportToFile(conv, exporter, export.DefaultOptions())
		if err != nil {
			return commands.ExportCompleteMsg{Error: err}
		}
		return commands.ExportCompleteMsg{Path: path}
	}
}
