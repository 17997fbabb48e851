// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Submit        key.Binding
	Quit          key.Binding
	NewChat       key.Binding
	Conversations key.Binding
	ToggleMode    key.Binding
	CopyReply     key.Binding
	Palette       key.Binding
	Search        key.Binding
	Help          key.Binding
	Cancel        key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("Up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("Down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send question"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new conversation"),
		),
		Conversations: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "conversations"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "simple/technical"),
		),
		CopyReply: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy last reply"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "command palette"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "toggle help"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close overlay"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar hint.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleMode, k.CopyReply, k.Palette}
}

// FullHelp returns the bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Submit, k.CopyReply, k.ToggleMode},
		{k.NewChat, k.Conversations, k.Search},
		{k.Palette, k.Help, k.Quit},
	}
}

// =============================================================================
// HELP TEXT DATA
// =============================================================================

// HelpItem is a single row in the help overlay.
type HelpItem struct {
	Key  string
	Desc string
}

// GetHelpItems returns keyboard shortcut rows for the help overlay, in
// display order.
func GetHelpItems() []HelpItem {
	return []HelpItem{
		{"Enter", "Send the question"},
		{"Ctrl+Y", "Copy the last reply"},
		{"Alt+1..9", "Copy the Nth code block of the last reply"},
		{"Ctrl+T", "Toggle simple/technical answers"},
		{"Ctrl+N", "Start a new conversation"},
		{"Ctrl+O", "Open the conversation list"},
		{"Ctrl+F", "Search saved conversations"},
		{"Ctrl+P", "Open the command palette"},
		{"Ctrl+G", "Toggle this help"},
		{"Up/Down", "Scroll the transcript"},
		{"PgUp/PgDn", "Scroll by page"},
		{"Esc", "Close overlays"},
		{"Ctrl+C", "Quit"},
	}
}
