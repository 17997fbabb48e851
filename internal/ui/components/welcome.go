// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the gemrun TUI.
package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the splash screen shown before the first message is sent.
type Welcome struct {
	version    string
	modelName  string
	simpleMode bool

	width  int
	height int

	theme *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version:   "dev",
		modelName: "gemini-2.0-flash",
		theme:     theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetModelName sets the model name.
func (w *Welcome) SetModelName(name string) {
	w.modelName = name
}

// SetSimpleMode sets the answer-mode display.
func (w *Welcome) SetSimpleMode(simple bool) {
	w.simpleMode = simple
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// View renders the welcome screen centered in the terminal.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	boxWidth := 62
	if width < 70 {
		boxWidth = width - 8
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	content := w.renderLogo()
	content += "\n\n" + w.renderVersion()
	content += "\n\n" + w.renderSystemInfo()
	content += "\n\n" + w.renderQuickStart()

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 4).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// renderLogo renders the ASCII art logo.
func (w Welcome) renderLogo() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	if w.width >= 60 {
		logo := `   ____ _____ __  __ ____  _   _ _   _
  / ___| ____|  \/  |  _ \| | | | \ | |
 | |  _|  _| | |\/| | |_) | | | |  \| |
 | |_| | |___| |  | |  _ <| |_| | |\  |
  \____|_____|_|  |_|_| \_\\___/|_| \_|
                                       `
		return logoStyle.Render(logo)
	}

	return logoStyle.Render("gemrun - Gemini Chat")
}

// renderVersion renders the version subtitle.
func (w Welcome) renderVersion() string {
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Gemini Chat v" + w.version)
}

// renderSystemInfo renders model and answer-mode info.
func (w Welcome) renderSystemInfo() string {
	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(8)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	lines := []string{
		labelStyle.Render("Model: ") + valueStyle.Render(w.modelName),
		labelStyle.Render("Mode:  ") + w.renderModeIndicator(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderModeIndicator renders the answer mode with its color.
func (w Welcome) renderModeIndicator() string {
	if w.simpleMode {
		return lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true).
			Render("simple")
	}
	return lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true).
		Render("technical")
}

// renderQuickStart renders the quick start tips.
func (w Welcome) renderQuickStart() string {
	bulletStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	tipStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	tips := []string{
		bulletStyle.Render("-") + tipStyle.Render(" Type a question and press Enter"),
		bulletStyle.Render("-") + tipStyle.Render(" Use /help to see all commands"),
		bulletStyle.Render("-") + tipStyle.Render(" Ctrl+T toggles simple/technical answers"),
		bulletStyle.Render("-") + tipStyle.Render(" Ctrl+Y copies the last reply"),
	}

	return lipgloss.JoinVertical(lipgloss.Left, tips...)
}

// =============================================================================
// KEYBOARD SHORTCUT HELP
// =============================================================================

// KeyboardShortcuts returns a formatted list of keyboard shortcuts.
func KeyboardShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send message"},
		{"Ctrl+N", "New conversation"},
		{"Ctrl+O", "Open conversation list"},
		{"Ctrl+T", "Toggle simple/technical"},
		{"Ctrl+Y", "Copy last reply"},
		{"Alt+1..9", "Copy Nth code block"},
		{"Ctrl+P", "Suggestion palette"},
		{"Ctrl+F", "Search conversations"},
		{"Up/Down", "Scroll messages"},
		{"Ctrl+C", "Cancel/Quit"},
	}

	lines := make([]string, len(shortcuts))
	for i, s := range shortcuts {
		lines[i] = keyStyle.Render(s.key) + descStyle.Render(s.desc)
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	return titleStyle.Render("Keyboard Shortcuts") + "\n" +
		lipgloss.JoinVertical(lipgloss.Left, lines...)
}
