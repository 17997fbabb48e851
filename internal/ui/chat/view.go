// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/ui/components"
	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View composes the full chat screen: header, transcript or welcome splash,
// spinner line, input box, and status bar, with any open overlay on top.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Starting gemrun..."
	}

	var b strings.Builder

	b.WriteString(m.header.View())
	b.WriteString("\n")

	if m.showingWelcome() {
		b.WriteString(m.renderWelcomeRegion())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	if m.thinking {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	if m.completionState.Visible {
		b.WriteString("\n")
		b.WriteString(m.completionPopup.View())
	}
	b.WriteString("\n")

	b.WriteString(m.statusBar.View())

	base := b.String()

	if overlay := m.renderOverlay(); overlay != "" {
		return overlay
	}

	if m.toasts.HasToasts() {
		return base + "\n" + components.RenderToastStack(m.toasts.GetToasts(), m.width, m.height)
	}

	return base
}

// renderWelcomeRegion sizes the splash screen to the transcript region so
// the input and status bar stay in place.
func (m Model) renderWelcomeRegion() string {
	height := m.height - 10
	if height < 5 {
		height = 5
	}
	w := m.welcome
	w.SetSize(m.width, height)
	return w.View()
}

// renderOverlay renders whichever modal overlay is open, or "" if none.
func (m Model) renderOverlay() string {
	switch {
	case m.palette.IsVisible():
		return m.centerOverlay(m.palette.View())
	case m.sidebar.IsVisible():
		return m.centerOverlay(m.sidebar.View())
	case m.suggestions.IsVisible():
		return m.centerOverlay(m.suggestions.View())
	case m.searchVisible:
		return m.centerOverlay(m.renderSearchResults())
	case m.showHelp:
		return m.centerOverlay(m.renderHelp())
	}
	return ""
}

// centerOverlay places overlay content in the middle of the screen.
func (m Model) centerOverlay(content string) string {
	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

// =============================================================================
// SEARCH RESULTS OVERLAY
// =============================================================================

// renderSearchResults renders the full-text search results list.
func (m Model) renderSearchResults() string {
	width := m.width * 2 / 3
	if width < 40 {
		width = 40
	}
	if width > m.width-4 {
		width = m.width - 4
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	title := titleStyle.Render("Search: " + m.searchQuery +
		" (" + strconv.Itoa(len(m.searchMatches)) + " matches)")

	var rows []string
	rows = append(rows, title, "")

	maxRows := m.height - 10
	if maxRows < 3 {
		maxRows = 3
	}

	for i, match := range m.searchMatches {
		if i >= maxRows {
			remaining := len(m.searchMatches) - maxRows
			rows = append(rows, lipgloss.NewStyle().
				Foreground(styles.TextMuted).
				Render("... "+strconv.Itoa(remaining)+" more"))
			break
		}
		rows = append(rows, m.renderSearchRow(match, i == m.searchSelected, width-6))
	}

	helpStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	rows = append(rows, "", helpStyle.Render("Enter open | Up/Down move | Esc close"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Background(styles.Surface).
		Padding(1, 2).
		Width(width).
		Render(content)
}

// renderSearchRow renders one search match with title, date, and snippet.
func (m Model) renderSearchRow(match index.Match, selected bool, width int) string {
	marker := "  "
	titleStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	if selected {
		marker = "> "
		titleStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Background(styles.SelectionBg).
			Bold(true)
	}

	metaStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	snippetStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true)

	title := match.Title
	if title == "" {
		title = match.ConversationID
	}

	head := marker + titleStyle.Render(truncateLine(title, width-14)) +
		metaStyle.Render("  "+match.Date)

	snippet := strings.ReplaceAll(match.Snippet, "\n", " ")
	body := "    " + snippetStyle.Render(truncateLine(snippet, width-4))

	return head + "\n" + body
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelp renders the keyboard shortcut help overlay.
func (m Model) renderHelp() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	rows := []string{titleStyle.Render("Keyboard Shortcuts"), ""}
	for _, item := range GetHelpItems() {
		rows = append(rows, keyStyle.Render(item.Key)+descStyle.Render(item.Desc))
	}

	helpStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	rows = append(rows, "", helpStyle.Render("Type /help <command> for command details | Esc close"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Background(styles.Surface).
		Padding(1, 2).
		Render(content)
}

// truncateLine shortens s to maxLen runes with an ellipsis.
func truncateLine(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
