// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// CONVERSATION SIDEBAR
// =============================================================================

// Sidebar lists saved conversations for switching and deleting.
// Opened with Ctrl+O.
type Sidebar struct {
	conversations []model.ConversationMeta
	activeID      string
	selected      int
	offset        int

	width  int
	height int

	visible bool
	theme   *styles.Theme
}

// SidebarSelectMsg is sent when a conversation is chosen.
type SidebarSelectMsg struct {
	ID string
}

// SidebarDeleteMsg is sent when a conversation is marked for deletion.
type SidebarDeleteMsg struct {
	ID string
}

// NewSidebar creates a new conversation sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme}
}

// SetConversations replaces the listed conversations. The selection is
// clamped so it stays valid after deletions.
func (s *Sidebar) SetConversations(conversations []model.ConversationMeta, activeID string) {
	s.conversations = conversations
	s.activeID = activeID
	if s.selected >= len(conversations) {
		s.selected = len(conversations) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// Show opens the sidebar with the selection on the active conversation.
func (s *Sidebar) Show() {
	s.visible = true
	s.selected = 0
	for i, conv := range s.conversations {
		if conv.ID == s.activeID {
			s.selected = i
			break
		}
	}
	s.ensureVisible()
}

// Hide closes the sidebar.
func (s *Sidebar) Hide() {
	s.visible = false
}

// IsVisible returns true if the sidebar is open.
func (s *Sidebar) IsVisible() bool {
	return s.visible
}

// SetSize sets the component dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// visibleRows returns how many conversation rows fit in the panel.
func (s *Sidebar) visibleRows() int {
	// Border, title, separator, and help line
	rows := s.height - 6
	if rows < 3 {
		rows = 3
	}
	return rows
}

// ensureVisible scrolls the list so the selection stays on screen.
func (s *Sidebar) ensureVisible() {
	rows := s.visibleRows()
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// Update handles key messages while the sidebar is open.
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	if !s.visible {
		return s, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch keyMsg.String() {
	case "esc", "q", "ctrl+o":
		s.Hide()

	case "up", "k":
		if len(s.conversations) > 0 {
			s.selected--
			if s.selected < 0 {
				s.selected = len(s.conversations) - 1
			}
			s.ensureVisible()
		}

	case "down", "j":
		if len(s.conversations) > 0 {
			s.selected++
			if s.selected >= len(s.conversations) {
				s.selected = 0
			}
			s.ensureVisible()
		}

	case "enter":
		if s.selected >= 0 && s.selected < len(s.conversations) {
			id := s.conversations[s.selected].ID
			s.Hide()
			return s, func() tea.Msg {
				return SidebarSelectMsg{ID: id}
			}
		}

	case "d", "delete":
		if s.selected >= 0 && s.selected < len(s.conversations) {
			id := s.conversations[s.selected].ID
			return s, func() tea.Msg {
				return SidebarDeleteMsg{ID: id}
			}
		}
	}

	return s, nil
}

// View renders the sidebar panel.
func (s *Sidebar) View() string {
	if !s.visible {
		return ""
	}

	panelWidth := 36
	if s.width > 0 && s.width/2 < panelWidth {
		panelWidth = s.width / 2
	}
	if panelWidth < 24 {
		panelWidth = 24
	}
	innerWidth := panelWidth - 4

	title := s.theme.SidebarTitle.Render("Conversations (" + strconv.Itoa(len(s.conversations)) + ")")

	sepStyle := lipgloss.NewStyle().Foreground(styles.Overlay)
	separator := sepStyle.Render(strings.Repeat("-", innerWidth))

	var rows []string
	if len(s.conversations) == 0 {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("No saved conversations"))
	}

	visible := s.visibleRows()
	end := s.offset + visible
	if end > len(s.conversations) {
		end = len(s.conversations)
	}

	for i := s.offset; i < end; i++ {
		rows = append(rows, s.renderEntry(s.conversations[i], i == s.selected, innerWidth))
	}

	if end < len(s.conversations) {
		more := len(s.conversations) - end
		rows = append(rows, lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("  ... "+strconv.Itoa(more)+" more"))
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Padding(1, 0, 0, 0)
	help := helpStyle.Render("Enter open | d delete | Esc close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		strings.Join(rows, "\n"),
		help,
	)

	panel := s.theme.Sidebar.
		Width(panelWidth).
		Render(content)

	if s.width > 0 && s.height > 0 {
		return lipgloss.Place(
			s.width, s.height,
			lipgloss.Left, lipgloss.Top,
			panel,
		)
	}

	return panel
}

// renderEntry renders one conversation row: marker, title, then a muted
// meta line with the date and message count.
func (s *Sidebar) renderEntry(conv model.ConversationMeta, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	activeMark := ""
	if conv.ID == s.activeID {
		activeMark = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(" *")
	}

	title := conv.Title
	if title == "" {
		title = "(untitled)"
	}
	titleWidth := width - lipgloss.Width(indicator) - lipgloss.Width(activeMark)
	if titleWidth < 8 {
		titleWidth = 8
	}
	title = truncateString(title, titleWidth)

	meta := conv.Date
	if conv.MessageCount > 0 {
		meta += " | " + strconv.Itoa(conv.MessageCount) + " msgs"
	}

	line := indicator + title + activeMark
	metaLine := "  " + s.theme.SessionMeta.Render(truncateString(meta, width-2))

	if selected {
		return s.theme.SessionItemSelected.Width(width).Render(line) + "\n" + metaLine
	}
	return s.theme.SessionItem.Render(line) + "\n" + metaLine
}
