// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemrun-tui/internal/suggest"
	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// SUGGESTION PICKER
// =============================================================================

// SuggestionPicker is an overlay listing starter questions grouped by
// category. Left/Right switches category, Up/Down moves within the deck,
// and Enter places the selected question into the chat input.
type SuggestionPicker struct {
	categories []string
	category   int
	selected   int

	width  int
	height int

	visible bool
	theme   *styles.Theme
}

// SuggestionChosenMsg is sent when a suggestion is accepted.
type SuggestionChosenMsg struct {
	Prompt string
}

// NewSuggestionPicker creates a new suggestion picker.
func NewSuggestionPicker(theme *styles.Theme) *SuggestionPicker {
	return &SuggestionPicker{
		categories: suggest.Names(),
		theme:      theme,
	}
}

// Show opens the picker, optionally jumping to a named category.
func (sp *SuggestionPicker) Show(category string) {
	sp.visible = true
	sp.selected = 0
	if category == "" {
		return
	}
	for i, name := range sp.categories {
		if strings.EqualFold(name, category) {
			sp.category = i
			return
		}
	}
}

// Hide closes the picker.
func (sp *SuggestionPicker) Hide() {
	sp.visible = false
}

// IsVisible returns true if the picker is open.
func (sp *SuggestionPicker) IsVisible() bool {
	return sp.visible
}

// SetSize sets the dimensions used to center the picker.
func (sp *SuggestionPicker) SetSize(width, height int) {
	sp.width = width
	sp.height = height
}

// prompts returns the questions for the active category.
func (sp *SuggestionPicker) prompts() []string {
	if sp.category < 0 || sp.category >= len(sp.categories) {
		return nil
	}
	deck, ok := suggest.Lookup(sp.categories[sp.category])
	if !ok {
		return nil
	}
	return deck.Prompts
}

// Update handles key messages while the picker is open.
func (sp *SuggestionPicker) Update(msg tea.Msg) (*SuggestionPicker, tea.Cmd) {
	if !sp.visible {
		return sp, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return sp, nil
	}

	prompts := sp.prompts()

	switch keyMsg.String() {
	case "esc", "q":
		sp.Hide()

	case "left", "h":
		if len(sp.categories) > 0 {
			sp.category--
			if sp.category < 0 {
				sp.category = len(sp.categories) - 1
			}
			sp.selected = 0
		}

	case "right", "l", "tab":
		if len(sp.categories) > 0 {
			sp.category++
			if sp.category >= len(sp.categories) {
				sp.category = 0
			}
			sp.selected = 0
		}

	case "up", "k":
		if len(prompts) > 0 {
			sp.selected--
			if sp.selected < 0 {
				sp.selected = len(prompts) - 1
			}
		}

	case "down", "j":
		if len(prompts) > 0 {
			sp.selected++
			if sp.selected >= len(prompts) {
				sp.selected = 0
			}
		}

	case "enter":
		if sp.selected >= 0 && sp.selected < len(prompts) {
			prompt := prompts[sp.selected]
			sp.Hide()
			return sp, func() tea.Msg {
				return SuggestionChosenMsg{Prompt: prompt}
			}
		}
	}

	return sp, nil
}

// View renders the suggestion picker.
func (sp *SuggestionPicker) View() string {
	if !sp.visible {
		return ""
	}

	boxWidth := 64
	if sp.width > 0 && sp.width < boxWidth+8 {
		boxWidth = sp.width - 8
	}
	if boxWidth < 44 {
		boxWidth = 44
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Padding(0, 1)
	header := headerStyle.Render("Things to ask")

	// Category tabs
	var tabs []string
	for i, name := range sp.categories {
		if i == sp.category {
			tabs = append(tabs, lipgloss.NewStyle().
				Foreground(styles.TextInverse).
				Background(styles.Purple).
				Bold(true).
				Padding(0, 1).
				Render(name))
		} else {
			tabs = append(tabs, lipgloss.NewStyle().
				Foreground(styles.TextMuted).
				Padding(0, 1).
				Render(name))
		}
	}
	tabRow := strings.Join(tabs, " ")

	sepStyle := lipgloss.NewStyle().Foreground(styles.Overlay)
	separator := sepStyle.Render(strings.Repeat("-", boxWidth-4))

	var rows []string
	for i, prompt := range sp.prompts() {
		indicator := "  "
		if i == sp.selected {
			indicator = "> "
		}

		line := indicator + truncateString(prompt, boxWidth-8)
		if i == sp.selected {
			rows = append(rows, lipgloss.NewStyle().
				Background(styles.SelectionBg).
				Foreground(styles.TextPrimary).
				Width(boxWidth-6).
				Render(line))
		} else {
			rows = append(rows, lipgloss.NewStyle().
				Foreground(styles.TextSecondary).
				Render(line))
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Padding(1, 0, 0, 0)
	help := helpStyle.Render("Left/Right category | Up/Down select | Enter ask | Esc close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		tabRow,
		separator,
		strings.Join(rows, "\n"),
		help,
	)

	boxStyle := lipgloss.NewStyle().
		Background(styles.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 2).
		Width(boxWidth)

	box := boxStyle.Render(content)

	if sp.width > 0 && sp.height > 0 {
		return lipgloss.Place(
			sp.width, sp.height,
			lipgloss.Center, lipgloss.Center,
			box,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(lipgloss.Color("#000000")),
		)
	}

	return box
}
