// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemrun-tui/internal/commands"
	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// COMMAND PALETTE
// =============================================================================

// CommandPalette is an overlay for fuzzy-searching and executing slash
// commands. Opened with Ctrl+P.
type CommandPalette struct {
	input    textinput.Model
	registry *commands.Registry

	filtered []scoredCommand
	selected int

	width  int
	height int

	visible bool
	theme   *styles.Theme

	maxItems int

	// Most recent first, capped at maxRecent
	recentCommands []string
	maxRecent      int
}

// scoredCommand holds a command with its fuzzy match score.
type scoredCommand struct {
	command *commands.Command
	score   int
}

// NewCommandPalette creates a new command palette.
func NewCommandPalette(registry *commands.Registry, theme *styles.Theme) *CommandPalette {
	ti := textinput.New()
	ti.Placeholder = "Type a command..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	cp := &CommandPalette{
		input:          ti,
		registry:       registry,
		theme:          theme,
		maxItems:       10,
		recentCommands: make([]string, 0, 10),
		maxRecent:      10,
	}

	cp.updateFiltered()

	return cp
}

// Init initializes the command palette.
func (cp *CommandPalette) Init() tea.Cmd {
	return nil
}

// Update handles messages for the command palette.
func (cp *CommandPalette) Update(msg tea.Msg) (*CommandPalette, tea.Cmd) {
	if !cp.visible {
		return cp, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			cp.Hide()
			return cp, nil

		case "enter":
			if cp.selected >= 0 && cp.selected < len(cp.filtered) {
				selectedCmd := cp.filtered[cp.selected].command
				cp.recordRecentCommand(selectedCmd.Name)
				cp.Hide()
				return cp, func() tea.Msg {
					return ExecuteCommandMsg{Command: selectedCmd}
				}
			}
			return cp, nil

		case "up", "shift+tab":
			if len(cp.filtered) == 0 {
				return cp, nil
			}
			cp.selected--
			if cp.selected < 0 {
				cp.selected = len(cp.filtered) - 1
			}
			return cp, nil

		case "down", "tab", "ctrl+n":
			if len(cp.filtered) == 0 {
				return cp, nil
			}
			cp.selected++
			if cp.selected >= len(cp.filtered) {
				cp.selected = 0
			}
			return cp, nil
		}
	}

	previousValue := cp.input.Value()
	cp.input, cmd = cp.input.Update(msg)

	if cp.input.Value() != previousValue {
		cp.updateFiltered()
		cp.selected = 0
	}

	return cp, cmd
}

// View renders the command palette.
func (cp *CommandPalette) View() string {
	if !cp.visible {
		return ""
	}

	boxWidth := 60
	if cp.width > 0 && cp.width < boxWidth+10 {
		boxWidth = cp.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Padding(0, 1)
	header := headerStyle.Render("Commands")

	sepStyle := lipgloss.NewStyle().
		Foreground(styles.Overlay)
	separator := sepStyle.Render(strings.Repeat("-", boxWidth-4))

	cp.input.Width = boxWidth - 6
	inputView := cp.input.View()

	var listItems []string
	for i, sc := range cp.filtered {
		if i >= cp.maxItems {
			remaining := len(cp.filtered) - cp.maxItems
			if remaining > 0 {
				moreStyle := lipgloss.NewStyle().
					Foreground(styles.TextMuted).
					Italic(true)
				listItems = append(listItems, moreStyle.Render("  ... "+strconv.Itoa(remaining)+" more"))
			}
			break
		}

		listItems = append(listItems, cp.renderItem(sc.command, i == cp.selected, boxWidth-6))
	}

	list := strings.Join(listItems, "\n")

	if len(cp.filtered) == 0 {
		noMatchStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Padding(1, 0)
		list = noMatchStyle.Render("No matching commands")
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Padding(1, 0, 0, 0)
	help := helpStyle.Render("Up/Down navigate | Enter run | Esc close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		separator,
		inputView,
		separator,
		list,
		help,
	)

	boxStyle := lipgloss.NewStyle().
		Background(styles.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 2).
		Width(boxWidth)

	box := boxStyle.Render(content)

	if cp.width > 0 && cp.height > 0 {
		return lipgloss.Place(
			cp.width, cp.height,
			lipgloss.Center, lipgloss.Center,
			box,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(lipgloss.Color("#000000")),
		)
	}

	return box
}

// renderItem renders a single command row. Selection uses a "> " marker in
// addition to the highlight so it reads without color.
func (cp *CommandPalette) renderItem(cmd *commands.Command, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	cmdStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	recentMark := ""
	if cp.isRecentCommand(cmd.Name) {
		recentMark = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(" *")
	}

	name := cmdStyle.Render(cmd.Name)

	usedWidth := lipgloss.Width(indicator) + lipgloss.Width(name) + lipgloss.Width(recentMark) + 2
	descWidth := width - usedWidth
	if descWidth < 10 {
		descWidth = 10
	}

	desc := descStyle.Render(truncateString(cmd.Description, descWidth))

	item := indicator + name + recentMark + "  " + desc

	if selected {
		selectedStyle := lipgloss.NewStyle().
			Background(styles.Purple).
			Foreground(styles.TextInverse).
			Width(width).
			Padding(0, 1)
		return selectedStyle.Render(item)
	}

	return item
}

// updateFiltered rebuilds the filtered list from the current input value.
func (cp *CommandPalette) updateFiltered() {
	if cp.registry == nil {
		cp.filtered = nil
		return
	}

	filter := strings.TrimSpace(cp.input.Value())
	filter = strings.TrimPrefix(filter, "/")

	if filter == "" {
		cp.filtered = cp.allCommandsRecentFirst()
		return
	}

	var scored []scoredCommand
	for _, cmd := range cp.registry.All() {
		if cmd.Hidden {
			continue
		}

		best, matched := bestCommandMatch(filter, cmd)
		if !matched {
			continue
		}

		// Recently run commands float to the top
		if cp.isRecentCommand(cmd.Name) {
			best += 100
		}

		scored = append(scored, scoredCommand{command: cmd, score: best})
	}

	sortScoredCommands(scored)
	cp.filtered = scored
}

// bestCommandMatch fuzzy-matches the filter against a command's name,
// aliases, and description. Description matches score half.
func bestCommandMatch(filter string, cmd *commands.Command) (int, bool) {
	best := 0
	matched := false

	if score, ok := FuzzyMatch(filter, strings.TrimPrefix(cmd.Name, "/")); ok {
		best = score
		matched = true
	}

	for _, alias := range cmd.Aliases {
		if score, ok := FuzzyMatch(filter, strings.TrimPrefix(alias, "/")); ok && score > best {
			best = score
			matched = true
		}
	}

	if score, ok := FuzzyMatch(filter, cmd.Description); ok && score/2 > best {
		best = score / 2
		matched = true
	}

	return best, matched
}

func sortScoredCommands(scored []scoredCommand) {
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
}

// allCommandsRecentFirst returns all non-hidden commands with recently run
// ones ordered first.
func (cp *CommandPalette) allCommandsRecentFirst() []scoredCommand {
	if cp.registry == nil {
		return nil
	}

	var scored []scoredCommand
	for _, cmd := range cp.registry.All() {
		if cmd.Hidden {
			continue
		}
		score := 0
		if idx := cp.recentIndex(cmd.Name); idx >= 0 {
			score = 1000 - idx
		}
		scored = append(scored, scoredCommand{command: cmd, score: score})
	}

	sortScoredCommands(scored)
	return scored
}

func (cp *CommandPalette) isRecentCommand(cmdName string) bool {
	return cp.recentIndex(cmdName) >= 0
}

func (cp *CommandPalette) recentIndex(cmdName string) int {
	for i, recent := range cp.recentCommands {
		if recent == cmdName {
			return i
		}
	}
	return -1
}

func (cp *CommandPalette) recordRecentCommand(cmdName string) {
	for i, recent := range cp.recentCommands {
		if recent == cmdName {
			cp.recentCommands = append(cp.recentCommands[:i], cp.recentCommands[i+1:]...)
			break
		}
	}

	cp.recentCommands = append([]string{cmdName}, cp.recentCommands...)

	if len(cp.recentCommands) > cp.maxRecent {
		cp.recentCommands = cp.recentCommands[:cp.maxRecent]
	}
}

// Show shows the command palette and resets the filter.
func (cp *CommandPalette) Show() {
	cp.visible = true
	cp.input.Reset()
	cp.input.Focus()
	cp.updateFiltered()
	cp.selected = 0
}

// Hide hides the command palette.
func (cp *CommandPalette) Hide() {
	cp.visible = false
	cp.input.Blur()
}

// Toggle toggles the visibility of the command palette.
func (cp *CommandPalette) Toggle() {
	if cp.visible {
		cp.Hide()
	} else {
		cp.Show()
	}
}

// IsVisible returns true if the command palette is visible.
func (cp *CommandPalette) IsVisible() bool {
	return cp.visible
}

// SetSize sets the dimensions for centering the palette.
func (cp *CommandPalette) SetSize(width, height int) {
	cp.width = width
	cp.height = height
}

// Focus focuses the input field.
func (cp *CommandPalette) Focus() tea.Cmd {
	return cp.input.Focus()
}

// =============================================================================
// MESSAGES
// =============================================================================

// ExecuteCommandMsg is sent when a command is selected from the palette.
type ExecuteCommandMsg struct {
	Command *commands.Command
	Args    []string
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
