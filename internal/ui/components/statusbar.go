// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the gemrun TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusThinking
	StatusError
	StatusIdle
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusThinking:
		return "Thinking..."
	case StatusError:
		return "Error"
	case StatusIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status so state is readable
// without relying on color alone.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusThinking:
		return styles.StatusIndicators.Info
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusIdle:
		return "-"
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar showing model, answer mode, and
// transient feedback like the copied-to-clipboard flash.
type StatusBar struct {
	ModelName     string
	SimpleMode    bool
	MessageCount  int
	Status        Status
	Width         int
	ShowShortcuts bool
	FlashText     string
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetModel updates the model name display.
func (s *StatusBar) SetModel(name string) {
	s.ModelName = name
}

// SetSimpleMode updates the answer-mode indicator.
func (s *StatusBar) SetSimpleMode(simple bool) {
	s.SimpleMode = simple
}

// SetMessageCount updates the message counter.
func (s *StatusBar) SetMessageCount(n int) {
	s.MessageCount = n
}

// SetFlash sets a transient feedback message, e.g. "Copied!". Cleared by
// passing the empty string.
func (s *StatusBar) SetFlash(text string) {
	s.FlashText = text
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	parts = append(parts, s.renderModeBadge())

	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.Icon()))

	if s.FlashText != "" {
		parts = append(parts, s.theme.CopiedFlash.Render(s.FlashText))
	}

	result := strings.Join(parts, " ")

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewWide renders the full status bar.
func (s *StatusBar) viewWide() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	leftParts := []string{}

	if s.ModelName != "" {
		modelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		leftParts = append(leftParts, modelStyle.Render(s.ModelName))
	}

	leftParts = append(leftParts, s.renderModeBadge())

	if s.MessageCount > 0 {
		countStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		leftParts = append(leftParts, countStyle.Render(strconv.Itoa(s.MessageCount)+" msgs"))
	}

	statusStyle := s.getStatusStyle()
	leftParts = append(leftParts, statusStyle.Render(s.Status.Icon()+" "+s.Status.String()))

	if s.FlashText != "" {
		leftParts = append(leftParts, s.theme.CopiedFlash.Render(s.FlashText))
	}

	leftSection := strings.Join(leftParts, separator)

	rightSection := ""
	if s.ShowShortcuts {
		rightSection = s.renderShortcuts()
	}

	leftWidth := lipgloss.Width(leftSection)
	rightWidth := lipgloss.Width(rightSection)

	spacing := s.Width - leftWidth - rightWidth - 4
	if spacing < 1 {
		spacing = 1
	}

	result := leftSection + strings.Repeat(" ", spacing) + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderModeBadge renders the simple/technical answer-mode badge.
func (s *StatusBar) renderModeBadge() string {
	if s.SimpleMode {
		return s.theme.ModeSimple.Render("SIMPLE")
	}
	return s.theme.ModeTechnical.Render("TECHNICAL")
}

// renderShortcuts renders the keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	shortcuts := []string{
		keyStyle.Render("^T") + descStyle.Render("mode"),
		keyStyle.Render("^Y") + descStyle.Render("copy"),
		keyStyle.Render("^N") + descStyle.Render("new"),
		keyStyle.Render("^P") + descStyle.Render("cmds"),
	}

	return strings.Join(shortcuts, " ")
}

// getStatusStyle returns a high contrast style for the current status.
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
	case StatusThinking:
		return lipgloss.NewStyle().Foreground(styles.InfoHighContrast).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}
