// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the gemrun TUI.
package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// COLOR DEFINITION TESTS
// =============================================================================

func TestCoreColorsDefined(t *testing.T) {
	colors := []struct {
		name  string
		color lipgloss.AdaptiveColor
	}{
		{"Purple", Purple},
		{"Cyan", Cyan},
		{"Emerald", Emerald},
		{"Rose", Rose},
		{"Amber", Amber},
		{"Surface", Surface},
		{"TextPrimary", TextPrimary},
		{"TextMuted", TextMuted},
		{"UserBubbleFg", UserBubbleFg},
		{"AssistantBubbleFg", AssistantBubbleFg},
		{"FailedBubbleFg", FailedBubbleFg},
	}

	for _, c := range colors {
		if c.color.Light == "" || c.color.Dark == "" {
			t.Errorf("%s should define both light and dark variants", c.name)
		}
		if !strings.HasPrefix(c.color.Light, "#") {
			t.Errorf("%s light variant %q should be a hex value", c.name, c.color.Light)
		}
		if !strings.HasPrefix(c.color.Dark, "#") {
			t.Errorf("%s dark variant %q should be a hex value", c.name, c.color.Dark)
		}
	}
}

// =============================================================================
// STATUS RENDERING TESTS
// =============================================================================

func TestStatusIndicators(t *testing.T) {
	if StatusIndicators.Success == "" {
		t.Error("Success indicator should be defined")
	}
	if StatusIndicators.Error == "" {
		t.Error("Error indicator should be defined")
	}
	if StatusIndicators.Warning == "" {
		t.Error("Warning indicator should be defined")
	}
	if StatusIndicators.Info == "" {
		t.Error("Info indicator should be defined")
	}
}

func TestRenderStatusHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
	}{
		{"RenderSuccess", RenderSuccess},
		{"RenderError", RenderError},
		{"RenderWarning", RenderWarning},
		{"RenderInfo", RenderInfo},
	}

	for _, tt := range tests {
		out := tt.fn("message")
		if !strings.Contains(out, "message") {
			t.Errorf("%s should include the message text, got %q", tt.name, out)
		}
	}
}
