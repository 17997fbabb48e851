// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestNewSpinner(t *testing.T) {
	s := NewSpinner()

	if s.message != "Loading" {
		t.Errorf("NewSpinner() message = %q, want %q", s.message, "Loading")
	}

	if !s.showTimer {
		t.Error("NewSpinner() showTimer should be true")
	}

	if s.isActive {
		t.Error("NewSpinner() should not be active initially")
	}
}

func TestNewThinkingSpinner(t *testing.T) {
	s := NewThinkingSpinner()

	if s.message != "Thinking" {
		t.Errorf("NewThinkingSpinner() message = %q, want %q", s.message, "Thinking")
	}
}

func TestSpinnerStartStop(t *testing.T) {
	s := NewSpinner()

	cmd := s.Start()
	if cmd == nil {
		t.Error("Start() should return a tick command")
	}
	if !s.IsActive() {
		t.Error("spinner should be active after Start")
	}

	s.Stop()
	if s.IsActive() {
		t.Error("spinner should be inactive after Stop")
	}
}

func TestSpinnerViewInactive(t *testing.T) {
	s := NewSpinner()

	if out := s.View(); out != "" {
		t.Errorf("inactive spinner View() = %q, want empty", out)
	}
}

func TestSpinnerViewActive(t *testing.T) {
	s := NewThinkingSpinner()
	s.Start()

	out := s.View()
	if !strings.Contains(out, "Thinking") {
		t.Errorf("active spinner View() missing message: %q", out)
	}
}

func TestSpinnerElapsed(t *testing.T) {
	s := NewSpinner()

	if s.Elapsed() != 0 {
		t.Error("Elapsed() should be zero before Start")
	}

	s.Start()
	if s.Elapsed() < 0 {
		t.Error("Elapsed() should be non-negative after Start")
	}
}

// =============================================================================
// INLINE SPINNER TESTS
// =============================================================================

func TestInlineSpinner(t *testing.T) {
	s := NewInlineSpinner()

	if out := s.View(); out != "" {
		t.Errorf("inactive inline spinner View() = %q, want empty", out)
	}

	cmd := s.Start()
	if cmd == nil {
		t.Error("Start() should return a tick command")
	}
	if s.View() == "" {
		t.Error("active inline spinner should render a frame")
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0s"},
		{"seconds", 42 * time.Second, "42s"},
		{"minute boundary", 60 * time.Second, "1m 0s"},
		{"minutes and seconds", 95 * time.Second, "1m 35s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatElapsed(tt.d); got != tt.want {
				t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
