// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/commands"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// FUZZY MATCHING TESTS
// =============================================================================

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		target  string
		matched bool
	}{
		{"empty query matches", "", "export", true},
		{"exact match", "copy", "copy", true},
		{"prefix", "exp", "export", true},
		{"non-consecutive", "hlp", "help", true},
		{"no match", "xyz", "save", false},
		{"query longer than target", "sessions", "new", false},
		{"case insensitive", "MODE", "mode", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, matched := FuzzyMatch(tt.query, tt.target)
			if matched != tt.matched {
				t.Errorf("FuzzyMatch(%q, %q) matched = %v, want %v",
					tt.query, tt.target, matched, tt.matched)
			}
		})
	}
}

func TestFuzzyMatchScoring(t *testing.T) {
	// Consecutive prefix beats scattered characters
	prefix, _ := FuzzyMatch("se", "sessions")
	scattered, _ := FuzzyMatch("se", "suggest")
	if prefix <= scattered {
		t.Errorf("prefix score %d should beat scattered score %d", prefix, scattered)
	}
}

func TestFuzzyFilter(t *testing.T) {
	targets := []string{"help", "export", "search", "sessions"}
	matches := FuzzyFilter("se", targets)

	if len(matches) == 0 {
		t.Fatal("expected matches for 'se'")
	}
	for _, m := range matches {
		if !strings.Contains(m.Target, "s") || !strings.Contains(m.Target, "e") {
			t.Errorf("unexpected match %q", m.Target)
		}
	}
}

// =============================================================================
// HEADER TESTS
// =============================================================================

func TestHeaderView(t *testing.T) {
	theme := styles.NewTheme()
	h := NewHeader(theme)
	h.SetWidth(80)
	h.SetModel("gemini-2.0-flash")

	out := h.View()
	if !strings.Contains(out, "gemrun") {
		t.Error("header missing brand title")
	}
	if !strings.Contains(out, "gemini-2.0-flash") {
		t.Error("header missing model name")
	}
	if !strings.Contains(out, "TECHNICAL") {
		t.Error("header should default to technical mode badge")
	}

	h.SetSimpleMode(true)
	if !strings.Contains(h.View(), "SIMPLE") {
		t.Error("header should show simple mode badge")
	}
}

func TestHeaderViewCompact(t *testing.T) {
	theme := styles.NewTheme()
	h := NewHeader(theme)
	h.SetModel("gemini-2.0-flash")

	out := h.ViewCompact()
	if !strings.Contains(out, "gemrun") {
		t.Error("compact header missing brand")
	}
	if strings.Contains(out, "\n") {
		t.Error("compact header should be a single line")
	}
}

// =============================================================================
// INPUT AREA TESTS
// =============================================================================

func TestInputAreaValue(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)

	in.SetValue("what is a goroutine")
	if got := in.Value(); got != "what is a goroutine" {
		t.Errorf("Value() = %q", got)
	}

	in.Reset()
	if in.Value() != "" {
		t.Error("Reset() should clear the value")
	}
}

func TestInputAreaFocus(t *testing.T) {
	theme := styles.NewTheme()
	in := NewInputArea(theme)

	if in.Focused() {
		t.Error("input should start blurred")
	}
	in.Focus()
	if !in.Focused() {
		t.Error("input should be focused after Focus")
	}
	in.Blur()
	if in.Focused() {
		t.Error("input should be blurred after Blur")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{42, "42"},
		{999, "999"},
		{1000, "1,000"},
		{4096, "4,096"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.n); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

// =============================================================================
// COMPLETION POPUP TESTS
// =============================================================================

func TestCompletionPopupNavigation(t *testing.T) {
	theme := styles.NewTheme()
	popup := NewCompletionPopup(theme)

	popup.SetCompletions([]commands.Completion{
		{Value: "/help", Description: "Show help"},
		{Value: "/copy", Description: "Copy reply"},
		{Value: "/new", Description: "New conversation"},
	})

	if !popup.HasCompletions() {
		t.Fatal("expected completions")
	}
	if popup.GetSelected() != 0 {
		t.Error("selection should start at 0")
	}

	popup.Next()
	if popup.GetSelected() != 1 {
		t.Error("Next should advance the selection")
	}

	popup.Prev()
	popup.Prev()
	if popup.GetSelected() != 2 {
		t.Error("Prev should wrap to the last item")
	}

	sel := popup.GetSelectedCompletion()
	if sel == nil || sel.Value != "/new" {
		t.Errorf("unexpected selection: %+v", sel)
	}

	popup.Clear()
	if popup.HasCompletions() {
		t.Error("Clear should remove completions")
	}
}

// =============================================================================
// SIDEBAR TESTS
// =============================================================================

func testConversations() []model.ConversationMeta {
	return []model.ConversationMeta{
		{ID: "conv_100", Title: "Goroutines explained", Date: "2026-08-25", MessageCount: 6},
		{ID: "conv_200", Title: "Why is the sky blue", Date: "2026-08-24", MessageCount: 2},
		{ID: "conv_300", Title: "Sourdough starter", Date: "2026-08-20", MessageCount: 4},
	}
}

func TestSidebarSelection(t *testing.T) {
	theme := styles.NewTheme()
	sb := NewSidebar(theme)
	sb.SetSize(100, 30)
	sb.SetConversations(testConversations(), "conv_200")

	sb.Show()
	if !sb.IsVisible() {
		t.Fatal("sidebar should be visible after Show")
	}
	if sb.selected != 1 {
		t.Errorf("Show should select the active conversation, got index %d", sb.selected)
	}

	// Enter emits a select message for the highlighted entry
	_, cmd := sb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from Enter")
	}
	msg, ok := cmd().(SidebarSelectMsg)
	if !ok {
		t.Fatalf("expected SidebarSelectMsg, got %T", cmd())
	}
	if msg.ID != "conv_200" {
		t.Errorf("selected ID = %q, want conv_200", msg.ID)
	}
	if sb.IsVisible() {
		t.Error("sidebar should close after selection")
	}
}

func TestSidebarDelete(t *testing.T) {
	theme := styles.NewTheme()
	sb := NewSidebar(theme)
	sb.SetSize(100, 30)
	sb.SetConversations(testConversations(), "conv_100")
	sb.Show()

	_, cmd := sb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if cmd == nil {
		t.Fatal("expected a command from d")
	}
	msg, ok := cmd().(SidebarDeleteMsg)
	if !ok {
		t.Fatalf("expected SidebarDeleteMsg, got %T", cmd())
	}
	if msg.ID != "conv_100" {
		t.Errorf("delete ID = %q, want conv_100", msg.ID)
	}
}

func TestSidebarViewListsTitles(t *testing.T) {
	theme := styles.NewTheme()
	sb := NewSidebar(theme)
	sb.SetSize(100, 30)
	sb.SetConversations(testConversations(), "")
	sb.Show()

	out := sb.View()
	if !strings.Contains(out, "Goroutines explained") {
		t.Error("sidebar missing conversation title")
	}
	if !strings.Contains(out, "Conversations (3)") {
		t.Error("sidebar missing count in title")
	}
}

// =============================================================================
// SUGGESTION PICKER TESTS
// =============================================================================

func TestSuggestionPickerChoose(t *testing.T) {
	theme := styles.NewTheme()
	sp := NewSuggestionPicker(theme)
	sp.SetSize(100, 30)

	sp.Show("Science")
	if !sp.IsVisible() {
		t.Fatal("picker should be visible after Show")
	}

	prompts := sp.prompts()
	if len(prompts) == 0 {
		t.Fatal("expected prompts for Science category")
	}

	_, cmd := sp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from Enter")
	}
	msg, ok := cmd().(SuggestionChosenMsg)
	if !ok {
		t.Fatalf("expected SuggestionChosenMsg, got %T", cmd())
	}
	if msg.Prompt != prompts[0] {
		t.Errorf("chosen prompt = %q, want %q", msg.Prompt, prompts[0])
	}
	if sp.IsVisible() {
		t.Error("picker should close after choosing")
	}
}

func TestSuggestionPickerCategoryCycle(t *testing.T) {
	theme := styles.NewTheme()
	sp := NewSuggestionPicker(theme)
	sp.Show("")

	start := sp.category
	sp.Update(tea.KeyMsg{Type: tea.KeyRight})
	if sp.category == start {
		t.Error("right arrow should switch category")
	}
	sp.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if sp.category != start {
		t.Error("left arrow should switch back")
	}
}

// =============================================================================
// MESSAGE BUBBLE TESTS
// =============================================================================

func TestMessageBubbleRoles(t *testing.T) {
	theme := styles.NewTheme()

	user := &model.Message{Role: model.RoleUser, Content: "hello there"}
	b := NewMessageBubble(user, theme)
	b.SetWidth(80)
	if !strings.Contains(b.View(), "hello there") {
		t.Error("user bubble missing content")
	}

	failed := &model.Message{Role: model.RoleAssistant, Content: "request timed out", Failed: true}
	fb := NewMessageBubble(failed, theme)
	fb.SetWidth(80)
	out := fb.View()
	if !strings.Contains(out, "request timed out") {
		t.Error("failed bubble missing content")
	}
	if !strings.Contains(out, styles.StatusIndicators.Error) {
		t.Error("failed bubble missing error indicator")
	}
}

func TestMessageListEmpty(t *testing.T) {
	theme := styles.NewTheme()
	ml := NewMessageList(theme)
	ml.SetWidth(80)

	if !strings.Contains(ml.View(), "No messages yet") {
		t.Error("empty list should render the empty state")
	}
}

// =============================================================================
// TRUNCATION TESTS
// =============================================================================

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"fits", "short", 10, "short"},
		{"truncated", "a very long description here", 10, "a very ..."},
		{"zero", "anything", 0, ""},
		{"tiny", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
