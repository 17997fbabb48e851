// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/commands"
	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/gemini"
	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/session"
	"github.com/jeranaias/gemrun-tui/internal/store"
	"github.com/jeranaias/gemrun-tui/internal/ui/components"
	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the root Bubble Tea model for the chat interface. It owns the
// transcript store, the command machinery, and every visual component, and
// routes messages between them.
type Model struct {
	// Core dependencies
	cfg    *config.Config
	store  *store.TranscriptStore
	sess   *session.Manager
	idx    *index.ConversationIndex
	client *gemini.Client

	// Command machinery
	registry        *commands.Registry
	parser          *commands.Parser
	completer       *commands.Completer
	completionState *commands.CompletionState
	cmdCtx          *commands.Context

	// Input handling
	keyMap KeyMap
	theme  *styles.Theme

	// Sequence of the most recent status bar flash. Stale clearFlashMsg
	// ticks carry an older value and are ignored.
	flashSeq int

	// Components
	header          *components.Header
	viewport        *components.ChatViewport
	input           *components.InputArea
	statusBar       *components.StatusBar
	spinner         components.Spinner
	palette         *components.CommandPalette
	sidebar         *components.Sidebar
	suggestions     *components.SuggestionPicker
	completionPopup *components.CompletionPopup
	toasts          *components.ToastManager
	welcome         components.Welcome

	// Search results overlay
	searchQuery    string
	searchMatches  []index.Match
	searchSelected int
	searchVisible  bool

	// UI state
	width    int
	height   int
	ready    bool
	thinking bool
	showHelp bool
	quitting bool

	// cancel aborts the in-flight completion on esc
	cancel *cancelHolder

	version string
}

// cancelHolder guards the cancel func of the in-flight completion. The UI
// goroutine sets and clears it; esc may fire from a later Update call.
type cancelHolder struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// Set stores the cancel func for the current turn.
func (h *cancelHolder) Set(cancel context.CancelFunc) {
	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()
}

// Cancel aborts the current turn, if any, and clears the holder.
func (h *cancelHolder) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel == nil {
		return false
	}
	h.cancel()
	h.cancel = nil
	return true
}

// Clear drops the stored cancel func without firing it.
func (h *cancelHolder) Clear() {
	h.mu.Lock()
	h.cancel = nil
	h.mu.Unlock()
}

// New creates the chat model from already wired dependencies. The index may
// be nil when search is unavailable; the search command degrades to an error
// toast in that case.
func New(cfg *config.Config, st *store.TranscriptStore, sess *session.Manager, idx *index.ConversationIndex) Model {
	theme := styles.NewTheme()
	registry := commands.NewRegistry()

	modelID := model.ResolveModelID(cfg.API.Model)

	header := components.NewHeader(theme)
	header.SetModel(modelID)
	header.SetSimpleMode(st.SimpleMode())

	statusBar := components.NewStatusBar(theme)
	statusBar.SetModel(modelID)
	statusBar.SetSimpleMode(st.SimpleMode())

	welcome := components.NewWelcome(theme)
	welcome.SetModelName(modelID)
	welcome.SetSimpleMode(st.SimpleMode())

	return Model{
		cfg:   cfg,
		store: st,
		sess:  sess,
		idx:   idx,

		registry:        registry,
		parser:          commands.NewParser(registry),
		completer:       commands.NewCompleter(registry),
		completionState: commands.NewCompletionState(),
		cmdCtx:          commands.NewContext(cfg, st, sess, idx),

		keyMap: DefaultKeyMap(),
		theme:  theme,

		header:          header,
		viewport:        components.NewChatViewport(theme),
		input:           components.NewInputArea(theme),
		statusBar:       statusBar,
		spinner:         components.NewThinkingSpinner(),
		palette:         components.NewCommandPalette(registry, theme),
		sidebar:         components.NewSidebar(theme),
		suggestions:     components.NewSuggestionPicker(theme),
		completionPopup: components.NewCompletionPopup(theme),
		toasts:          components.NewToastManager(),
		welcome:         welcome,

		cancel:  &cancelHolder{},
		version: "dev",
	}
}

// SetVersion sets the version string shown on the welcome screen.
func (m *Model) SetVersion(v string) {
	m.version = v
	m.welcome.SetVersion(v)
}

// SetClient attaches the Gemini client so /model switches take effect on
// subsequent requests. Without it only the display updates.
func (m *Model) SetClient(c *gemini.Client) {
	m.client = c
}

// Init starts the session ticker and focuses the input.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.input.Focus(),
	}
	if m.sess != nil {
		cmds = append(cmds, session.TickCmd())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// INTERNAL MESSAGES
// =============================================================================

// replyMsg carries the outcome of a completion turn back into Update.
type replyMsg struct {
	message *model.Message
	err     error
}

// clearFlashMsg clears the transient status bar flash. The sequence number
// ties it to the flash that scheduled it, so a newer flash survives an older
// flash's pending clear.
type clearFlashMsg struct {
	seq int
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// overlayOpen reports whether any modal overlay currently captures input.
func (m *Model) overlayOpen() bool {
	return m.palette.IsVisible() ||
		m.sidebar.IsVisible() ||
		m.suggestions.IsVisible() ||
		m.searchVisible ||
		m.showHelp
}

// syncConversationState refreshes the components that mirror the store:
// transcript, message counter, and mode badges.
func (m *Model) syncConversationState() {
	conv := m.store.Active()
	if conv != nil {
		m.viewport.SetMessages(conv.Messages)
		m.statusBar.SetMessageCount(conv.MessageCount())
	} else {
		m.viewport.SetMessages(nil)
		m.statusBar.SetMessageCount(0)
	}

	simple := m.store.SimpleMode()
	m.header.SetSimpleMode(simple)
	m.statusBar.SetSimpleMode(simple)
	m.welcome.SetSimpleMode(simple)
}

// showingWelcome reports whether the splash screen should render instead of
// the transcript.
func (m *Model) showingWelcome() bool {
	conv := m.store.Active()
	return conv == nil || conv.IsEmpty()
}
