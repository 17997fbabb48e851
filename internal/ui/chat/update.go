// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/commands"
	"github.com/jeranaias/gemrun-tui/internal/gemini"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/session"
	"github.com/jeranaias/gemrun-tui/internal/ui/components"
)

// flashDuration is how long transient status bar flashes stay visible.
const flashDuration = 2 * time.Second

// flash shows a transient status bar message and schedules its removal.
// Each call bumps the sequence, so a re-flash before the previous timer
// fires keeps its full duration instead of being cleared early.
func (m *Model) flash(text string) tea.Cmd {
	m.flashSeq++
	m.statusBar.SetFlash(text)
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the matching handler. Overlays capture keyboard
// input while open; everything else flows through the input area.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case session.TickMsg:
		if m.sess == nil {
			return m, nil
		}
		return m, m.sess.HandleTick()

	case session.IdleWarningMsg:
		if !m.thinking {
			m.statusBar.SetStatus(components.StatusIdle)
		}
		return m, nil

	case session.AutoSaveMsg:
		// The store persists every turn; autosave only clears the dirty flag.
		if m.sess != nil {
			m.sess.MarkClean()
		}
		return m, nil

	case components.ToastTickMsg:
		m.toasts.TickToasts()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case replyMsg:
		return m.handleReply(msg)

	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.statusBar.SetFlash("")
		}
		return m, nil
	}

	if mm, cmd, handled := m.handleCommandMsg(msg); handled {
		return mm, cmd
	}
	if mm, cmd, handled := m.handleComponentMsg(msg); handled {
		return mm, cmd
	}

	return m, nil
}

// handleResize propagates the new terminal size to every component.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.statusBar.SetWidth(msg.Width)
	m.input.SetWidth(msg.Width)
	m.welcome.SetSize(msg.Width, msg.Height)
	m.palette.SetSize(msg.Width, msg.Height)
	m.sidebar.SetSize(msg.Width, msg.Height)
	m.suggestions.SetSize(msg.Width, msg.Height)
	m.completionPopup.SetWidth(msg.Width / 2)

	// Header, input box, and status bar each take a fixed slice of the
	// vertical space; the viewport gets the rest.
	viewportHeight := msg.Height - 10
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.viewport.SetSize(msg.Width, viewportHeight)

	m.syncConversationState()
	return m, nil
}

// =============================================================================
// KEYBOARD HANDLING
// =============================================================================

// handleKey dispatches a key press. Open overlays get first claim on input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.sess != nil {
		m.sess.RecordActivity()
	}

	if m.overlayOpen() {
		return m.handleOverlayKey(msg)
	}

	// Alt+1..9 copies the Nth code block of the last reply.
	if block, ok := altDigit(msg.String()); ok {
		return m, m.copyCmd(block)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.NewChat):
		return m.startNewChat()

	case key.Matches(msg, m.keyMap.Conversations):
		m.sidebar.SetConversations(m.store.Conversations(), m.store.ActiveID())
		m.sidebar.Show()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleMode):
		return m.switchMode(!m.store.SimpleMode())

	case key.Matches(msg, m.keyMap.CopyReply):
		return m, m.copyCmd(0)

	case key.Matches(msg, m.keyMap.Palette):
		m.palette.Show()
		return m, nil

	case key.Matches(msg, m.keyMap.Search):
		m.input.SetValue("/search ")
		return m, m.input.Focus()

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.Up),
		key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp),
		key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case msg.String() == "tab":
		if m.completionState.Visible {
			return m.acceptCompletion()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		if m.completionState.Visible {
			m.completionState.Clear()
			m.completionPopup.Clear()
			return m, nil
		}
		if m.thinking && m.cancel.Cancel() {
			cmd := m.flash("Cancelled")
			return m, cmd
		}
		return m, nil
	}

	// Completion list navigation while the popup is visible.
	if m.completionState.Visible {
		switch msg.String() {
		case "down", "ctrl+n":
			m.completionState.Next()
			m.completionPopup.SetSelected(m.completionState.Selected)
			return m, nil
		case "up", "ctrl+p":
			m.completionState.Prev()
			m.completionPopup.SetSelected(m.completionState.Selected)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshCompletions()
	return m, cmd
}

// handleOverlayKey routes a key press to whichever overlay is open.
func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "esc", "q", "ctrl+g", "enter":
			m.showHelp = false
		}
		return m, nil
	}

	if m.searchVisible {
		return m.handleSearchOverlayKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.palette.IsVisible():
		m.palette, cmd = m.palette.Update(msg)
	case m.sidebar.IsVisible():
		m.sidebar, cmd = m.sidebar.Update(msg)
	case m.suggestions.IsVisible():
		m.suggestions, cmd = m.suggestions.Update(msg)
	}
	return m, cmd
}

// handleSearchOverlayKey navigates the search results overlay.
func (m Model) handleSearchOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.searchVisible = false
		return m, nil
	case "up", "k":
		if m.searchSelected > 0 {
			m.searchSelected--
		}
		return m, nil
	case "down", "j":
		if m.searchSelected < len(m.searchMatches)-1 {
			m.searchSelected++
		}
		return m, nil
	case "enter":
		if m.searchSelected < len(m.searchMatches) {
			id := m.searchMatches[m.searchSelected].ConversationID
			m.searchVisible = false
			return m.loadConversation(id)
		}
		m.searchVisible = false
		return m, nil
	}
	return m, nil
}

// altDigit parses "alt+1".."alt+9" into a 1-based code block number.
func altDigit(s string) (int, bool) {
	if !strings.HasPrefix(s, "alt+") || len(s) != 5 {
		return 0, false
	}
	n, err := strconv.Atoi(s[4:])
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n, true
}

// =============================================================================
// SUBMIT PIPELINE
// =============================================================================

// submit sends the input line: slash commands run through the registry,
// anything else becomes a user message followed by a completion turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.completionState.Clear()
	m.completionPopup.Clear()

	result := m.parser.Parse(text)
	if result.IsCommand {
		m.input.Reset()
		if result.Command == nil {
			m.toasts.AddError("Unknown command: " + result.CommandName + ". Try /help.")
			return m, components.ToastTickCmd()
		}
		return m, result.Command.Handler(m.cmdCtx, result.Args)
	}

	userMsg, err := m.store.SubmitMessage(text)
	if err != nil {
		m.toasts.AddError(err.Error())
		return m, components.ToastTickCmd()
	}
	if userMsg == nil {
		return m, nil
	}

	m.input.Reset()
	m.viewport.AppendMessage(userMsg)
	m.statusBar.SetMessageCount(m.store.Active().MessageCount())
	m.statusBar.SetStatus(components.StatusThinking)
	m.thinking = true
	if m.sess != nil {
		m.sess.MarkDirty()
	}

	return m, tea.Batch(m.spinner.Start(), m.completeTurnCmd())
}

// completeTurnCmd runs the pending completion turn off the UI goroutine.
// The turn's context is cancellable from esc via the cancel holder.
func (m *Model) completeTurnCmd() tea.Cmd {
	st := m.store
	holder := m.cancel

	ctx, cancel := context.WithCancel(context.Background())
	holder.Set(cancel)

	return func() tea.Msg {
		defer holder.Clear()
		reply, err := st.CompleteTurn(ctx)
		return replyMsg{message: reply, err: err}
	}
}

// handleReply folds the completion outcome back into the transcript.
func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.thinking = false
	m.spinner.Stop()

	// The store already appended the reply, or a failed placeholder on
	// error, so a resync picks up either outcome.
	m.syncConversationState()
	m.viewport.ScrollToBottom()

	if msg.err != nil {
		m.statusBar.SetStatus(components.StatusError)
		m.toasts.AddError(describeAPIError(msg.err))
		return m, components.ToastTickCmd()
	}

	m.statusBar.SetStatus(components.StatusReady)
	return m, nil
}

// describeAPIError turns an API failure into a short, actionable line.
func describeAPIError(err error) string {
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		return "No API key configured. Run gemrun auth first."
	case errors.Is(err, gemini.ErrAuthFailed):
		return "Authentication failed. Check your API key with gemrun auth."
	case errors.Is(err, gemini.ErrRateLimited):
		return "Rate limited by the API. Wait a moment and try again."
	case errors.Is(err, gemini.ErrQuotaExceeded):
		return "API quota exhausted. Try again after the quota resets."
	case errors.Is(err, gemini.ErrModelNotFound):
		return "The selected model is unavailable. Run /models to pick another."
	case errors.Is(err, gemini.ErrBlocked):
		return "The safety filter blocked this exchange. Try rephrasing."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Try again."
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	}

	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		return "Gemini error: " + apiErr.Message
	}
	return "Request failed: " + err.Error()
}

// modelListSummary renders a one-line list of known models for the toast.
func modelListSummary() string {
	aliases := model.ModelAliases()
	sort.Strings(aliases)

	parts := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		info := model.Models[alias]
		parts = append(parts, alias+" ("+info.ID+")")
	}
	return "Models: " + strings.Join(parts, ", ")
}

// =============================================================================
// COMPLETION SUPPORT
// =============================================================================

// refreshCompletions recomputes slash command completions for the current
// input and keeps the popup in sync.
func (m *Model) refreshCompletions() {
	value := m.input.Value()
	if !strings.HasPrefix(value, "/") {
		m.completionState.Clear()
		m.completionPopup.Clear()
		return
	}

	comps := m.completer.Complete(value, m.input.CursorPosition())
	if len(comps) == 0 {
		m.completionState.Clear()
		m.completionPopup.Clear()
		return
	}

	m.completionState.Update(value, comps)
	m.completionPopup.SetCompletions(comps)
	m.completionPopup.SetSelected(m.completionState.Selected)
}

// acceptCompletion replaces the token being completed with the selection.
func (m Model) acceptCompletion() (tea.Model, tea.Cmd) {
	accepted := m.completionState.Accept()
	if accepted == "" {
		return m, nil
	}

	value := m.input.Value()
	if idx := strings.LastIndex(value, " "); idx >= 0 {
		value = value[:idx+1] + accepted
	} else {
		value = accepted
	}
	m.input.SetValue(value + " ")

	m.completionState.Clear()
	m.completionPopup.Clear()
	m.refreshCompletions()
	return m, nil
}

// =============================================================================
// COMMAND MESSAGE HANDLERS
// =============================================================================

// handleCommandMsg processes messages emitted by slash command handlers.
// The third return value reports whether the message was recognized.
func (m Model) handleCommandMsg(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case commands.ShowHelpMsg:
		m.showHelp = true
		return m, nil, true

	case commands.NewConversationMsg:
		mm, cmd := m.startNewChat()
		return mm, cmd, true

	case commands.ClearConversationMsg:
		// Clearing the visible transcript starts a fresh conversation;
		// the previous one stays in the archive.
		mm, cmd := m.startNewChat()
		return mm, cmd, true

	case commands.LoadConversationMsg:
		mm, cmd := m.loadConversation(msg.ID)
		return mm, cmd, true

	case commands.LoadCompleteMsg:
		if msg.Error != nil {
			m.toasts.AddError("Could not load conversation: " + msg.Error.Error())
			return m, components.ToastTickCmd(), true
		}
		m.syncConversationState()
		m.viewport.ScrollToBottom()
		m.toasts.AddSuccess("Conversation loaded")
		return m, components.ToastTickCmd(), true

	case commands.SessionListMsg:
		m.sidebar.SetConversations(msg.Sessions, m.store.ActiveID())
		m.sidebar.Show()
		return m, nil, true

	case commands.DeleteConversationMsg:
		mm, cmd := m.deleteConversation(msg.ID)
		return mm, cmd, true

	case commands.DeleteCompleteMsg:
		if msg.Error != nil {
			m.toasts.AddError("Could not delete conversation: " + msg.Error.Error())
		} else {
			m.toasts.AddSuccess("Conversation deleted")
			m.syncConversationState()
			if m.sidebar.IsVisible() {
				m.sidebar.SetConversations(m.store.Conversations(), m.store.ActiveID())
			}
		}
		return m, components.ToastTickCmd(), true

	case commands.CopyToClipboardMsg:
		return m, m.copyCmd(msg.CodeBlock), true

	case commands.CopyCompleteMsg:
		if msg.Error != nil {
			m.toasts.AddError("Copy failed: " + msg.Error.Error())
			return m, components.ToastTickCmd(), true
		}
		cmd := m.flash("Copied " + msg.Label + "!")
		return m, cmd, true

	case commands.ExportConversationMsg:
		return m, m.exportCmd(msg.Format), true

	case commands.ExportCompleteMsg:
		if msg.Error != nil {
			m.toasts.AddError("Export failed: " + msg.Error.Error())
		} else {
			m.toasts.AddSuccess("Exported to " + msg.Path)
		}
		return m, components.ToastTickCmd(), true

	case commands.ModeSwitchMsg:
		mm, cmd := m.switchMode(msg.Simple)
		return mm, cmd, true

	case commands.ModelSwitchMsg:
		mm, cmd := m.switchModel(msg.Model)
		return mm, cmd, true

	case commands.ShowModelsMsg:
		m.toasts.AddStatus(modelListSummary())
		return m, components.ToastTickCmd(), true

	case commands.SearchResultsMsg:
		if msg.Error != nil {
			m.toasts.AddError("Search failed: " + msg.Error.Error())
			return m, components.ToastTickCmd(), true
		}
		if len(msg.Matches) == 0 {
			m.toasts.AddStatus("No matches for " + strconv.Quote(msg.Query))
			return m, components.ToastTickCmd(), true
		}
		m.searchQuery = msg.Query
		m.searchMatches = msg.Matches
		m.searchSelected = 0
		m.searchVisible = true
		return m, nil, true

	case commands.ShowSuggestionsMsg:
		m.suggestions.Show(msg.Category)
		return m, nil, true

	case commands.ErrorMsg:
		text := msg.Message
		if msg.Title != "" {
			text = msg.Title + ": " + msg.Message
		}
		if msg.Tip != "" {
			text += " (" + msg.Tip + ")"
		}
		m.toasts.AddError(text)
		return m, components.ToastTickCmd(), true

	case commands.SystemNoticeMsg:
		m.toasts.AddStatus(msg.Content)
		return m, components.ToastTickCmd(), true
	}

	return m, nil, false
}

// =============================================================================
// COMPONENT MESSAGE HANDLERS
// =============================================================================

// handleComponentMsg processes messages emitted by UI components.
func (m Model) handleComponentMsg(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case components.ExecuteCommandMsg:
		if msg.Command == nil {
			return m, nil, true
		}
		return m, msg.Command.Handler(m.cmdCtx, msg.Args), true

	case components.SidebarSelectMsg:
		mm, cmd := m.loadConversation(msg.ID)
		return mm, cmd, true

	case components.SidebarDeleteMsg:
		mm, cmd := m.deleteConversation(msg.ID)
		return mm, cmd, true

	case components.SuggestionChosenMsg:
		m.input.SetValue(msg.Prompt)
		return m, m.input.Focus(), true
	}

	return m, nil, false
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// startNewChat begins a fresh conversation.
func (m Model) startNewChat() (tea.Model, tea.Cmd) {
	if m.store.Busy() {
		m.toasts.AddError("Wait for the current reply to finish first")
		return m, components.ToastTickCmd()
	}
	if _, err := m.store.StartNewChat(); err != nil {
		m.toasts.AddError("Could not start a new conversation: " + err.Error())
		return m, components.ToastTickCmd()
	}
	m.syncConversationState()
	m.statusBar.SetStatus(components.StatusReady)
	return m, m.input.Focus()
}

// loadConversation opens a saved conversation by ID.
func (m Model) loadConversation(id string) (tea.Model, tea.Cmd) {
	if err := m.store.LoadConversation(id); err != nil {
		m.toasts.AddError("Could not load conversation: " + err.Error())
		return m, components.ToastTickCmd()
	}
	m.syncConversationState()
	m.viewport.ScrollToBottom()
	return m, m.input.Focus()
}

// deleteConversation removes a saved conversation by ID.
func (m Model) deleteConversation(id string) (tea.Model, tea.Cmd) {
	if err := m.store.DeleteConversation(id); err != nil {
		m.toasts.AddError("Could not delete conversation: " + err.Error())
		return m, components.ToastTickCmd()
	}
	m.syncConversationState()
	if m.sidebar.IsVisible() {
		m.sidebar.SetConversations(m.store.Conversations(), m.store.ActiveID())
	}
	m.toasts.AddSuccess("Conversation deleted")
	return m, components.ToastTickCmd()
}

// switchMode toggles simple/technical answers for the active conversation.
func (m Model) switchMode(simple bool) (tea.Model, tea.Cmd) {
	m.store.SetSimpleMode(simple)
	m.syncConversationState()

	var cmd tea.Cmd
	if simple {
		cmd = m.flash("Simple answers on")
	} else {
		cmd = m.flash("Technical answers on")
	}
	return m, cmd
}

// switchModel changes the Gemini model for subsequent requests.
func (m Model) switchModel(id string) (tea.Model, tea.Cmd) {
	m.cfg.API.Model = id
	if m.client != nil {
		m.client.SetModel(id)
	}
	m.header.SetModel(id)
	m.statusBar.SetModel(id)
	m.welcome.SetModelName(id)
	cmd := m.flash("Model: " + id)
	return m, cmd
}
