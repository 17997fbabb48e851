// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/suggest"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// These messages are sent by command handlers to update the application state.

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct {
	Topic string
}

// NewConversationMsg starts a fresh conversation.
type NewConversationMsg struct{}

// ClearConversationMsg clears the visible transcript.
type ClearConversationMsg struct{}

// LoadConversationMsg asks the app to open a saved conversation.
type LoadConversationMsg struct {
	ID string
}

// LoadCompleteMsg indicates load completion.
type LoadCompleteMsg struct {
	ID    string
	Error error
}

// SessionListMsg contains the list of saved conversations.
type SessionListMsg struct {
	Sessions []model.ConversationMeta
}

// DeleteConversationMsg asks the app to delete a saved conversation.
type DeleteConversationMsg struct {
	ID string
}

// DeleteCompleteMsg indicates delete completion.
type DeleteCompleteMsg struct {
	ID    string
	Error error
}

// CopyToClipboardMsg triggers copying to the clipboard. When CodeBlock is
// zero, the whole last reply is copied; otherwise the Nth code block (1-based).
type CopyToClipboardMsg struct {
	CodeBlock int
}

// CopyCompleteMsg indicates copy completion.
type CopyCompleteMsg struct {
	Label string
	Error error
}

// ExportConversationMsg triggers exporting the active conversation.
type ExportConversationMsg struct {
	Format string
}

// ExportCompleteMsg indicates export completion.
type ExportCompleteMsg struct {
	Path  string
	Error error
}

// ModeSwitchMsg switches the answer mode.
type ModeSwitchMsg struct {
	Simple bool
}

// ModelSwitchMsg indicates a model switch request.
type ModelSwitchMsg struct {
	Model string
}

// ShowModelsMsg triggers showing the model list.
type ShowModelsMsg struct{}

// SearchResultsMsg carries full-text search results.
type SearchResultsMsg struct {
	Query   string
	Matches []index.Match
	Error   error
}

// ShowSuggestionsMsg opens the suggestion palette, optionally scoped to a
// single category.
type ShowSuggestionsMsg struct {
	Category string
}

// ErrorMsg indicates an error occurred.
type ErrorMsg struct {
	Title   string
	Message string
	Tip     string
}

// SystemNoticeMsg shows a transient informational line in the chat.
type SystemNoticeMsg struct {
	Content string
}

// =============================================================================
// HANDLER IMPLEMENTATIONS
// =============================================================================

// HandleHelp shows help information.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	return func() tea.Msg {
		return ShowHelpMsg{Topic: topic}
	}
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// HandleNew starts a new conversation.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return NewConversationMsg{}
	}
}

// HandleLoad opens a saved conversation. Without an ID it falls back to the
// conversation list.
func HandleLoad(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return HandleSessions(ctx, args)
	}

	id := args[0]

	if ctx != nil && ctx.Store != nil {
		st := ctx.Store
		return func() tea.Msg {
			if err := st.LoadConversation(id); err != nil {
				return LoadCompleteMsg{ID: id, Error: err}
			}
			return LoadCompleteMsg{ID: id}
		}
	}

	return func() tea.Msg {
		return LoadConversationMsg{ID: id}
	}
}

// HandleSessions shows the saved conversation list.
func HandleSessions(ctx *Context, args []string) tea.Cmd {
	if ctx != nil && ctx.Store != nil {
		st := ctx.Store
		return func() tea.Msg {
			return SessionListMsg{Sessions: st.Conversations()}
		}
	}
	return func() tea.Msg {
		return SessionListMsg{}
	}
}

// HandleDelete deletes a saved conversation.
func HandleDelete(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing conversation ID",
				Message: "Usage: /delete <conversation_id>",
				Tip:     "Run /sessions to list saved conversations",
			}
		}
	}

	id := args[0]

	if ctx != nil && ctx.Store != nil {
		st := ctx.Store
		return func() tea.Msg {
			err := st.DeleteConversation(id)
			return DeleteCompleteMsg{ID: id, Error: err}
		}
	}

	return func() tea.Msg {
		return DeleteConversationMsg{ID: id}
	}
}

// HandleClear clears the transcript.
func HandleClear(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ClearConversationMsg{}
	}
}

// HandleCopy copies the last reply, or a specific code block with
// "/copy code <n>".
func HandleCopy(ctx *Context, args []string) tea.Cmd {
	block := 0
	if len(args) >= 2 && strings.EqualFold(args[0], "code") {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return func() tea.Msg {
				return ErrorMsg{
					Title:   "Invalid code block number",
					Message: "Usage: /copy code <n>",
					Tip:     "Code blocks are numbered from 1",
				}
			}
		}
		block = n
	}
	return func() tea.Msg {
		return CopyToClipboardMsg{CodeBlock: block}
	}
}

// HandleExport exports the conversation.
func HandleExport(ctx *Context, args []string) tea.Cmd {
	format := "md"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	switch format {
	case "md", "markdown", "json", "html", "txt", "text":
	default:
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid export format",
				Message: "Unknown format: " + format,
				Tip:     "Supported formats: md, json, html, txt",
			}
		}
	}

	return func() tea.Msg {
		return ExportConversationMsg{Format: format}
	}
}

// HandleSearch runs a full-text search over saved conversations.
func HandleSearch(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing search query",
				Message: "Usage: /search <query>",
			}
		}
	}

	query := strings.Join(args, " ")

	if ctx != nil && ctx.Index != nil {
		idx := ctx.Index
		return func() tea.Msg {
			matches, err := idx.Search(query, 20)
			return SearchResultsMsg{Query: query, Matches: matches, Error: err}
		}
	}

	return func() tea.Msg {
		return SearchResultsMsg{
			Query: query,
			Error: index.ErrNotIndexed,
		}
	}
}

// HandleMode switches the answer mode.
func HandleMode(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing mode",
				Message: "Usage: /mode <simple|technical>",
			}
		}
	}

	switch strings.ToLower(args[0]) {
	case "simple":
		return func() tea.Msg { return ModeSwitchMsg{Simple: true} }
	case "technical", "tech":
		return func() tea.Msg { return ModeSwitchMsg{Simple: false} }
	default:
		mode := args[0]
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Unknown mode",
				Message: "Unknown mode: " + mode,
				Tip:     "Valid modes: simple, technical",
			}
		}
	}
}

// HandleSimple switches to plain-language answers.
func HandleSimple(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return ModeSwitchMsg{Simple: true} }
}

// HandleTechnical switches to full technical answers.
func HandleTechnical(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return ModeSwitchMsg{Simple: false} }
}

// HandleSuggest opens the suggestion palette.
func HandleSuggest(ctx *Context, args []string) tea.Cmd {
	category := ""
	if len(args) > 0 {
		category = strings.Join(args, " ")
		if _, ok := suggest.Lookup(category); !ok {
			nearest := suggest.SuggestCategory(category)
			bad := category
			return func() tea.Msg {
				msg := ErrorMsg{
					Title:   "Unknown category",
					Message: "No suggestion category named " + strconv.Quote(bad),
				}
				if nearest != "" {
					msg.Tip = "Did you mean " + strconv.Quote(nearest) + "?"
				}
				return msg
			}
		}
	}
	cat := category
	return func() tea.Msg {
		return ShowSuggestionsMsg{Category: cat}
	}
}

// HandleModel switches or shows the current model.
func HandleModel(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return HandleModels(ctx, args)
	}

	name := args[0]
	id := model.ResolveModelID(name)
	if _, ok := model.GetModelInfo(id); !ok {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Unknown model",
				Message: "Unknown model: " + name,
				Tip:     "Run /models to list known models",
			}
		}
	}

	return func() tea.Msg {
		return ModelSwitchMsg{Model: id}
	}
}

// HandleModels lists known Gemini models.
func HandleModels(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ShowModelsMsg{}
	}
}
