// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/session"
	"github.com/jeranaias/gemrun-tui/internal/store"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/mode <simple|technical>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString       ArgType = iota // Free-form string
	ArgTypeModel                       // Gemini model name
	ArgTypeConversation                // Conversation ID from the archive
	ArgTypeEnum                        // One of predefined values
	ArgTypeCategory                    // Suggestion category name
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// Names returns the primary names of all non-hidden commands.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name, cmd := range r.commands {
		if !cmd.Hidden {
			names = append(names, name)
		}
	}
	return names
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Usage:       "/help [topic]",
		Args: []ArgDef{
			{Name: "topic", Type: ArgTypeString, Description: "Help topic"},
		},
		Category: "Navigation",
		Handler:  HandleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit gemrun",
		Category:    "Navigation",
		Handler:     HandleQuit,
	})

	// Conversation
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new conversation",
		Category:    "Conversation",
		Handler:     HandleNew,
	})

	r.Register(&Command{
		Name:        "/load",
		Aliases:     []string{"/l", "/open"},
		Description: "Open a saved conversation",
		Usage:       "/load <conversation_id>",
		Args: []ArgDef{
			{Name: "conversation_id", Required: true, Type: ArgTypeConversation, Description: "ID of the conversation to open"},
		},
		Category: "Conversation",
		Handler:  HandleLoad,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/list"},
		Description: "List saved conversations",
		Category:    "Conversation",
		Handler:     HandleSessions,
	})

	r.Register(&Command{
		Name:        "/delete",
		Aliases:     []string{"/del"},
		Description: "Delete a saved conversation",
		Usage:       "/delete <conversation_id>",
		Args: []ArgDef{
			{Name: "conversation_id", Required: true, Type: ArgTypeConversation, Description: "ID of the conversation to delete"},
		},
		Category: "Conversation",
		Handler:  HandleDelete,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear the screen and start fresh",
		Category:    "Conversation",
		Handler:     HandleClear,
	})

	r.Register(&Command{
		Name:        "/copy",
		Description: "Copy the last reply to the clipboard",
		Usage:       "/copy [code <n>]",
		Args: []ArgDef{
			{Name: "target", Type: ArgTypeString, Description: "Use 'code <n>' for the Nth code block"},
		},
		Category: "Conversation",
		Handler:  HandleCopy,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the conversation to a file",
		Usage:       "/export [format]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: []string{"md", "json", "html", "txt"}, Description: "Export format"},
		},
		Category: "Conversation",
		Handler:  HandleExport,
	})

	r.Register(&Command{
		Name:        "/search",
		Aliases:     []string{"/find"},
		Description: "Search saved conversations",
		Usage:       "/search <query>",
		Args: []ArgDef{
			{Name: "query", Required: true, Type: ArgTypeString, Description: "Full-text search query"},
		},
		Category: "Conversation",
		Handler:  HandleSearch,
	})

	// Answers
	r.Register(&Command{
		Name:        "/mode",
		Description: "Switch answer mode",
		Usage:       "/mode <simple|technical>",
		Args: []ArgDef{
			{Name: "mode", Required: true, Type: ArgTypeEnum, Values: []string{"simple", "technical"}, Description: "Answer mode"},
		},
		Category: "Answers",
		Handler:  HandleMode,
	})

	r.Register(&Command{
		Name:        "/simple",
		Description: "Answer in plain language",
		Category:    "Answers",
		Handler:     HandleSimple,
	})

	r.Register(&Command{
		Name:        "/technical",
		Aliases:     []string{"/tech"},
		Description: "Answer with full technical detail",
		Category:    "Answers",
		Handler:     HandleTechnical,
	})

	r.Register(&Command{
		Name:        "/suggest",
		Aliases:     []string{"/ideas"},
		Description: "Show starter question suggestions",
		Usage:       "/suggest [category]",
		Args: []ArgDef{
			{Name: "category", Type: ArgTypeCategory, Description: "Suggestion category"},
		},
		Category: "Answers",
		Handler:  HandleSuggest,
	})

	// Model
	r.Register(&Command{
		Name:        "/model",
		Aliases:     []string{"/m"},
		Description: "Switch or show the current model",
		Usage:       "/model [name]",
		Args: []ArgDef{
			{Name: "name", Type: ArgTypeModel, Description: "Model to switch to"},
		},
		Category: "Model",
		Handler:  HandleModel,
	})

	r.Register(&Command{
		Name:        "/models",
		Description: "List known Gemini models",
		Category:    "Model",
		Handler:     HandleModels,
	})
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// All fields are optional and may be nil. Handlers check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Store holds the active transcript and the saved conversation list
	Store *store.TranscriptStore

	// Session tracks activity and unsaved changes
	Session *session.Manager

	// Index provides full-text search over saved conversations
	Index *index.ConversationIndex
}

// NewContext creates a new command context with the given dependencies.
func NewContext(cfg *config.Config, st *store.TranscriptStore, sess *session.Manager, idx *index.ConversationIndex) *Context {
	return &Context{
		Config:  cfg,
		Store:   st,
		Session: sess,
		Index:   idx,
	}
}

// RecordActivity records user activity in the session manager if available.
func (c *Context) RecordActivity() {
	if c.Session != nil {
		c.Session.RecordActivity()
	}
}

// MarkDirty marks the session as having unsaved changes.
func (c *Context) MarkDirty() {
	if c.Session != nil {
		c.Session.MarkDirty()
	}
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text (may include formatting)
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}
