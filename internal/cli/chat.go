// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - interactive REPL command handler for the gemrun CLI.
//
// Handles "gemrun chat" which provides a readline-style loop for chatting
// with Gemini outside the TUI. Conversations are persisted to the archive
// exactly like TUI sessions.
//
// Command: chat
// Short:   Start an interactive chat session
// Aliases: repl
//
// Examples:
//   gemrun chat                    Start interactive chat (default model)
//   gemrun chat --model pro        Use a specific model
//   gemrun chat --simple           Plain-language answers
//
// Interactive commands (during chat):
//   :mode               Toggle simple/technical answers
//   :new                Start a new conversation
//   :quit               Exit chat (also :q, exit, quit, Ctrl+D)
//   Ctrl+C              Cancel the in-flight request
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/store"
)

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history loaded from the state dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Non-empty input
// is appended to the history for arrow-key recall.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// chatSession holds the state for one interactive REPL run.
type chatSession struct {
	cfg   *config.Config
	store *store.TranscriptStore
	input *ChatCLI

	quiet bool
	start time.Time
	turns int

	// cancel aborts the in-flight completion; nil when idle.
	cancel context.CancelFunc
}

// HandleChat handles the "chat" command with full interactive support.
func HandleChat(args Args) error {
	cfg := loadConfig()
	client, err := buildClient(cfg, args.Model)
	if err != nil {
		return err
	}
	st, err := buildStore(cfg, client)
	if err != nil {
		return err
	}
	if args.Simple {
		st.SetSimpleMode(true)
	}
	if _, err := st.StartNewChat(); err != nil {
		return fmt.Errorf("could not start conversation: %w", err)
	}

	session := &chatSession{
		cfg:   cfg,
		store: st,
		input: NewChatCLI(),
		quiet: args.Quiet,
		start: time.Now(),
	}
	defer session.input.Close()

	if !session.quiet {
		printChatWelcome(client.GetModel(), st.SimpleMode())
	}

	// Ctrl+C cancels the in-flight request instead of killing the REPL.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if session.cancel != nil {
				session.cancel()
				session.cancel = nil
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	logEvent("CHAT_START", "model="+client.GetModel())

	for {
		input, err := session.input.ReadInput(PromptStyle.Render("gemrun> "))
		if err != nil {
			// ErrPromptAborted is Ctrl+C at an empty prompt; anything else
			// is EOF (Ctrl+D). Both exit gracefully.
			fmt.Println()
			printChatSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, ":") {
			if !session.handleColonCommand(input) {
				printChatSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printChatSummary(session)
			return nil
		}

		if err := session.processMessage(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

// handleColonCommand runs a :command and reports whether the REPL should
// keep going.
func (s *chatSession) handleColonCommand(input string) bool {
	switch strings.ToLower(input) {
	case ":mode", ":m":
		s.store.SetSimpleMode(!s.store.SimpleMode())
		if s.store.SimpleMode() {
			fmt.Println(DimStyle.Render("Simple answers on."))
		} else {
			fmt.Println(DimStyle.Render("Technical answers on."))
		}
	case ":new", ":n":
		if _, err := s.store.StartNewChat(); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		} else {
			fmt.Println(DimStyle.Render("Started a new conversation."))
		}
	case ":quit", ":q", ":exit":
		return false
	case ":help", ":h":
		fmt.Println(DimStyle.Render(":mode  toggle simple/technical answers"))
		fmt.Println(DimStyle.Render(":new   start a new conversation"))
		fmt.Println(DimStyle.Render(":quit  exit chat"))
	default:
		fmt.Fprintf(os.Stderr, "%s unknown command %q (try :help)\n",
			WarningStyle.Render("[?]"), input)
	}
	return true
}

// processMessage sends one message and prints the reply.
func (s *chatSession) processMessage(input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	defer func() {
		s.cancel = nil
		cancel()
	}()

	reply, err := s.store.Send(ctx, input)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	if reply == nil {
		return nil
	}

	fmt.Println()
	displayResponse(reply.Content)
	fmt.Println()

	s.turns++
	return nil
}

// printChatWelcome prints the REPL banner.
func printChatWelcome(modelID string, simple bool) {
	mode := "technical"
	if simple {
		mode = "simple"
	}
	fmt.Println(TitleStyle.Render("gemrun chat"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Model:"), ValueStyle.Render(modelID))
	fmt.Printf("%s %s\n", LabelStyle.Render("Mode:"), ValueStyle.Render(mode))
	fmt.Println(DimStyle.Render("Type :help for commands, :quit or Ctrl+D to exit."))
	fmt.Println()
}

// printChatSummary prints a short session summary on exit.
func printChatSummary(s *chatSession) {
	if s.quiet {
		return
	}
	elapsed := time.Since(s.start).Round(time.Second)
	fmt.Println(RenderSeparator(40))
	fmt.Printf("%s %d exchanges in %s\n",
		DimStyle.Render("Session:"), s.turns, elapsed)
	logEvent("CHAT_END", fmt.Sprintf("turns=%d", s.turns),
		"elapsed="+elapsed.String())
}
