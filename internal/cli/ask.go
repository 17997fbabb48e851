// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - single question command handler for the gemrun CLI.
//
// Handles "gemrun ask" which sends one question to Gemini and prints the
// answer, with markdown rendering when stdout is a terminal.
//
// Command: ask [question]
// Short:   Ask a single question
//
// Examples:
//   gemrun ask "What is the capital of France?"
//   gemrun ask --simple "Explain DNS"
//   gemrun ask --model pro --json "List HTTP status codes"
//   echo "Explain this error" | gemrun ask
//
// Flags:
//   --simple            Plain-language answers
//   -m, --model NAME    Use specific model (overrides config)
//   --json              Output response as JSON
//   -q, --quiet         Minimal output
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/gemrun-tui/internal/gemini"
	"github.com/jeranaias/gemrun-tui/internal/model"
)

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or no renderer exists.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a response, rendering markdown only on a TTY so
// piped output stays clean.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Println(response)
	}
}

// askJSONResponse is the machine-readable shape of an ask result.
type askJSONResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Simple   bool   `json:"simple"`
}

// HandleAsk handles the "ask" command: one question, one answer.
func HandleAsk(args Args) error {
	question := strings.TrimSpace(args.Query)

	// Read the question from stdin when none was given on the command line
	// and input is piped in.
	if question == "" && !IsTTY() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("could not read stdin: %w", err)
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return errors.New("nothing to ask; try: gemrun ask \"your question\"")
	}

	cfg := loadConfig()
	client, err := buildClient(cfg, args.Model)
	if err != nil {
		return err
	}

	simple := args.Simple || cfg.Chat.SimpleMode

	// One-shot conversation; nothing is persisted for single asks.
	conv := model.NewConversation()
	conv.AddUserMessage(question)

	logEvent("ASK", "model="+client.GetModel(), fmt.Sprintf("simple=%t", simple))

	ctx := context.Background()
	answer, err := gemini.NewCompleter(client).Complete(ctx, conv, simple)
	if err != nil {
		return err
	}

	if args.JSON {
		out := askJSONResponse{
			Question: question,
			Answer:   answer,
			Model:    client.GetModel(),
			Simple:   simple,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	displayResponse(answer)
	return nil
}
