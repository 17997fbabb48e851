// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"
)

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args is tui", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"repl alias", []string{"repl"}, CmdChat},
		{"sessions", []string{"sessions"}, CmdSessions},
		{"session alias", []string{"session"}, CmdSessions},
		{"s alias", []string{"s"}, CmdSessions},
		{"export", []string{"export", "conv_1"}, CmdExport},
		{"auth", []string{"auth", "show"}, CmdAuth},
		{"config", []string{"config"}, CmdConfig},
		{"cfg alias", []string{"cfg", "path"}, CmdConfig},
		{"serve", []string{"serve"}, CmdServe},
		{"suggest", []string{"suggest"}, CmdSuggest},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"unknown", []string{"bogus"}, CmdUnknown},
		{"case insensitive", []string{"ASK", "hi"}, CmdAsk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := parseArgs(tt.argv)
			if got != tt.want {
				t.Errorf("parseArgs(%v) = %v, want %v", tt.argv, got, tt.want)
			}
		})
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"--simple", "-q", "--json", "-m", "pro", "ask", "what", "is", "go"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if !args.Simple {
		t.Error("Simple not set")
	}
	if !args.Quiet {
		t.Error("Quiet not set")
	}
	if !args.JSON {
		t.Error("JSON not set")
	}
	if args.Model != "pro" {
		t.Errorf("Model = %q, want %q", args.Model, "pro")
	}
	if args.Query != "what is go" {
		t.Errorf("Query = %q, want %q", args.Query, "what is go")
	}
}

func TestParseArgs_ModelEquals(t *testing.T) {
	_, args := parseArgs([]string{"--model=flash", "ask", "hi"})
	if args.Model != "flash" {
		t.Errorf("Model = %q, want %q", args.Model, "flash")
	}
}

func TestParseArgs_FlagsAfterCommand(t *testing.T) {
	cmd, args := parseArgs([]string{"ask", "--simple", "hello", "world"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if !args.Simple {
		t.Error("Simple not set when flag follows the command")
	}
	if args.Query != "hello world" {
		t.Errorf("Query = %q, want %q", args.Query, "hello world")
	}
}

func TestParseArgs_UnknownRecordsQuery(t *testing.T) {
	_, args := parseArgs([]string{"sesions"})
	if args.Query != "sesions" {
		t.Errorf("Query = %q, want the mistyped command", args.Query)
	}
}

func TestParseArgs_AuthSubcommand(t *testing.T) {
	_, args := parseArgs([]string{"auth", "SET"})
	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q, want %q", args.Subcommand, "set")
	}
}

func TestParseArgs_ConfigSetPassesRaw(t *testing.T) {
	_, args := parseArgs([]string{"config", "set", "api.model", "pro"})
	if args.Subcommand != "set" {
		t.Fatalf("Subcommand = %q, want %q", args.Subcommand, "set")
	}
	if len(args.Raw) != 2 || args.Raw[0] != "api.model" || args.Raw[1] != "pro" {
		t.Errorf("Raw = %v, want [api.model pro]", args.Raw)
	}
}

// =============================================================================
// OPTION PARSING
// =============================================================================

func TestParseOptionArgs(t *testing.T) {
	tests := []struct {
		name        string
		input       []string
		wantOptions map[string]string
		wantSub     string
	}{
		{
			name:        "name value pairs",
			input:       []string{"--search", "docker compose"},
			wantOptions: map[string]string{"search": "docker compose"},
		},
		{
			name:        "equals form",
			input:       []string{"--format=json"},
			wantOptions: map[string]string{"format": "json"},
		},
		{
			name:        "bare option is true",
			input:       []string{"--all"},
			wantOptions: map[string]string{"all": "true"},
		},
		{
			name:        "positional becomes subcommand",
			input:       []string{"conv_42", "--format", "html"},
			wantOptions: map[string]string{"format": "html"},
			wantSub:     "conv_42",
		},
		{
			name:        "mixed order",
			input:       []string{"--out", "/tmp", "conv_7"},
			wantOptions: map[string]string{"out": "/tmp"},
			wantSub:     "conv_7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := Args{Options: make(map[string]string)}
			parseOptionArgs(&args, tt.input)

			for k, want := range tt.wantOptions {
				if got := args.Options[k]; got != want {
					t.Errorf("Options[%q] = %q, want %q", k, got, want)
				}
			}
			if args.Subcommand != tt.wantSub {
				t.Errorf("Subcommand = %q, want %q", args.Subcommand, tt.wantSub)
			}
		})
	}
}

func TestParseArgs_ServePort(t *testing.T) {
	cmd, args := parseArgs([]string{"serve", "--port", "9000"})
	if cmd != CmdServe {
		t.Fatalf("cmd = %v, want CmdServe", cmd)
	}
	if args.Options["port"] != "9000" {
		t.Errorf("Options[port] = %q, want %q", args.Options["port"], "9000")
	}
}

// =============================================================================
// TEXT WRAPPING
// =============================================================================

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		check    func(t *testing.T, out string)
	}{
		{
			name:     "short line unchanged",
			input:    "hello world",
			maxWidth: 40,
			check: func(t *testing.T, out string) {
				if out != "hello world" {
					t.Errorf("got %q", out)
				}
			},
		},
		{
			name:     "long line wraps",
			input:    strings.Repeat("word ", 20),
			maxWidth: 30,
			check: func(t *testing.T, out string) {
				for _, line := range strings.Split(out, "\n") {
					if len(line) > 30 {
						t.Errorf("line %q exceeds width", line)
					}
				}
			},
		},
		{
			name:     "preserves existing newlines",
			input:    "one\ntwo",
			maxWidth: 40,
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "one\ntwo") {
					t.Errorf("got %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, WrapText(tt.input, tt.maxWidth))
		})
	}
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

func TestRenderMarkdown_FallsBackWithoutRenderer(t *testing.T) {
	saved := markdownRenderer
	markdownRenderer = nil
	defer func() { markdownRenderer = saved }()

	if got := renderMarkdown("# title"); got != "# title" {
		t.Errorf("renderMarkdown = %q, want the input unchanged", got)
	}
}
