// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and dispatch for the gemrun CLI.
package cli

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jeranaias/gemrun-tui/internal/suggest"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdExport
	CmdAuth
	CmdConfig
	CmdServe
	CmdSuggest
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	JSON    bool
	Simple  bool
	Model   string
	Verbose bool

	// Command-specific
	Query      string
	Subcommand string

	// Raw args remaining after flag parsing
	Raw []string

	// Options holds named options (e.g. --format, --out, --port)
	Options map[string]string
}

const usageText = `gemrun %s - Gemini chat for the terminal

Usage:
  gemrun                         Start the TUI (default)
  gemrun ask "question"          Ask a single question
  gemrun chat                    Interactive REPL chat
  gemrun sessions                List saved conversations
    --search <query>             Full-text search saved conversations
    --show <id>                  Print one conversation
    --delete <id>                Delete a conversation
  gemrun export <id>             Export a conversation
    --format md|json|html|txt    Output format (default: md)
    --out <path>                 Output directory (default: .)
  gemrun auth [set|show|clear]   Manage the API key
  gemrun config [get|set|path]   Configuration
  gemrun serve [--port N]        Serve the browser chat page (loopback only)
  gemrun suggest [category]      Show suggested prompts
  gemrun version                 Show version information
  gemrun help                    Show this help

Flags:
  --simple                       Plain-language answers (ask/chat)
  --model <name>                 Model alias or ID (flash, pro, ...)
  --json                         Machine-readable output where supported
  -q, --quiet                    Suppress decorative output

Environment:
  GEMINI_API_KEY / GEMRUN_API_KEY   API key (overrides the stored one)
  GEMRUN_MODEL, GEMRUN_SIMPLE_MODE  Config overrides
  NO_COLOR                          Disable colored output
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("gemrun version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// cliCommands is the list of valid subcommands for "did you mean".
var cliCommands = []string{
	"tui", "ask", "chat", "sessions", "export", "auth",
	"config", "serve", "suggest", "version", "help",
	// Aliases
	"session", "s", "cfg", "repl",
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

// parseArgs is the testable core of Parse.
func parseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args

	case "chat", "repl":
		return CmdChat, args

	case "session", "sessions", "s":
		parseOptionArgs(&args, remaining)
		return CmdSessions, args

	case "export":
		parseOptionArgs(&args, remaining)
		return CmdExport, args

	case "auth":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdAuth, args

	case "config", "cfg":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdConfig, args

	case "serve":
		parseOptionArgs(&args, remaining)
		return CmdServe, args

	case "suggest", "suggestions":
		return CmdSuggest, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		args.Query = cmd
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	args := Args{Options: make(map[string]string)}

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--simple":
			args.Simple = true
		case "--technical":
			args.Simple = false
		case "-m", "--model":
			if i+1 < len(argv) {
				i++
				args.Model = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, args
}

// parseAskArgs joins the remaining words into the single question.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		query = append(query, arg)
	}
	args.Query = strings.Join(query, " ")
}

// parseOptionArgs parses "--name value" and "--name=value" pairs into
// Options, leaving positional words in Raw.
func parseOptionArgs(args *Args, remaining []string) {
	var positional []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]
		switch {
		case strings.HasPrefix(arg, "--") && strings.Contains(arg, "="):
			parts := strings.SplitN(strings.TrimPrefix(arg, "--"), "=", 2)
			args.Options[parts[0]] = parts[1]
		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			if i+1 < len(remaining) && !strings.HasPrefix(remaining[i+1], "--") {
				i++
				args.Options[name] = remaining[i]
			} else {
				args.Options[name] = "true"
			}
		default:
			positional = append(positional, arg)
		}
		i++
	}

	args.Raw = positional
	if len(positional) > 0 {
		args.Subcommand = positional[0]
	}
}

// HandleUnknown prints an error with a "did you mean" suggestion for a
// mistyped subcommand. Returns a non-zero exit code.
func HandleUnknown(args Args) int {
	fmt.Fprintf(os.Stderr, "%s unknown command %q\n",
		ErrorStyle.Render("[Error]"), args.Query)

	if nearest := suggest.Nearest(args.Query, cliCommands); nearest != "" {
		fmt.Fprintf(os.Stderr, "Did you mean %q?\n", nearest)
	}
	fmt.Fprintln(os.Stderr, "Run \"gemrun help\" for usage.")
	return 2
}

// logEvent writes a pipe-delimited structured log line for CLI operations
// when GEMRUN_DEBUG is set. Events look like:
// ASK | model=gemini-2.0-flash simple=false.
func logEvent(event string, kv ...string) {
	if os.Getenv("GEMRUN_DEBUG") == "" {
		return
	}
	line := event
	if len(kv) > 0 {
		line += " | " + strings.Join(kv, " ")
	}
	log.Printf("%s", line)
}
