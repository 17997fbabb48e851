// gemrun - a Gemini chat client for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/auth"
	"github.com/jeranaias/gemrun-tui/internal/cli"
	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/gemini"
	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/server"
	"github.com/jeranaias/gemrun-tui/internal/session"
	"github.com/jeranaias/gemrun-tui/internal/store"
	"github.com/jeranaias/gemrun-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with the packages that report it
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
	server.Version = Version
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))
	case cli.CmdExport:
		exitOnError(cli.HandleExport(args))
	case cli.CmdAuth:
		exitOnError(cli.HandleAuth(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdServe:
		exitOnError(cli.HandleServe(args))
	case cli.CmdSuggest:
		exitOnError(cli.HandleSuggest(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	case cli.CmdUnknown:
		os.Exit(cli.HandleUnknown(args))
	}
}

// exitOnError prints a styled error and exits non-zero.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("[Error]"), err)
	os.Exit(1)
}

// runTUI wires the transcript store, session manager, and search index
// into the Bubble Tea program. A missing API key is not fatal here: the
// TUI opens anyway and every completion surfaces the configuration error
// as a toast with the fix spelled out.
func runTUI(args cli.Args) {
	// Debug logging goes to a file; stdout belongs to the TUI.
	if os.Getenv("GEMRUN_DEBUG") != "" {
		f, err := tea.LogToFile("gemrun-debug.log", "gemrun")
		if err == nil {
			defer f.Close()
		}
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
	}
	if args.Model != "" {
		cfg.API.Model = args.Model
	}
	if args.Simple {
		cfg.Chat.SimpleMode = true
	}

	var client *gemini.Client
	if key, kerr := auth.NewStore().Get(); kerr == nil {
		client = gemini.NewClient(key).
			WithModel(model.ResolveModelID(cfg.API.Model)).
			WithMaxRetries(cfg.API.MaxRetries)
		if cfg.API.BaseURL != "" {
			client = client.WithBaseURL(cfg.API.BaseURL)
		}
		if cfg.API.TimeoutSecs > 0 {
			client = client.WithTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second)
		}
	} else {
		// Unconfigured client: completions fail with ErrNotConfigured,
		// which the chat model renders with setup instructions.
		client = gemini.NewClient("").
			WithModel(model.ResolveModelID(cfg.API.Model))
	}

	st := buildTranscriptStore(cfg, client)
	sess := buildSessionManager(cfg, st)
	idx := openSearchIndex(cfg)
	if idx != nil {
		defer idx.Close()
	}

	m := chat.New(cfg, st, sess, idx)
	m.SetVersion(Version)
	m.SetClient(client)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildTranscriptStore opens the archive and restores conversations.
// Archive failures degrade to a memory-only store rather than blocking
// the TUI.
func buildTranscriptStore(cfg *config.Config, client *gemini.Client) *store.TranscriptStore {
	var archive *store.Archive
	if dir, err := cfg.StorageDir(); err == nil {
		if a, aerr := store.NewArchiveWithDir(filepath.Join(dir, "conversations")); aerr == nil {
			archive = a
			if cfg.Chat.MaxConversations > 0 {
				archive.MaxConversations = cfg.Chat.MaxConversations
			}
		}
	}

	st := store.NewTranscriptStore(gemini.NewCompleter(client), archive)
	st.SetFailureText(gemini.FailureText)
	st.SetDefaultSimpleMode(cfg.Chat.SimpleMode)
	if cfg.API.TimeoutSecs > 0 {
		st.SetTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second)
	}
	return st
}

// buildSessionManager configures idle tracking and autosave from config.
func buildSessionManager(cfg *config.Config, st *store.TranscriptStore) *session.Manager {
	sessCfg := session.DefaultConfig()
	if cfg.Chat.AutosaveSecs > 0 {
		sessCfg.AutoSaveInterval = time.Duration(cfg.Chat.AutosaveSecs) * time.Second
	}
	sess := session.NewManager(sessCfg)
	sess.SetAutoSaveCallback(func() error {
		// Persistence already happens on every turn; autosave is a
		// safety net for mid-turn exits.
		return nil
	})
	return sess
}

// openSearchIndex opens the FTS index and starts the archive watcher so
// externally changed files get reindexed. Search degrades to unavailable
// on any failure.
func openSearchIndex(cfg *config.Config) *index.ConversationIndex {
	dir, err := cfg.StorageDir()
	if err != nil {
		return nil
	}
	idx, err := index.Open(index.DefaultConfig(filepath.Join(dir, "conversations")))
	if err != nil {
		return nil
	}
	// Queries return ErrNotIndexed until a rebuild has run.
	if err := idx.Rebuild(context.Background()); err != nil {
		idx.Close()
		return nil
	}

	// Watcher loss only stops live reindexing; search keeps working on
	// the last built index.
	if watcher, werr := index.NewArchiveWatcher(idx, 500*time.Millisecond); werr == nil {
		go func() { _ = watcher.Watch() }()
	}
	return idx
}
