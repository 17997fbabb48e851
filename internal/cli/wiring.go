// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// wiring.go - shared dependency construction for CLI commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jeranaias/gemrun-tui/internal/auth"
	"github.com/jeranaias/gemrun-tui/internal/config"
	"github.com/jeranaias/gemrun-tui/internal/gemini"
	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/store"
)

// buildClient constructs a Gemini client from config and the credential
// store. The environment key wins over the stored one.
func buildClient(cfg *config.Config, modelOverride string) (*gemini.Client, error) {
	key, err := auth.NewStore().Get()
	if err != nil {
		if errors.Is(err, auth.ErrNoKey) {
			return nil, errors.New("no API key configured; run \"gemrun auth set\" or export GEMINI_API_KEY")
		}
		return nil, fmt.Errorf("could not read API key: %w", err)
	}

	modelID := model.ResolveModelID(cfg.API.Model)
	if modelOverride != "" {
		modelID = model.ResolveModelID(modelOverride)
	}

	client := gemini.NewClient(key).
		WithModel(modelID).
		WithMaxRetries(cfg.API.MaxRetries)
	if cfg.API.BaseURL != "" {
		client = client.WithBaseURL(cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs > 0 {
		client = client.WithTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second)
	}
	return client, nil
}

// buildStore constructs a transcript store backed by the on-disk archive.
func buildStore(cfg *config.Config, client *gemini.Client) (*store.TranscriptStore, error) {
	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, fmt.Errorf("could not resolve storage dir: %w", err)
	}

	archive, err := store.NewArchiveWithDir(filepath.Join(dir, "conversations"))
	if err != nil {
		return nil, fmt.Errorf("could not open conversation archive: %w", err)
	}
	if cfg.Chat.MaxConversations > 0 {
		archive.MaxConversations = cfg.Chat.MaxConversations
	}

	st := store.NewTranscriptStore(gemini.NewCompleter(client), archive)
	st.SetFailureText(gemini.FailureText)
	st.SetDefaultSimpleMode(cfg.Chat.SimpleMode)
	if cfg.API.TimeoutSecs > 0 {
		st.SetTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second)
	}
	return st, nil
}

// openIndex opens the FTS index over the archive directory. A nil index
// with nil error means search is unavailable but everything else works.
func openIndex(cfg *config.Config) (*index.ConversationIndex, error) {
	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, err
	}
	idxCfg := index.DefaultConfig(filepath.Join(dir, "conversations"))
	idx, err := index.Open(idxCfg)
	if err != nil {
		return nil, err
	}
	// Queries return ErrNotIndexed until a rebuild has run, so bring the
	// index up to date with the archive before handing it out.
	if err := idx.Rebuild(context.Background()); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// loadConfig loads config with env overrides applied, falling back to
// defaults when no config file exists.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
	}
	return cfg
}
