// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - saved conversation management for the gemrun CLI.
//
// Handles "gemrun sessions" which lists, searches, shows, and deletes
// conversations in the on-disk archive. No API key is needed here; the
// archive is read directly.
//
// Command: sessions
// Short:   Manage saved conversations
// Aliases: session, s
//
// Examples:
//   gemrun sessions                      List saved conversations
//   gemrun sessions --search "docker"    Full-text search
//   gemrun sessions --show conv_123      Print one conversation
//   gemrun sessions --delete conv_123    Delete a conversation
//   gemrun sessions --json               List as JSON
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/gemrun-tui/internal/index"
	"github.com/jeranaias/gemrun-tui/internal/model"
	"github.com/jeranaias/gemrun-tui/internal/store"
)

// openArchive opens the conversation archive without requiring an API key.
func openArchive() (*store.Archive, error) {
	cfg := loadConfig()
	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, fmt.Errorf("could not resolve storage dir: %w", err)
	}
	return store.NewArchiveWithDir(filepath.Join(dir, "conversations"))
}

// HandleSessions handles the "sessions" command and its options.
func HandleSessions(args Args) error {
	switch {
	case args.Options["search"] != "":
		return searchSessions(args.Options["search"], args.JSON)
	case args.Options["show"] != "":
		return showSession(args.Options["show"])
	case args.Options["delete"] != "":
		return deleteSession(args.Options["delete"], args.Quiet)
	default:
		return listSessions(args.JSON)
	}
}

// listSessions prints all saved conversations, newest first.
func listSessions(asJSON bool) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	metas, err := archive.List()
	if err != nil {
		return fmt.Errorf("could not list conversations: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(metas)
	}

	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No saved conversations."))
		return nil
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Saved conversations (%d)", len(metas))))
	for _, meta := range metas {
		printSessionRow(meta)
	}
	return nil
}

// printSessionRow prints one conversation as a two-line entry.
func printSessionRow(meta model.ConversationMeta) {
	fmt.Printf("%s  %s  %s\n",
		ValueStyle.Render(meta.ID),
		DimStyle.Render(meta.Date),
		meta.Title)
	if meta.Preview != "" {
		fmt.Printf("    %s\n", DimStyle.Render(meta.Preview))
	}
}

// searchSessions runs a full-text search over the archive. The SQLite FTS
// index is preferred; when it is unavailable the archive is scanned
// directly.
func searchSessions(query string, asJSON bool) error {
	cfg := loadConfig()

	idx, err := openIndex(cfg)
	if err == nil {
		defer idx.Close()
		matches, serr := idx.Search(query, index.DefaultMaxResults)
		if serr == nil {
			return printSearchMatches(query, matches, asJSON)
		}
		if !errors.Is(serr, index.ErrNotIndexed) {
			return fmt.Errorf("search failed: %w", serr)
		}
	}

	// Fallback: linear scan over the archive.
	archive, err := openArchive()
	if err != nil {
		return err
	}
	metas, err := archive.SearchMessages(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(metas)
	}
	if len(metas) == 0 {
		fmt.Printf("No matches for %q.\n", query)
		return nil
	}
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Matches for %q (%d)", query, len(metas))))
	for _, meta := range metas {
		printSessionRow(meta)
	}
	return nil
}

// printSearchMatches prints FTS results with snippets.
func printSearchMatches(query string, matches []index.Match, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	if len(matches) == 0 {
		fmt.Printf("No matches for %q.\n", query)
		return nil
	}
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Matches for %q (%d)", query, len(matches))))
	for _, match := range matches {
		fmt.Printf("%s  %s  %s\n",
			ValueStyle.Render(match.ConversationID),
			DimStyle.Render(match.Date),
			match.Title)
		if match.Snippet != "" {
			fmt.Printf("    %s\n", DimStyle.Render(match.Snippet))
		}
	}
	return nil
}

// showSession prints a full conversation transcript.
func showSession(id string) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	conv, err := archive.Load(id)
	if err != nil {
		return fmt.Errorf("could not load conversation %q: %w", id, err)
	}

	fmt.Println(TitleStyle.Render(conv.DisplayTitle()))
	fmt.Printf("%s %s\n", LabelStyle.Render("ID:"), ValueStyle.Render(conv.ID))
	fmt.Printf("%s %s\n", LabelStyle.Render("Date:"), ValueStyle.Render(conv.Date))
	fmt.Printf("%s %d\n", LabelStyle.Render("Messages:"), conv.MessageCount())
	fmt.Println()

	for _, msg := range conv.Messages {
		label := msg.Role.DisplayName()
		if msg.Failed {
			label += " (failed)"
		}
		fmt.Println(PromptStyle.Render(label + ":"))
		if msg.Role == model.RoleAssistant && !msg.Failed {
			displayResponse(msg.Content)
		} else {
			fmt.Println(msg.Content)
		}
		fmt.Println()
	}
	return nil
}

// deleteSession removes a conversation from the archive.
func deleteSession(id string, quiet bool) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	if err := archive.Delete(id); err != nil {
		return fmt.Errorf("could not delete conversation %q: %w", id, err)
	}
	logEvent("SESSION_DELETE", "id="+id)
	if !quiet {
		fmt.Printf("%s deleted %s\n", SuccessStyle.Render("[OK]"), id)
	}
	return nil
}
