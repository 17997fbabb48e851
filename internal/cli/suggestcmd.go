// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggestcmd.go - suggestion deck command handler for the gemrun CLI.
//
// Handles "gemrun suggest" which prints the built-in starter prompt decks.
//
// Command: suggest [category]
// Short:   Show suggested prompts
//
// Examples:
//   gemrun suggest               All decks
//   gemrun suggest science       One deck (case-insensitive)
//   gemrun suggest --json        Machine-readable output
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/gemrun-tui/internal/suggest"
)

// HandleSuggest handles the "suggest" command.
func HandleSuggest(args Args) error {
	if len(args.Raw) > 0 {
		return suggestOne(args.Raw[0], args.JSON)
	}
	return suggestAll(args.JSON)
}

// suggestAll prints every deck.
func suggestAll(asJSON bool) error {
	categories := suggest.Categories()

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(categories)
	}

	for i, category := range categories {
		if i > 0 {
			fmt.Println()
		}
		printDeck(category)
	}
	return nil
}

// suggestOne prints a single deck, with a "did you mean" hint for typos.
func suggestOne(name string, asJSON bool) error {
	category, ok := suggest.Lookup(name)
	if !ok {
		msg := fmt.Sprintf("unknown category %q (have: %s)",
			name, strings.Join(suggest.Names(), ", "))
		if nearest := suggest.SuggestCategory(name); nearest != "" {
			msg += fmt.Sprintf("; did you mean %q?", nearest)
		}
		return fmt.Errorf("%s", msg)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(category)
	}

	printDeck(category)
	return nil
}

// printDeck prints one deck as a title and numbered prompts.
func printDeck(category suggest.Category) {
	fmt.Println(TitleStyle.Render(category.Name))
	for i, prompt := range category.Prompts {
		fmt.Printf("  %s %s\n", DimStyle.Render(fmt.Sprintf("%d.", i+1)), prompt)
	}
}
