// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest holds the built-in prompt decks for new conversations.
//
// The decks give first-time users something to ask: four categories of
// starter prompts shown in the TUI suggestion palette, the `gemrun suggest`
// command, and the web UI. The table is static and read-only; accessors
// return copies.
//
// # Key Types
//
//   - Category: A named, ordered deck of starter prompts
//
// # Usage
//
//	for _, cat := range suggest.Categories() {
//		fmt.Println(cat.Name)
//	}
//
//	prompts := suggest.Prompts("Programming")
//
//	// Typo correction for lookups
//	if fix := suggest.SuggestCategory("Programing"); fix != "" {
//		fmt.Printf("Did you mean %q?\n", fix)
//	}
package suggest
