// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest holds the built-in prompt decks for new conversations.
package suggest

import (
	"strings"
)

// Category is a named, ordered deck of starter prompts.
type Category struct {
	Name    string   `json:"name"`
	Prompts []string `json:"prompts"`
}

// decks is the built-in suggestion table, in display order.
// Read-only: accessors hand out copies so callers cannot mutate it.
var decks = []Category{
	{
		Name: "Programming",
		Prompts: []string{
			"What is recursion?",
			"Explain the difference between a thread and a process.",
			"What is Big O notation?",
			"How does garbage collection work?",
			"What is a race condition?",
			"Explain how hash tables work.",
		},
	},
	{
		Name: "Science",
		Prompts: []string{
			"Why is the sky blue?",
			"How do vaccines work?",
			"What is quantum entanglement?",
			"Why do seasons change?",
			"How do black holes form?",
			"What causes lightning?",
		},
	},
	{
		Name: "Writing",
		Prompts: []string{
			"Help me write a professional email declining a meeting.",
			"Suggest a strong opening line for a cover letter.",
			"What is the difference between active and passive voice?",
			"Give me five tips for clearer technical writing.",
			"How do I structure a persuasive essay?",
		},
	},
	{
		Name: "Everyday",
		Prompts: []string{
			"Give me a quick dinner idea with five ingredients.",
			"How do I remove a coffee stain from a shirt?",
			"Suggest a 20-minute home workout.",
			"How can I fall asleep faster?",
			"What should I pack for a weekend hiking trip?",
		},
	},
}

// =============================================================================
// DECK ACCESS
// =============================================================================

// Categories returns all decks in display order.
func Categories() []Category {
	out := make([]Category, len(decks))
	for i, c := range decks {
		out[i] = c.clone()
	}
	return out
}

// Names returns the category names in display order.
func Names() []string {
	names := make([]string, len(decks))
	for i, c := range decks {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a deck by name, case-insensitively.
func Lookup(name string) (Category, bool) {
	for _, c := range decks {
		if strings.EqualFold(c.Name, name) {
			return c.clone(), true
		}
	}
	return Category{}, false
}

// Prompts returns the prompts for a category, or nil if unknown.
func Prompts(name string) []string {
	c, ok := Lookup(name)
	if !ok {
		return nil
	}
	return c.Prompts
}

func (c Category) clone() Category {
	prompts := make([]string, len(c.Prompts))
	copy(prompts, c.Prompts)
	return Category{Name: c.Name, Prompts: prompts}
}

// =============================================================================
// TYPO SUGGESTION
// =============================================================================

// SuggestCategory returns the category name closest to a mistyped lookup.
// Returns empty string if nothing is close enough.
func SuggestCategory(input string) string {
	return Nearest(input, Names())
}

// Nearest returns the candidate closest to the input by edit distance.
// Returns empty string when no candidate is within the distance budget,
// or when the input matches a candidate exactly (nothing to suggest).
// Uses Levenshtein distance with a threshold based on input length.
func Nearest(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))

	// Don't suggest for very short inputs (likely intentional)
	if len(input) < 2 {
		return ""
	}

	bestMatch := ""
	bestDistance := -1

	// Calculate maximum acceptable distance based on input length
	// For very short inputs (<=3 chars): allow 1 edit
	// For short inputs (4-8 chars): allow 2 edits (catches transpositions)
	// For longer inputs: allow 3 edits
	maxDistance := 1
	if len(input) >= 4 {
		maxDistance = 2
	}
	if len(input) > 8 {
		maxDistance = 3
	}

	for _, candidate := range candidates {
		distance := levenshteinDistance(input, strings.ToLower(candidate))

		// Exact match means the caller should have found it already
		if distance == 0 {
			return ""
		}

		if distance <= maxDistance && (bestDistance == -1 || distance < bestDistance) {
			bestDistance = distance
			bestMatch = candidate
		}
	}

	return bestMatch
}

// levenshteinDistance calculates the edit distance between two strings.
// This is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to change one string into the other.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	rows := len(s1) + 1
	cols := len(s2) + 1

	// Use two rows instead of full matrix for memory efficiency
	prev := make([]int, cols)
	curr := make([]int, cols)

	for j := 0; j < cols; j++ {
		prev[j] = j
	}

	for i := 1; i < rows; i++ {
		curr[0] = i

		for j := 1; j < cols; j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}

			// Minimum of: delete, insert, substitute
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[cols-1]
}

// min3 returns the minimum of three integers.
func min3(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
