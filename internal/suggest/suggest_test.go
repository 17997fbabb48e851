// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest holds the built-in prompt decks for new conversations.
package suggest

import (
	"testing"
)

func TestCategories_Order(t *testing.T) {
	want := []string{"Programming", "Science", "Writing", "Everyday"}

	cats := Categories()
	if len(cats) != len(want) {
		t.Fatalf("got %d categories, want %d", len(cats), len(want))
	}
	for i, name := range want {
		if cats[i].Name != name {
			t.Errorf("category %d = %q, want %q", i, cats[i].Name, name)
		}
		if len(cats[i].Prompts) == 0 {
			t.Errorf("category %q has no prompts", name)
		}
	}
}

func TestProgrammingDeck_HasRecursionPrompt(t *testing.T) {
	prompts := Prompts("Programming")

	found := false
	for _, p := range prompts {
		if p == "What is recursion?" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Programming deck missing \"What is recursion?\"")
	}
}

func TestCategories_ReturnsCopies(t *testing.T) {
	first := Categories()
	first[0].Name = "Tampered"
	first[0].Prompts[0] = "tampered prompt"

	fresh := Categories()
	if fresh[0].Name != "Programming" {
		t.Error("deck name mutated through returned slice")
	}
	if fresh[0].Prompts[0] != "What is recursion?" {
		t.Error("deck prompts mutated through returned slice")
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"programming", "PROGRAMMING", "Programming", "pRoGrAmMiNg"} {
		cat, ok := Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) not found", name)
			continue
		}
		if cat.Name != "Programming" {
			t.Errorf("Lookup(%q).Name = %q", name, cat.Name)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, ok := Lookup("Cooking"); ok {
		t.Error("Lookup should miss for unknown category")
	}
	if prompts := Prompts("Cooking"); prompts != nil {
		t.Errorf("Prompts for unknown category = %v, want nil", prompts)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 4 || names[0] != "Programming" || names[3] != "Everyday" {
		t.Errorf("Names() = %v", names)
	}
}

func TestSuggestCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Programing", "Programming"},  // dropped letter
		{"progamming", "Programming"},  // dropped letter, lowercase
		{"sceince", "Science"},         // transposition
		{"writng", "Writing"},          // dropped letter
		{"evryday", "Everyday"},        // dropped letter
		{"science", ""},                // exact match, nothing to suggest
		{"x", ""},                      // too short
		{"zzzzzz", ""},                 // nowhere close
		{"", ""},                       // empty
	}

	for _, tt := range tests {
		if got := SuggestCategory(tt.input); got != tt.want {
			t.Errorf("SuggestCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNearest(t *testing.T) {
	candidates := []string{"help", "sessions", "export"}

	tests := []struct {
		input string
		want  string
	}{
		{"hepl", "help"},
		{"sesions", "sessions"},
		{"exprot", "export"},
		{"help", ""}, // exact
		{"q", ""},    // too short
	}
	for _, tt := range tests {
		if got := Nearest(tt.input, candidates); got != tt.want {
			t.Errorf("Nearest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}
