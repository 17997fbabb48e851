// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo contains detailed information about a Gemini model.
// This is used for model selection and display in the UI.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Tier categorizes the model's capability level (Fast, Balanced, Powerful)
	Tier string `json:"tier"`

	// ContextTokens is the maximum input context window size
	ContextTokens int `json:"context_tokens"`

	// OutputTokens is the maximum response length
	OutputTokens int `json:"output_tokens"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`
}

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Models is the registry of known Gemini models, keyed by short alias.
var Models = map[string]ModelInfo{
	"flash": {
		ID:            "gemini-2.0-flash",
		Name:          "Gemini 2.0 Flash",
		Tier:          "Balanced",
		ContextTokens: 1048576,
		OutputTokens:  8192,
		Description:   "Fast general-purpose model with long context",
	},
	"flash-lite": {
		ID:            "gemini-2.0-flash-lite",
		Name:          "Gemini 2.0 Flash-Lite",
		Tier:          "Fast",
		ContextTokens: 1048576,
		OutputTokens:  8192,
		Description:   "Lowest latency and cost",
	},
	"pro": {
		ID:            "gemini-1.5-pro",
		Name:          "Gemini 1.5 Pro",
		Tier:          "Powerful",
		ContextTokens: 2097152,
		OutputTokens:  8192,
		Description:   "Strongest reasoning over very long context",
	},
	"1.5-flash": {
		ID:            "gemini-1.5-flash",
		Name:          "Gemini 1.5 Flash",
		Tier:          "Balanced",
		ContextTokens: 1048576,
		OutputTokens:  8192,
		Description:   "Previous-generation balanced model",
	},
	"flash-8b": {
		ID:            "gemini-1.5-flash-8b",
		Name:          "Gemini 1.5 Flash-8B",
		Tier:          "Fast",
		ContextTokens: 1048576,
		OutputTokens:  8192,
		Description:   "Small model for simple high-volume tasks",
	},
}

// =============================================================================
// MODEL INFO METHODS
// =============================================================================

// ContextString returns a formatted context window string.
func (m ModelInfo) ContextString() string {
	if m.ContextTokens >= 1000000 {
		return fmt.Sprintf("%.1fM tokens", float64(m.ContextTokens)/1000000)
	}
	if m.ContextTokens >= 1000 {
		return fmt.Sprintf("%dK tokens", m.ContextTokens/1000)
	}
	return fmt.Sprintf("%d tokens", m.ContextTokens)
}

// TierIcon returns an icon character for the model tier.
func (m ModelInfo) TierIcon() string {
	switch m.Tier {
	case "Fast":
		return "z"
	case "Balanced":
		return "~"
	case "Powerful":
		return "&"
	default:
		return "?"
	}
}

// =============================================================================
// MODEL LOOKUP FUNCTIONS
// =============================================================================

// GetModelInfo looks up a model by short alias or full API ID.
// Returns the ModelInfo and true if found, otherwise empty ModelInfo and false.
func GetModelInfo(nameOrID string) (ModelInfo, bool) {
	// Try direct lookup by short alias
	if info, ok := Models[nameOrID]; ok {
		return info, true
	}

	// Try lookup by API ID
	for _, info := range Models {
		if info.ID == nameOrID {
			return info, true
		}
	}

	// Try partial match on name or ID
	lower := strings.ToLower(nameOrID)
	for _, info := range Models {
		if strings.Contains(strings.ToLower(info.Name), lower) {
			return info, true
		}
		if strings.Contains(strings.ToLower(info.ID), lower) {
			return info, true
		}
	}

	return ModelInfo{}, false
}

// GetModelsByTier returns all models of a specific tier.
func GetModelsByTier(tier string) []ModelInfo {
	result := []ModelInfo{}
	lowerTier := strings.ToLower(tier)

	for _, info := range Models {
		if strings.ToLower(info.Tier) == lowerTier {
			result = append(result, info)
		}
	}

	return result
}

// ResolveModelID maps a short alias to its full API ID.
// Unknown names pass through unchanged so new API models work without a
// registry update.
func ResolveModelID(nameOrID string) string {
	if info, ok := Models[nameOrID]; ok {
		return info.ID
	}
	return nameOrID
}

// ModelAliases returns a sorted slice of all model short aliases.
func ModelAliases() []string {
	names := make([]string, 0, len(Models))
	for name := range Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
