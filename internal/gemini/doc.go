// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the Google Gemini API client for chat completions.
//
// The Gemini API exposes chat-tuned models through a single generateContent
// endpoint. This package implements secure communication with that endpoint
// including retry logic, response validation, and explain-mode framing.
//
// # Key Types
//
//   - Client: HTTP client for the Gemini API with TLS and retry support
//   - Content: A single conversation turn in Gemini wire format
//   - GenerateRequest: Request structure for content generation
//   - GenerateResponse: Response structure with candidates and safety feedback
//   - Completer: Adapter that answers transcript conversations
//
// # Usage
//
// Create a client and send a chat request:
//
//	client := gemini.NewClient(apiKey)
//	resp, err := client.Chat(ctx, []gemini.Content{
//	    gemini.NewUserContent("What is recursion?"),
//	})
//
// Or generate a one-shot answer with explain-mode framing applied:
//
//	answer, err := client.GenerateWithMode(ctx, "What is recursion?", false)
//
// # Security
//
// This package implements secure logging and validation. API keys are never
// logged, all requests use TLS 1.2+, and response bodies are size-limited.
package gemini
