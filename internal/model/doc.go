// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat transcripts, messages, and known Gemini models.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, timestamp, and failure flag
//   - ModelInfo: Information about a Gemini model (ID, tier, context window)
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
// Create a new conversation:
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("What is recursion?")
//
// Titles derive from the first user message and never change afterwards:
//
//	conv.Title // "What is recursion?"
package model
