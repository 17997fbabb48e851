// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strconv"
	"time"

	"github.com/jeranaias/gemrun-tui/internal/util"
)

// MaxMessages is the maximum number of messages to keep in conversation history.
// When exceeded, the oldest messages are pruned to prevent unbounded memory
// growth in long-lived sessions. Relative order is always preserved.
const MaxMessages = 1000

// TitleMaxRunes is the rune budget for derived conversation titles.
// Longer first messages are cut at this length and marked with an ellipsis.
const TitleMaxRunes = 30

// titleEllipsis marks a truncated title. A single rune, appended after the
// first TitleMaxRunes runes of the source text.
const titleEllipsis = "…"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat transcript with metadata.
//
// ID, Title, and Date are fixed once set: the ID at creation, the Title and
// Date when the first user message arrives. Messages are append-only and
// never re-sorted.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // Creation date, ISO yyyy-mm-dd
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages
	Messages []*Message `json:"messages"`

	// SimpleMode records the explanation framing this transcript was held
	// under: true for beginner framing, false for technical depth.
	SimpleMode bool `json:"simple_mode,omitempty"`
}

// NewConversation creates a new conversation with a timestamp-derived ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(now),
		Date:      now.Format("2006-01-02"),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// generateConversationID creates a conversation ID from the creation time.
func generateConversationID(t time.Time) string {
	return "conv_" + strconv.FormatInt(t.UnixNano(), 10)
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle derives a conversation title from message text.
//
// Interior whitespace (including newlines) collapses to single spaces first.
// Text at or under TitleMaxRunes runes is returned unchanged; longer text is
// cut to the first TitleMaxRunes runes with an ellipsis appended.
// UNICODE: Counts runes, not bytes, so multibyte text is never split.
func DeriveTitle(text string) string {
	collapsed := util.CollapseSpace(text)
	runes := []rune(collapsed)
	if len(runes) <= TitleMaxRunes {
		return collapsed
	}
	return string(runes[:TitleMaxRunes]) + titleEllipsis
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
	c.pruneOldMessages()
}

// AddUserMessage creates and appends a user message.
// The first user message fixes the conversation title.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends an assistant message.
func (c *Conversation) AddAssistantMessage(content string) *Message {
	msg := NewAssistantMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddFailedMessage creates and appends a failed assistant-role entry.
// The transcript keeps the error visible instead of dropping the turn.
func (c *Conversation) AddFailedMessage(content string) *Message {
	msg := NewFailedMessage(content)
	c.AddMessage(msg)
	return msg
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// FirstUserMessage returns the earliest user message, or nil if none.
func (c *Conversation) FirstUserMessage() *Message {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			return msg
		}
	}
	return nil
}

// LastUserMessage returns the most recent user message, or nil if none.
func (c *Conversation) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

// LastAssistantMessage returns the most recent assistant message, or nil if
// none. Failed entries count: they hold the assistant slot for their turn.
func (c *Conversation) LastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// MessageByID returns a message by its ID, or nil if not found.
func (c *Conversation) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// EstimateTokens estimates the total token count of the transcript.
func (c *Conversation) EstimateTokens() int {
	total := 0
	for _, msg := range c.Messages {
		total += msg.EstimateTokens()
		// Overhead for message structure (~4 tokens per message)
		total += 4
	}
	return total
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle derives the title from the first user message if not yet set.
// Once set, the title never changes.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}
	if first := c.FirstUserMessage(); first != nil {
		c.Title = DeriveTitle(first.Content)
	}
}

// DisplayTitle returns the conversation title or a default.
func (c *Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}

// =============================================================================
// SERIALIZATION HELPERS
// =============================================================================

// Preview returns a short preview of the conversation.
func (c *Conversation) Preview() string {
	if len(c.Messages) == 0 {
		return "Empty conversation"
	}

	msg := c.LastUserMessage()
	if msg == nil {
		msg = c.Messages[0]
	}
	return msg.Preview(100)
}

// Meta returns lightweight metadata for listing.
func (c *Conversation) Meta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Title:        c.DisplayTitle(),
		Date:         c.Date,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Preview:      c.Preview(),
	}
}

// ConversationMeta holds lightweight metadata for listing.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Preview      string    `json:"preview"`
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:         c.ID,
		Title:      c.Title,
		Date:       c.Date,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		SimpleMode: c.SimpleMode,
		Messages:   make([]*Message, len(c.Messages)),
	}

	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}

	return clone
}

// pruneOldMessages drops the oldest messages once the transcript exceeds
// MaxMessages. RELIABILITY: Bounds memory for very long sessions.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	c.Messages = c.Messages[len(c.Messages)-MaxMessages:]
}
