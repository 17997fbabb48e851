// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the Google Gemini API client for chat completions.
//
// completer.go adapts the wire-level client to transcript conversations so
// the transcript store never touches Gemini wire types.
package gemini

import (
	"context"

	"github.com/jeranaias/gemrun-tui/internal/model"
)

// Completer answers transcript conversations using a Gemini client.
//
// It satisfies the transcript store's completion seam: the store hands over
// the active conversation and the explain mode, and receives plain reply
// text or an error.
type Completer struct {
	client *Client
}

// NewCompleter creates a Completer over the given client.
func NewCompleter(client *Client) *Completer {
	return &Completer{client: client}
}

// Client returns the underlying Gemini client.
func (c *Completer) Client() *Client {
	return c.client
}

// Complete produces the assistant reply for the conversation's newest user
// turn. Prior turns travel as chat history so the model sees the full
// exchange; the newest user turn carries the explain-mode framing.
func (c *Completer) Complete(ctx context.Context, conv *model.Conversation, simple bool) (string, error) {
	resp, err := c.client.Chat(ctx, ContentsFromConversation(conv, simple))
	if err != nil {
		return "", err
	}
	return textFromResponse(resp)
}

// ContentsFromConversation converts transcript messages to wire turns.
//
// Failed assistant entries are error placeholders, not model output, so they
// are skipped. The newest user message gets the explain-mode framing prefix;
// earlier turns stay as the user wrote them.
func ContentsFromConversation(conv *model.Conversation, simple bool) []Content {
	msgs := conv.Messages

	lastUser := -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			lastUser = i
			break
		}
	}

	contents := make([]Content, 0, len(msgs))
	for i, msg := range msgs {
		if msg.Failed {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			text := msg.Content
			if i == lastUser {
				text = FramePrompt(text, simple)
			}
			contents = append(contents, NewUserContent(text))
		case model.RoleAssistant:
			contents = append(contents, NewModelContent(msg.Content))
		}
	}
	return contents
}
