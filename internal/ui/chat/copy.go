// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strconv"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemrun-tui/internal/commands"
	"github.com/jeranaias/gemrun-tui/internal/markdown"
	"github.com/jeranaias/gemrun-tui/internal/model"
)

// =============================================================================
// CLIPBOARD COPY
// =============================================================================

var (
	errNoReply     = errors.New("no reply to copy yet")
	errNoCodeBlock = errors.New("the last reply has no code blocks")
)

// copyCmd copies the last reply to the system clipboard. Block 0 copies the
// whole reply; block N copies the Nth fenced code block (1-based).
func (m *Model) copyCmd(block int) tea.Cmd {
	conv := m.store.Active()
	return func() tea.Msg {
		text, label, err := replyClipText(conv, block)
		if err != nil {
			return commands.CopyCompleteMsg{Error: err}
		}
		if err := clipboard.WriteAll(text); err != nil {
			return commands.CopyCompleteMsg{Error: err}
		}
		return commands.CopyCompleteMsg{Label: label}
	}
}

// replyClipText selects the text to copy from the last assistant reply.
func replyClipText(conv *model.Conversation, block int) (text, label string, err error) {
	if conv == nil {
		return "", "", errNoReply
	}
	reply := conv.LastAssistantMessage()
	if reply == nil || reply.Failed {
		return "", "", errNoReply
	}

	if block == 0 {
		return reply.Content, "reply", nil
	}

	blocks := markdown.CodeBlocks(reply.Content)
	if len(blocks) == 0 {
		return "", "", errNoCodeBlock
	}
	if block > len(blocks) {
		return "", "", errors.New("the last reply has only " +
			strconv.Itoa(len(blocks)) + " code blocks")
	}
	return blocks[block-1].Code, "code block " + strconv.Itoa(block), nil
}
