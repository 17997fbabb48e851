// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the gemrun TUI.

This package contains a collection of styled, interactive components built on
top of the Bubble Tea and Lip Gloss libraries.

# Input Components

InputArea (input.go) - Question input with character counter.
CompletionPopup (completion.go) - Tab completion popup for slash commands.
CommandPalette (palette.go) - Fuzzy-searchable command palette (Ctrl+P).

# Display Components

Header (header.go) - Title bar with model name and answer mode badge.
StatusBar (statusbar.go) - Bottom bar with mode, message count, and shortcuts.
MessageBubble (message.go) - Chat bubbles; Gemini replies render markdown.
ChatViewport (viewport.go) - Scrollable transcript with auto-scroll.
Sidebar (sidebar.go) - Conversation switcher (Ctrl+O).
SuggestionPicker (suggestions.go) - Starter-question decks by category.

# Progress and Feedback

Spinner (spinner.go) - ASCII thinking spinner with elapsed time.
Toast / ToastManager (toast.go) - Non-blocking corner notifications.
Welcome (welcome.go) - Empty-conversation welcome screen.

# Theme Integration

All components accept a *styles.Theme for consistent styling:

	theme := styles.NewTheme()
	header := components.NewHeader(theme)
	header.SetWidth(80)
	header.SetModel("gemini-2.0-flash")
	view := header.View()

Interactive components follow the Bubble Tea pattern: Update consumes
tea.Msg values and user actions surface as typed messages such as
ExecuteCommandMsg, SidebarSelectMsg, and SuggestionChosenMsg.
*/
package components
