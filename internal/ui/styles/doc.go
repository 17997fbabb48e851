// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the gemrun TUI.

This package defines the color palette and the Theme of pre-built Lip
Gloss styles used throughout the application. All colors use
AdaptiveColor for automatic light/dark terminal detection.

# Color System (colors.go)

  - Purple - primary accent, assistant messages, selections
  - Cyan - brand color, commands, user highlights
  - Emerald - success states, simple-mode indicator
  - Amber - warnings, technical-mode indicator
  - Rose - errors and failed replies

Surface and text tokens (Surface, SurfaceDim, Overlay, TextPrimary,
TextSecondary, TextMuted) cover backgrounds, borders, and typography.

# Theme (theme.go)

Theme bundles every styled component: message bubbles, the input area,
status bar, sidebar, suggestion palette, welcome screen, toasts. Create
one with NewTheme, which probes the terminal via termenv:

	theme := styles.NewTheme()
	fmt.Println(theme.UserBubble.Render("hello"))
*/
package styles
