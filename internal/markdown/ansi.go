// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemrun-tui/internal/ui/styles"
)

// =============================================================================
// ANSI RENDERER
// =============================================================================

// FormatANSI renders raw message text for the terminal.
//
// Same parse as Format, different output: code blocks get chroma syntax
// highlighting with line numbers inside a bordered box, inline code and bold
// get lipgloss styling, bullets render with a dot marker. width bounds the
// code box; everything else wraps in the caller's viewport.
func FormatANSI(text string, width int) string {
	var parts []string

	for _, block := range Parse(text) {
		switch b := block.(type) {
		case CodeBlock:
			parts = append(parts, renderCodeBlockANSI(b, width))
		case List:
			bullet := lipgloss.NewStyle().Foreground(styles.Cyan).Render("•")
			var lines []string
			for _, item := range b.Items {
				lines = append(lines, "  "+bullet+" "+renderInlineANSI(item))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case Paragraph:
			var lines []string
			for _, line := range strings.Split(b.Text, "\n") {
				lines = append(lines, renderInlineANSI(line))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}

	return strings.Join(parts, "\n\n")
}

// CodeBlocks returns just the fenced blocks of a message, in order. The chat
// view uses this for the indexed copy shortcuts; the returned Code fields are
// the exact copy payloads.
func CodeBlocks(text string) []CodeBlock {
	var out []CodeBlock
	for _, block := range Parse(text) {
		if cb, ok := block.(CodeBlock); ok {
			out = append(out, cb)
		}
	}
	return out
}

// renderCodeBlockANSI renders one fenced block with highlighting and styling.
// USABILITY: Syntax highlighting for better code readability
func renderCodeBlockANSI(b CodeBlock, width int) string {
	language := b.Lang
	if language == "" {
		language = detectLanguage(b.Code)
	}

	highlighted := highlightCode(b.Code, language)
	lines := strings.Split(highlighted, "\n")

	lineNumStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	var renderedLines []string
	for i, line := range lines {
		lineNum := lineNumStyle.Render(strconv.Itoa(i + 1))
		renderedLines = append(renderedLines, lineNum+line)
	}
	codeContent := strings.Join(renderedLines, "\n")

	// Header badge shows the fence tag, or the fallback label "code".
	label := b.Lang
	if label == "" {
		label = "code"
	}
	badge := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Background(styles.OverlayDim).
		Padding(0, 1).
		Bold(true).
		Render(label)

	maxWidth := width - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(1, 2).
		MaxWidth(maxWidth).
		Render(badge + "\n" + codeContent)
}

// renderInlineANSI applies inline code and bold styling to a text segment.
// Same span rules as the HTML renderer: first closing backtick wins, code
// contents are never re-scanned, an unclosed backtick stays literal.
func renderInlineANSI(text string) string {
	codeStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.Cyan).
		Padding(0, 1)

	var sb strings.Builder
	rest := text
	for {
		i := strings.IndexByte(rest, '`')
		if i < 0 {
			sb.WriteString(renderBoldANSI(rest))
			break
		}
		j := strings.IndexByte(rest[i+1:], '`')
		if j < 0 {
			sb.WriteString(renderBoldANSI(rest))
			break
		}

		sb.WriteString(renderBoldANSI(rest[:i]))
		sb.WriteString(codeStyle.Render(rest[i+1 : i+1+j]))
		rest = rest[i+1+j+1:]
	}

	return sb.String()
}

// renderBoldANSI replaces non-greedy **span** pairs with bold styling.
func renderBoldANSI(text string) string {
	boldStyle := lipgloss.NewStyle().Bold(true)

	var sb strings.Builder
	rest := text
	for {
		i := strings.Index(rest, "**")
		if i < 0 || i+3 > len(rest) {
			sb.WriteString(rest)
			break
		}
		k := strings.Index(rest[i+3:], "**")
		if k < 0 {
			sb.WriteString(rest)
			break
		}

		sb.WriteString(rest[:i])
		sb.WriteString(boldStyle.Render(rest[i+2 : i+3+k]))
		rest = rest[i+3+k+2:]
	}

	return sb.String()
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting using the chroma library.
// Returns the code unchanged when highlighting fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// detectLanguage attempts to detect the programming language of code.
func detectLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer != nil {
		return lexer.Config().Name
	}
	return ""
}
