// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"html"
	"strings"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

// Format renders raw message text as an HTML fragment.
//
// SECURITY: Every piece of message text is HTML-escaped on the way out, so
// raw HTML in user or assistant text never reaches the page as markup.
//
// Code blocks render as a container with a header row (language label, or
// the literal fallback "code") and a copy button. The button's data-copy
// attribute carries the exact trimmed code text, attribute-escaped on the
// wire and byte-identical after decoding; that payload is what the page
// script hands to the clipboard.
func Format(text string) string {
	var sb strings.Builder

	for _, block := range Parse(text) {
		switch b := block.(type) {
		case CodeBlock:
			writeCodeBlockHTML(&sb, b)
		case List:
			sb.WriteString("<ul>")
			for _, item := range b.Items {
				sb.WriteString("<li>")
				sb.WriteString(renderInlineHTML(item))
				sb.WriteString("</li>")
			}
			sb.WriteString("</ul>\n")
		case Paragraph:
			sb.WriteString("<p>")
			for i, line := range strings.Split(b.Text, "\n") {
				if i > 0 {
					sb.WriteString("<br>")
				}
				sb.WriteString(renderInlineHTML(line))
			}
			sb.WriteString("</p>\n")
		}
	}

	return sb.String()
}

// writeCodeBlockHTML writes one fenced block as a code-block container.
func writeCodeBlockHTML(sb *strings.Builder, b CodeBlock) {
	label := b.Lang
	if label == "" {
		label = "code"
	}

	sb.WriteString(`<div class="code-block">`)
	sb.WriteString(`<div class="code-header"><span class="code-lang">`)
	sb.WriteString(html.EscapeString(label))
	sb.WriteString(`</span><button class="copy-btn" data-copy="`)
	sb.WriteString(html.EscapeString(b.Code))
	sb.WriteString(`">Copy</button></div>`)
	sb.WriteString(`<pre><code class="language-`)
	sb.WriteString(html.EscapeString(b.Lang))
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(b.Code))
	sb.WriteString("</code></pre></div>\n")
}

// =============================================================================
// INLINE RENDERING
// =============================================================================

// renderInlineHTML escapes a text segment and applies inline code and bold
// substitutions. Inline code wins over bold: a span opens at a backtick and
// closes at the first following backtick, and its contents are emitted
// verbatim (escaped only), never re-scanned for bold or bullet markers. An
// unclosed backtick stays a literal backtick.
func renderInlineHTML(text string) string {
	var sb strings.Builder

	rest := text
	for {
		i := strings.IndexByte(rest, '`')
		if i < 0 {
			sb.WriteString(renderBoldHTML(html.EscapeString(rest)))
			break
		}
		j := strings.IndexByte(rest[i+1:], '`')
		if j < 0 {
			sb.WriteString(renderBoldHTML(html.EscapeString(rest)))
			break
		}

		sb.WriteString(renderBoldHTML(html.EscapeString(rest[:i])))
		sb.WriteString(`<code class="inline-code">`)
		sb.WriteString(html.EscapeString(rest[i+1 : i+1+j]))
		sb.WriteString(`</code>`)
		rest = rest[i+1+j+1:]
	}

	return sb.String()
}

// renderBoldHTML replaces non-greedy **span** pairs in already-escaped text.
// A span needs at least one character of content; asterisks short of a
// closing pair stay literal.
func renderBoldHTML(escaped string) string {
	var sb strings.Builder

	rest := escaped
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
		sb.WriteString("<b>")
		sb.WriteString(rest[i+2 : i+3+k])
		sb.WriteString("</b>")
		rest = rest[i+3+k+2:]
	}

	return sb.String()
}
