// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import "strings"

// =============================================================================
// BLOCK TYPES
// =============================================================================

// Block is one structural element of a parsed message.
type Block interface {
	isBlock()
}

// CodeBlock is a fenced code block. Code is the trimmed body, verbatim
// otherwise; Lang is the optional tag from the opening fence line.
type CodeBlock struct {
	Lang string
	Code string
}

// List is a run of consecutive bullet lines. Items hold the text after the
// bullet marker, still in raw (unrendered) form.
type List struct {
	Items []string
}

// Paragraph is a run of plain lines. Text preserves the line structure;
// blank lines separate paragraphs.
type Paragraph struct {
	Text string
}

func (CodeBlock) isBlock() {}
func (List) isBlock()      {}
func (Paragraph) isBlock() {}

// =============================================================================
// PARSER
// =============================================================================

// Parse splits raw message text into structural blocks.
//
// A fence is a line beginning with three backticks, optionally followed by a
// language tag. The block captures everything up to the first closing fence;
// an unclosed fence runs to end of input. Bullet runs group structurally: a
// run of consecutive bullet lines becomes one List regardless of the item
// text, so item content can never split or merge lists.
func Parse(text string) []Block {
	lines := strings.Split(text, "\n")

	var blocks []Block
	var para []string
	var items []string

	flushPara := func() {
		if len(para) > 0 {
			blocks = append(blocks, Paragraph{Text: strings.Join(para, "\n")})
			para = nil
		}
	}
	flushList := func() {
		if len(items) > 0 {
			blocks = append(blocks, List{Items: items})
			items = nil
		}
	}

	i := 0
	for i < len(lines) {
		line := lines[i]

		if strings.HasPrefix(line, "```") {
			flushPara()
			flushList()

			lang := strings.TrimSpace(strings.TrimPrefix(line, "```"))
			var code []string
			i++
			for i < len(lines) {
				if strings.HasPrefix(lines[i], "```") {
					i++ // skip the closing fence
					break
				}
				code = append(code, lines[i])
				i++
			}
			blocks = append(blocks, CodeBlock{
				Lang: lang,
				Code: strings.TrimSpace(strings.Join(code, "\n")),
			})
			continue
		}

		if item, ok := bulletText(line); ok {
			flushPara()
			items = append(items, item)
			i++
			continue
		}

		flushList()
		if strings.TrimSpace(line) == "" {
			flushPara()
		} else {
			para = append(para, line)
		}
		i++
	}

	flushPara()
	flushList()
	return blocks
}

// bulletText reports whether a line is a bullet item and returns its text.
// A bullet is a single leading asterisk after optional indentation; a double
// asterisk is a bold marker, not a bullet.
func bulletText(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "*") || strings.HasPrefix(t, "**") {
		return "", false
	}
	return strings.TrimSpace(t[1:]), true
}
