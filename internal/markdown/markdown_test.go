// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"html"
	"strings"
	"testing"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse_CodeBlock(t *testing.T) {
	blocks := Parse("```js\ncode\n```")

	if len(blocks) != 1 {
		t.Fatalf("Parse returned %d blocks, want 1", len(blocks))
	}
	cb, ok := blocks[0].(CodeBlock)
	if !ok {
		t.Fatalf("block is %T, want CodeBlock", blocks[0])
	}
	if cb.Lang != "js" {
		t.Errorf("Lang = %q, want %q", cb.Lang, "js")
	}
	if cb.Code != "code" {
		t.Errorf("Code = %q, want %q (exact, no surrounding whitespace)", cb.Code, "code")
	}
}

func TestParse_CodeBlockTrimsBody(t *testing.T) {
	blocks := Parse("```\n\n  x := 1\n\n```")

	cb := blocks[0].(CodeBlock)
	if cb.Code != "x := 1" {
		t.Errorf("Code = %q, want trimmed body", cb.Code)
	}
	if cb.Lang != "" {
		t.Errorf("Lang = %q, want empty", cb.Lang)
	}
}

func TestParse_UnclosedFenceRunsToEnd(t *testing.T) {
	blocks := Parse("```go\nfunc main() {}\nno closing fence")

	if len(blocks) != 1 {
		t.Fatalf("Parse returned %d blocks, want 1", len(blocks))
	}
	cb := blocks[0].(CodeBlock)
	if !strings.Contains(cb.Code, "no closing fence") {
		t.Errorf("unclosed fence should capture to end of input, got %q", cb.Code)
	}
}

func TestParse_FirstClosingFenceWins(t *testing.T) {
	blocks := Parse("```\nfirst\n```\nbetween\n```\nsecond\n```")

	if len(blocks) != 3 {
		t.Fatalf("Parse returned %d blocks, want 3", len(blocks))
	}
	if cb := blocks[0].(CodeBlock); cb.Code != "first" {
		t.Errorf("first block Code = %q", cb.Code)
	}
	if p := blocks[1].(Paragraph); p.Text != "between" {
		t.Errorf("middle paragraph = %q", p.Text)
	}
	if cb := blocks[2].(CodeBlock); cb.Code != "second" {
		t.Errorf("second block Code = %q", cb.Code)
	}
}

func TestParse_ListGrouping(t *testing.T) {
	blocks := Parse("* one\n* two\ntext\n* three")

	if len(blocks) != 3 {
		t.Fatalf("Parse returned %d blocks, want 3 (list, paragraph, list)", len(blocks))
	}
	first, ok := blocks[0].(List)
	if !ok {
		t.Fatalf("first block is %T, want List", blocks[0])
	}
	if len(first.Items) != 2 || first.Items[0] != "one" || first.Items[1] != "two" {
		t.Errorf("first list items = %v", first.Items)
	}
	second := blocks[2].(List)
	if len(second.Items) != 1 || second.Items[0] != "three" {
		t.Errorf("second list items = %v", second.Items)
	}
}

func TestParse_ItemTextCannotSplitList(t *testing.T) {
	// Item content containing list-item markup stays plain text inside one
	// structural list.
	blocks := Parse("* a</li><li>b\n* c")

	list, ok := blocks[0].(List)
	if !ok {
		t.Fatalf("block is %T, want List", blocks[0])
	}
	if len(list.Items) != 2 {
		t.Fatalf("items = %v, want 2 items", list.Items)
	}
	if list.Items[0] != "a</li><li>b" {
		t.Errorf("item text = %q, want raw text preserved", list.Items[0])
	}
}

func TestParse_BoldLineIsNotABullet(t *testing.T) {
	blocks := Parse("**bold lead** and more")

	if _, ok := blocks[0].(Paragraph); !ok {
		t.Fatalf("leading ** should parse as paragraph, got %T", blocks[0])
	}
}

func TestParse_BlankLinesSeparateParagraphs(t *testing.T) {
	blocks := Parse("one\ntwo\n\nthree")

	if len(blocks) != 2 {
		t.Fatalf("Parse returned %d blocks, want 2", len(blocks))
	}
	if p := blocks[0].(Paragraph); p.Text != "one\ntwo" {
		t.Errorf("first paragraph = %q, want line structure preserved", p.Text)
	}
	if p := blocks[1].(Paragraph); p.Text != "three" {
		t.Errorf("second paragraph = %q", p.Text)
	}
}

// =============================================================================
// HTML RENDERER TESTS
// =============================================================================

func TestFormat_InlineCode(t *testing.T) {
	got := Format("`x`")
	if !strings.Contains(got, `<code class="inline-code">x</code>`) {
		t.Errorf("Format(`x`) = %q, want inline-code element wrapping x", got)
	}
}

func TestFormat_Bold(t *testing.T) {
	got := Format("**b**")
	if !strings.Contains(got, "<b>b</b>") {
		t.Errorf("Format(**b**) = %q, want bold element wrapping b", got)
	}
}

func TestFormat_CodeBlockCopyPayload(t *testing.T) {
	got := Format("```js\ncode\n```")

	if !strings.Contains(got, `data-copy="code"`) {
		t.Errorf("copy payload should be exactly %q, got %q", "code", got)
	}
	if !strings.Contains(got, `<span class="code-lang">js</span>`) {
		t.Errorf("header should show the language tag, got %q", got)
	}
	if !strings.Contains(got, `<pre><code class="language-js">code</code></pre>`) {
		t.Errorf("body should hold the trimmed code verbatim, got %q", got)
	}
}

func TestFormat_MissingLanguageFallsBackToCode(t *testing.T) {
	got := Format("```\nx := 1\n```")
	if !strings.Contains(got, `<span class="code-lang">code</span>`) {
		t.Errorf("missing language tag should render literal label %q, got %q", "code", got)
	}
}

func TestFormat_CopyPayloadSurvivesAttributeEscaping(t *testing.T) {
	code := `fmt.Println("hi <world> & friends")`
	got := Format("```go\n" + code + "\n```")

	// The wire form is attribute-escaped; decoding restores the exact text.
	start := strings.Index(got, `data-copy="`)
	if start < 0 {
		t.Fatalf("no data-copy attribute in %q", got)
	}
	start += len(`data-copy="`)
	end := strings.Index(got[start:], `"`)
	if end < 0 {
		t.Fatalf("unterminated data-copy attribute in %q", got)
	}
	if decoded := html.UnescapeString(got[start : start+end]); decoded != code {
		t.Errorf("decoded payload = %q, want %q", decoded, code)
	}
}

func TestFormat_EscapesRawHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"paragraph", `<script>alert("xss")</script>`},
		{"list item", `* <img src=x onerror=alert(1)>`},
		{"code body", "```\n<script>boom()</script>\n```"},
		{"fence language tag", "```<b>\nx\n```"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Format(tc.input)
			if strings.Contains(got, "<script>") || strings.Contains(got, "<img") {
				t.Errorf("raw HTML leaked through: %q", got)
			}
		})
	}
}

func TestFormat_InlineCodeContentsProtected(t *testing.T) {
	got := Format("`**x**`")

	if !strings.Contains(got, `<code class="inline-code">**x**</code>`) {
		t.Errorf("code span contents should stay verbatim, got %q", got)
	}
	if strings.Contains(got, "<b>") {
		t.Errorf("bold substitution leaked into code span: %q", got)
	}
}

func TestFormat_UnclosedBacktickStaysLiteral(t *testing.T) {
	got := Format("a `b and on")

	if strings.Contains(got, "inline-code") {
		t.Errorf("unclosed backtick should not open a code span: %q", got)
	}
	if !strings.Contains(got, "a `b and on") {
		t.Errorf("literal backtick missing from %q", got)
	}
}

func TestFormat_FirstClosingBacktickWins(t *testing.T) {
	got := Format("`a`b`")

	if !strings.Contains(got, `<code class="inline-code">a</code>`) {
		t.Errorf("first closing backtick should close the span, got %q", got)
	}
	// The trailing backtick has no partner and stays literal.
	if !strings.Contains(got, "b`") {
		t.Errorf("trailing text should keep its literal backtick, got %q", got)
	}
}

func TestFormat_BoldNonGreedy(t *testing.T) {
	got := Format("**a** mid **b**")

	if !strings.Contains(got, "<b>a</b>") || !strings.Contains(got, "<b>b</b>") {
		t.Errorf("want two separate bold spans, got %q", got)
	}
	if strings.Contains(got, "<b>a** mid **b</b>") {
		t.Errorf("bold matching was greedy: %q", got)
	}
}

func TestFormat_DanglingBoldStaysLiteral(t *testing.T) {
	got := Format("**open but never closed")
	if strings.Contains(got, "<b>") {
		t.Errorf("unpaired ** should stay literal, got %q", got)
	}
}

func TestFormat_List(t *testing.T) {
	got := Format("* one\n* two")

	if !strings.Contains(got, "<ul><li>one</li><li>two</li></ul>") {
		t.Errorf("Format list = %q", got)
	}
}

func TestFormat_ListItemInlineRendering(t *testing.T) {
	got := Format("* use `go vet`\n* **always**")

	if !strings.Contains(got, `<li>use <code class="inline-code">go vet</code></li>`) {
		t.Errorf("inline code inside list item missing: %q", got)
	}
	if !strings.Contains(got, "<li><b>always</b></li>") {
		t.Errorf("bold inside list item missing: %q", got)
	}
}

func TestFormat_MixedDocument(t *testing.T) {
	input := "Intro line\n\n```python\nprint(1)\n```\n* first\n* second\nOutro with `code`."
	got := Format(input)

	for _, want := range []string{
		"<p>Intro line</p>",
		`<span class="code-lang">python</span>`,
		`data-copy="print(1)"`,
		"<li>first</li>",
		`<code class="inline-code">code</code>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Format output missing %q:\n%s", want, got)
		}
	}
}

// =============================================================================
// ANSI RENDERER TESTS
// =============================================================================

func TestFormatANSI_CodeBlock(t *testing.T) {
	got := FormatANSI("```go\nfunc main() {}\n```", 80)

	// Highlighted output keeps the code text (with ANSI sequences around it).
	if !strings.Contains(got, "main") {
		t.Errorf("code text missing from ANSI output: %q", got)
	}
}

func TestFormatANSI_ListAndText(t *testing.T) {
	got := FormatANSI("greeting\n* one\n* two", 80)

	if !strings.Contains(got, "•") {
		t.Errorf("bullet marker missing: %q", got)
	}
	if !strings.Contains(got, "greeting") {
		t.Errorf("paragraph text missing: %q", got)
	}
}

func TestFormatANSI_PlainTextPassthrough(t *testing.T) {
	got := FormatANSI("just words", 80)
	if !strings.Contains(got, "just words") {
		t.Errorf("plain text should pass through, got %q", got)
	}
}

// =============================================================================
// CODE BLOCK EXTRACTION TESTS
// =============================================================================

func TestCodeBlocks(t *testing.T) {
	text := "a\n```go\none\n```\nb\n```\ntwo\n```"
	blocks := CodeBlocks(text)

	if len(blocks) != 2 {
		t.Fatalf("CodeBlocks returned %d, want 2", len(blocks))
	}
	if blocks[0].Code != "one" || blocks[1].Code != "two" {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestCodeBlocks_NoneInPlainText(t *testing.T) {
	if blocks := CodeBlocks("no fences here"); len(blocks) != 0 {
		t.Errorf("CodeBlocks = %+v, want none", blocks)
	}
}
