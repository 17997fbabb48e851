// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/gemrun-tui/internal/markdown"
	"github.com/jeranaias/gemrun-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with
// embedded CSS. Message bodies go through the chat formatter, so the page
// shows the same rendering as the web surface, copy buttons included.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.DisplayTitle())))
	sb.WriteString("    <meta name=\"generator\" content=\"gemrun\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", html.EscapeString(conv.Date)))
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(conv))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>gemrun</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(e.getScript())
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(conv *model.Conversation) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.DisplayTitle())))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Date:</strong> %s</span>\n", html.EscapeString(conv.Date)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(conv.Messages)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Mode:</strong> %s</span>\n", modeLabel(conv.SimpleMode)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message through the chat formatter.
func (e *HTMLExporter) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	roleClass := strings.ToLower(string(msg.Role))
	if msg.Failed {
		roleClass += " failed"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(roleLabel(msg))))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(markdown.Format(msg.Content))
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")

	return sb.String()
}

// getCSS returns the embedded stylesheet. The code-block / copy-btn /
// inline-code class names are the formatter's contract.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        :root { --accent: #7c6ff0; }
        * { box-sizing: border-box; }
        body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
        body.dark-theme { background: #17161f; color: #e6e4f0; }
        body.light-theme { background: #fafafa; color: #1d1c26; }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header h1 { margin: 0 0 .5rem; }
        .metadata { display: flex; gap: 1.25rem; flex-wrap: wrap; font-size: .85rem; opacity: .75; }
        .conversation { margin-top: 2rem; }
        .message { margin-bottom: 1.5rem; border-radius: 8px; padding: 1rem 1.25rem; }
        .dark-theme .user-message { background: #24223a; }
        .dark-theme .assistant-message { background: #1e1d2a; }
        .light-theme .user-message { background: #eceafd; }
        .light-theme .assistant-message { background: #f0f0f0; }
        .message.failed { border-left: 3px solid #e05561; }
        .message-header { display: flex; justify-content: space-between; font-size: .8rem; margin-bottom: .5rem; }
        .role-label { font-weight: 600; color: var(--accent); }
        .timestamp { opacity: .6; }
        .message-content p { margin: .4rem 0; }
        .code-block { border-radius: 6px; overflow: hidden; margin: .75rem 0; }
        .dark-theme .code-block { background: #121118; }
        .light-theme .code-block { background: #23222b; color: #e6e4f0; }
        .code-header { display: flex; justify-content: space-between; align-items: center; padding: .35rem .75rem; background: rgba(124,111,240,.15); font-size: .75rem; }
        .code-lang { text-transform: lowercase; letter-spacing: .04em; }
        .copy-btn { border: none; border-radius: 4px; padding: .2rem .6rem; font-size: .75rem; cursor: pointer; background: var(--accent); color: #fff; }
        .copy-btn.copied { background: #3fb57f; }
        .code-block pre { margin: 0; padding: .75rem; overflow-x: auto; }
        .code-block code { font-family: "SF Mono", Consolas, monospace; font-size: .85rem; }
        .inline-code { font-family: "SF Mono", Consolas, monospace; font-size: .85em; padding: .1em .35em; border-radius: 4px; background: rgba(124,111,240,.18); }
        .footer { margin-top: 3rem; font-size: .8rem; opacity: .6; text-align: center; }
    </style>
`
}

// getScript returns the copy-button script: write the data-copy payload to
// the clipboard and flash a copied state for two seconds, a re-copy
// restarting the timer.
func (e *HTMLExporter) getScript() string {
	return `    <script>
        document.addEventListener('click', function (ev) {
            var btn = ev.target.closest('.copy-btn');
            if (!btn) return;
            navigator.clipboard.writeText(btn.dataset.copy).then(function () {
                btn.classList.add('copied');
                btn.textContent = 'Copied';
                clearTimeout(btn._reset);
                btn._reset = setTimeout(function () {
                    btn.classList.remove('copied');
                    btn.textContent = 'Copy';
                }, 2000);
            });
        });
    </script>
`
}
