// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// SEARCH RESULT
// =============================================================================

// Match is a single search hit: the conversation it came from plus a
// snippet of the matching message with the hit marked.
type Match struct {
	ConversationID string
	Title          string
	Date           string
	Role           string
	Snippet        string
	Rank           float64
}

// DefaultMaxResults caps result sets when the caller passes limit <= 0.
const DefaultMaxResults = 50

// SnippetMark wraps the matched term inside Match.Snippet.
const (
	snippetOpen  = "["
	snippetClose = "]"
	snippetGap   = "…"
	snippetSize  = 12 // tokens around the hit
)

// =============================================================================
// SEARCH
// =============================================================================

// Search finds conversations whose title or messages match the query.
// Results are ordered by relevance, best first, at most one per message.
func (idx *ConversationIndex) Search(query string, limit int) ([]Match, error) {
	if !idx.IsIndexed() {
		return nil, ErrNotIndexed
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return []Match{}, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rows, err := idx.db.Query(`
		SELECT
			m.conv_id,
			c.title,
			c.date,
			m.role,
			snippet(messages_fts, 3, ?, ?, ?, ?),
			bm25(messages_fts)
		FROM messages_fts m
		JOIN conversations c ON c.id = m.conv_id
		WHERE messages_fts MATCH ?
		ORDER BY bm25(messages_fts)
		LIMIT ?
	`, snippetOpen, snippetClose, snippetGap, snippetSize, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ConversationID, &m.Title, &m.Date, &m.Role, &m.Snippet, &m.Rank); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return matches, nil
}

// SearchConversations is Search collapsed to one best hit per conversation.
func (idx *ConversationIndex) SearchConversations(query string, limit int) ([]Match, error) {
	matches, err := idx.Search(query, 0)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	seen := make(map[string]bool, len(matches))
	var out []Match
	for _, m := range matches {
		if seen[m.ConversationID] {
			continue
		}
		seen[m.ConversationID] = true
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// buildFTSQuery turns free text into an FTS5 query: each term quoted
// (neutralizing FTS operators in user input) with prefix matching, all
// terms required. Input is NFC-normalized to match the indexed text.
func buildFTSQuery(query string) string {
	terms := strings.Fields(norm.NFC.String(query))
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		quoted = append(quoted, `"`+term+`"*`)
	}
	return strings.Join(quoted, " AND ")
}
