// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

// SchemaVersion tracks the database schema version for migrations.
const SchemaVersion = 1

// Schema is the SQLite schema for the conversation index. The messages
// FTS table carries the searchable text; the conversations table holds
// the metadata the result list needs without a round trip to the JSON
// archive.
const Schema = `
-- Metadata table for schema version and index state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Conversations table: one row per archived conversation
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,           -- ISO yyyy-mm-dd
    message_count INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,  -- Unix timestamp
    indexed_at INTEGER NOT NULL   -- Unix timestamp
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);

-- Full-text index over message bodies. Titles are stored again here so a
-- query can match either the title or any message of a conversation.
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    conv_id UNINDEXED,
    role UNINDEXED,
    title,
    content,
    tokenize='porter unicode61'
);
`

// InitMetadata seeds the metadata table with default values.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
INSERT OR IGNORE INTO metadata (key, value) VALUES ('last_rebuild', '0');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('archive_dir', '');
`
