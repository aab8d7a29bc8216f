// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS. The DDL sticks to the
// subset shared by PostgreSQL and SQLite; timestamps are written by the
// application rather than database defaults.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Submitted news items
CREATE TABLE IF NOT EXISTS article (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    url TEXT NOT NULL,
    description TEXT,
    submitter TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_article_created_at ON article(created_at);

-- The authoritative vote ledger. Classification tallies are always
-- re-derivable from these rows.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    article_id TEXT NOT NULL REFERENCES article(id) ON DELETE CASCADE,
    voter_token TEXT NOT NULL,
    result TEXT NOT NULL CHECK (result IN ('fake', 'non-fake')),
    invalidated BOOLEAN NOT NULL DEFAULT FALSE,
    ip_hash TEXT,
    user_agent TEXT,
    submitted_at TIMESTAMP NOT NULL,
    invalidated_at TIMESTAMP,
    UNIQUE (article_id, voter_token)
);

CREATE INDEX IF NOT EXISTS idx_vote_article_id ON vote(article_id);
CREATE INDEX IF NOT EXISTS idx_vote_voter_token ON vote(article_id, voter_token);

-- Audit trail of classification transitions
CREATE TABLE IF NOT EXISTS status_event (
    id TEXT PRIMARY KEY,
    article_id TEXT NOT NULL,
    old_status TEXT NOT NULL,
    new_status TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_status_event_article_id ON status_event(article_id);
`
