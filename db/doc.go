// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is portable between PostgreSQL (production) and SQLite (development
and tests), so it avoids NOW(), JSONB, and serial columns.

# Tables

The schema includes:

  - article: Submitted news items
  - vote: The authoritative vote ledger, one row per cast vote
  - status_event: Audit trail of classification transitions

# Relationships

	article 1──* vote

vote.(article_id, voter_token) is unique: one vote per voter per article.
Invalidated votes stay in the ledger with invalidated = TRUE so the total
history is preserved; classification only counts rows where it is FALSE.

status_event rows are append-only and carry no foreign key so the audit
trail survives article deletion.
*/
package db
