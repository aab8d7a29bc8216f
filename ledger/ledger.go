// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crowdcheck/crowdcheck/engine"
	"github.com/crowdcheck/crowdcheck/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateVote      = errors.New("voter already voted on this article")
	ErrAlreadyInvalidated = errors.New("vote already invalidated")
)

// Store wraps the SQL database holding articles and the authoritative vote
// ledger. Queries use $N placeholders, which both PostgreSQL and SQLite
// accept, so the same Store serves production and tests.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateArticle inserts a submitted news item.
func (s *Store) CreateArticle(ctx context.Context, a models.Article) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO article (id, title, url, description, submitter, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.Title, a.URL, a.Description, a.Submitter, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// GetArticle returns one article, or ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, id string) (models.Article, error) {
	var a models.Article
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, url, description, submitter, created_at
		FROM article
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Title, &a.URL, &a.Description, &a.Submitter, &a.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Article{}, ErrNotFound
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("query article: %w", err)
	}
	return a, nil
}

// ListArticles returns a page of articles, newest first, plus the total count.
func (s *Store) ListArticles(ctx context.Context, limit, offset int) ([]models.Article, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, description, submitter, created_at
		FROM article
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Description, &a.Submitter, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}

// RecordVote appends one vote to the ledger. A second vote from the same
// voter on the same article returns ErrDuplicateVote.
func (s *Store) RecordVote(ctx context.Context, v models.Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vote (id, article_id, voter_token, result, invalidated, ip_hash, user_agent, submitted_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6, $7)
	`, v.ID, v.ArticleID, v.VoterToken, v.Result, v.IPHash, v.UserAgent, v.SubmittedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// InvalidateVote marks a ledger row invalidated and reports which result it
// carried, so the caller can apply the matching delta. The row must belong
// to the given article; otherwise nothing changes and ErrNotFound is
// returned.
func (s *Store) InvalidateVote(ctx context.Context, articleID, voteID string, when time.Time) (result string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var invalidated bool
	err = tx.QueryRowContext(ctx, `
		SELECT result, invalidated FROM vote WHERE id = $1 AND article_id = $2
	`, voteID, articleID).Scan(&result, &invalidated)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query vote: %w", err)
	}
	if invalidated {
		return "", ErrAlreadyInvalidated
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE vote SET invalidated = TRUE, invalidated_at = $1 WHERE id = $2
	`, when, voteID)
	if err != nil {
		return "", fmt.Errorf("update vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit invalidation: %w", err)
	}
	return result, nil
}

// Counts aggregates the ledger into a tally for one article. This is the
// authoritative read the classification engine recalculates from.
func (s *Store) Counts(ctx context.Context, articleID string) (engine.Tally, error) {
	var t engine.Tally
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN result = 'fake' AND NOT invalidated THEN 1 END),
			COUNT(CASE WHEN result = 'non-fake' AND NOT invalidated THEN 1 END),
			COUNT(CASE WHEN invalidated THEN 1 END)
		FROM vote
		WHERE article_id = $1
	`, articleID).Scan(&t.FakeVotes, &t.NonFakeVotes, &t.InvalidVotes)

	if err != nil {
		return engine.Tally{}, fmt.Errorf("aggregate votes: %w", err)
	}
	return t, nil
}

// RecordStatusEvent appends one classification transition to the audit trail.
func (s *Store) RecordStatusEvent(ctx context.Context, ev models.StatusEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_event (id, article_id, old_status, new_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.ID, ev.ArticleID, ev.OldStatus, ev.NewStatus, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}
	return nil
}

// ListStatusEvents returns an article's transitions in commit order.
func (s *Store) ListStatusEvents(ctx context.Context, articleID string) ([]models.StatusEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article_id, old_status, new_status, occurred_at
		FROM status_event
		WHERE article_id = $1
		ORDER BY occurred_at, id
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query status events: %w", err)
	}
	defer rows.Close()

	events := []models.StatusEvent{}
	for rows.Next() {
		var ev models.StatusEvent
		if err := rows.Scan(&ev.ID, &ev.ArticleID, &ev.OldStatus, &ev.NewStatus, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Stats returns service-wide totals.
func (s *Store) Stats(ctx context.Context) (articles, votes, invalidated int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article`).Scan(&articles); err != nil {
		return 0, 0, 0, fmt.Errorf("count articles: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(CASE WHEN invalidated THEN 1 END) FROM vote
	`).Scan(&votes, &invalidated)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count votes: %w", err)
	}
	return articles, votes, invalidated, nil
}

// isUniqueViolation matches duplicate-key errors from both drivers.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
