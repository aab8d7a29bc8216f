// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crowdcheck/crowdcheck/engine"
	"github.com/crowdcheck/crowdcheck/models"
)

// AuditSink persists classification transitions to the status_event table.
// It is registered with the engine, which delivers events synchronously in
// commit order, so rows land in the same order the transitions happened.
type AuditSink struct {
	store *Store
}

func NewAuditSink(store *Store) *AuditSink {
	return &AuditSink{store: store}
}

func (s *AuditSink) StatusChanged(ev engine.StatusChangeEvent) {
	err := s.store.RecordStatusEvent(context.Background(), models.StatusEvent{
		ID:         uuid.NewString(),
		ArticleID:  ev.ArticleID,
		OldStatus:  ev.OldStatus,
		NewStatus:  ev.NewStatus,
		OccurredAt: ev.Timestamp,
	})
	if err != nil {
		// The in-memory transition already committed; losing an audit row
		// must not fail the vote that caused it.
		slog.Error("failed to record status event", "article_id", ev.ArticleID, "error", err)
	}
}
