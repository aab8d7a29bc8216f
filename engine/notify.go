// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "time"

// StatusChangeEvent records one classification transition for an article.
// Exactly one event is emitted per distinct transition; recomputations that
// leave the status unchanged emit nothing, even when the score or
// confidence moved.
type StatusChangeEvent struct {
	ArticleID string    `json:"article_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// EventSink receives status-change events. Delivery is synchronous with the
// snapshot commit, so events for a given article arrive in the order their
// snapshots were committed.
type EventSink interface {
	StatusChanged(StatusChangeEvent)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(StatusChangeEvent)

func (f SinkFunc) StatusChanged(ev StatusChangeEvent) {
	f(ev)
}
