// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
)

// LedgerReadFunc fetches the authoritative vote counts for an article from
// the external vote ledger. It is injected at construction so the
// coordinator's serialization and error handling can be tested without
// real transport timing.
type LedgerReadFunc func(ctx context.Context, articleID string) (Tally, error)

// Recalculate re-derives the article's tally from the authoritative ledger
// and re-runs the classification pipeline.
//
// Concurrent calls for the same article are coalesced onto a single ledger
// read, so the committed tally is always one complete read, never a mix of
// two. Once started, the read-and-commit runs to completion even if every
// caller stops waiting; a canceled caller gets ctx.Err() but the result
// still lands. On failure the previous tally and snapshot are retained and
// a *RecalculationError is returned. The coordinator never retries; any
// retry or timeout policy belongs to the transport behind the ledger func.
func (e *Engine) Recalculate(ctx context.Context, articleID string) (Snapshot, error) {
	if e.ledger == nil {
		return Snapshot{}, &RecalculationError{ArticleID: articleID, Err: errors.New("no ledger configured")}
	}

	ch := e.recalc.DoChan(articleID, func() (interface{}, error) {
		t, err := e.ledger(context.WithoutCancel(ctx), articleID)
		if err != nil {
			return nil, &RecalculationError{ArticleID: articleID, Err: err}
		}
		if err := t.validate(); err != nil {
			return nil, &RecalculationError{ArticleID: articleID, Err: err}
		}
		return e.replaceTally(articleID, t), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		return res.Val.(Snapshot), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}
