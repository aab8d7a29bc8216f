// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownArticle is returned when an operation references an article the
// registry has never seen and the ledger cannot supply.
var ErrUnknownArticle = errors.New("unknown article")

// ValidationError rejects an event or policy that would corrupt state: a
// mutation producing a negative counter, or a policy outside its valid
// range. The offending input is dropped and prior state is unchanged.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// RecalculationError reports a failed ledger re-read. The article keeps its
// previous Tally and Snapshot; the coordinator never retries on its own.
type RecalculationError struct {
	ArticleID string
	Err       error
}

func (e *RecalculationError) Error() string {
	return fmt.Sprintf("recalculate %s: %v", e.ArticleID, e.Err)
}

func (e *RecalculationError) Unwrap() error {
	return e.Err
}
