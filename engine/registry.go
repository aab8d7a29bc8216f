// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Engine owns the per-article registry of tallies and snapshots. All
// mutation goes through its methods; there is no ambient global state.
// Updates to one article are serialized by a per-entry mutex, and articles
// are fully independent of each other.
type Engine struct {
	ledger LedgerReadFunc
	now    func() time.Time

	mu      sync.Mutex // guards entries, policy, sinks
	entries map[string]*entry
	policy  Policy
	sinks   []EventSink

	recalc singleflight.Group
}

// entry is the registry slot for one article. mu serializes all tally and
// snapshot writes for the article.
type entry struct {
	mu       sync.Mutex
	tally    Tally
	hasVotes bool
	override *Policy // per-article policy, nil means the global policy applies
	snap     Snapshot
}

// New creates an engine with a validated starting policy and the ledger
// read used for recalculation.
func New(policy Policy, ledger LedgerReadFunc) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		ledger:  ledger,
		now:     time.Now,
		entries: make(map[string]*entry),
		policy:  policy,
	}, nil
}

// AddSink registers a status-change sink. Sinks are invoked synchronously
// inside the commit that caused the transition and must not call back into
// the engine.
func (e *Engine) AddSink(s EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, s)
}

// Policy returns the current global policy.
func (e *Engine) Policy() Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy
}

// Known reports whether the registry has an entry for the article.
func (e *Engine) Known(articleID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.entries[articleID]
	return ok
}

// Observe registers an article that has been seen but not voted on,
// returning its pending snapshot. Calling it for a known article is a
// harmless no-op.
func (e *Engine) Observe(articleID string) Snapshot {
	en, _, _ := e.entryAndPolicy(articleID)
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.snap
}

// Snapshot returns a copy of the article's current snapshot. The second
// return is false when the registry has no entry for the article; the
// returned snapshot is then the pending placeholder.
func (e *Engine) Snapshot(articleID string) (Snapshot, bool) {
	e.mu.Lock()
	en := e.entries[articleID]
	e.mu.Unlock()

	if en == nil {
		return Snapshot{ArticleID: articleID, Status: StatusPending}, false
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.snap, true
}

// IngestVote applies one incoming vote and returns the recomputed snapshot.
func (e *Engine) IngestVote(articleID, result string) (Snapshot, error) {
	en, policy, sinks := e.entryAndPolicy(articleID)
	en.mu.Lock()
	defer en.mu.Unlock()

	t, err := en.tally.apply(result)
	if err != nil {
		return en.snap, err
	}
	return e.commitLocked(en, articleID, t, true, en.effective(policy), sinks), nil
}

// InvalidateVote moves one previously cast vote from its valid counter to
// the invalid counter and returns the recomputed snapshot.
func (e *Engine) InvalidateVote(articleID, previousResult string) (Snapshot, error) {
	e.mu.Lock()
	en := e.entries[articleID]
	policy := e.policy
	sinks := e.sinks
	e.mu.Unlock()

	if en == nil {
		return Snapshot{}, ErrUnknownArticle
	}
	en.mu.Lock()
	defer en.mu.Unlock()

	t, err := en.tally.invalidate(previousResult)
	if err != nil {
		return en.snap, err
	}
	return e.commitLocked(en, articleID, t, en.hasVotes, en.effective(policy), sinks), nil
}

// SetPolicy validates and installs a new global policy, then reclassifies
// every article. Articles with a per-article override are unaffected.
func (e *Engine) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.policy = p
	affected := make(map[string]*entry, len(e.entries))
	for id, en := range e.entries {
		affected[id] = en
	}
	sinks := e.sinks
	e.mu.Unlock()

	for id, en := range affected {
		en.mu.Lock()
		e.commitLocked(en, id, en.tally, en.hasVotes, en.effective(p), sinks)
		en.mu.Unlock()
	}
	return nil
}

// SetArticlePolicy installs a per-article policy override and reclassifies
// that article.
func (e *Engine) SetArticlePolicy(articleID string, p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	en, _, sinks := e.entryAndPolicy(articleID)
	en.mu.Lock()
	defer en.mu.Unlock()

	en.override = &p
	e.commitLocked(en, articleID, en.tally, en.hasVotes, p, sinks)
	return nil
}

// ClearArticlePolicy removes a per-article override and reclassifies the
// article under the global policy.
func (e *Engine) ClearArticlePolicy(articleID string) {
	e.mu.Lock()
	en := e.entries[articleID]
	policy := e.policy
	sinks := e.sinks
	e.mu.Unlock()

	if en == nil {
		return
	}
	en.mu.Lock()
	defer en.mu.Unlock()

	en.override = nil
	e.commitLocked(en, articleID, en.tally, en.hasVotes, policy, sinks)
}

// replaceTally swaps in a complete ledger-derived tally. Only the
// recalculation path may call this; incremental paths always apply deltas.
func (e *Engine) replaceTally(articleID string, t Tally) Snapshot {
	en, policy, sinks := e.entryAndPolicy(articleID)
	en.mu.Lock()
	defer en.mu.Unlock()

	// An authoritative read with no votes at all means the article has no
	// vote history, so it stays (or returns to) pending.
	return e.commitLocked(en, articleID, t, t.TotalVotes() > 0, en.effective(policy), sinks)
}

// entryAndPolicy returns the article's entry, creating a pending one if
// needed, along with the current global policy and sinks.
func (e *Engine) entryAndPolicy(articleID string) (*entry, Policy, []EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en := e.entries[articleID]
	if en == nil {
		en = &entry{snap: Snapshot{ArticleID: articleID, Status: StatusPending}}
		e.entries[articleID] = en
	}
	return en, e.policy, e.sinks
}

// commitLocked installs a new tally, recomputes the snapshot, and notifies
// sinks if the status changed. The caller must hold en.mu; sink delivery
// happens inside the critical section so events observe commit order.
func (e *Engine) commitLocked(en *entry, articleID string, t Tally, hasVotes bool, p Policy, sinks []EventSink) Snapshot {
	oldStatus := en.snap.Status

	en.tally = t
	en.hasVotes = hasVotes
	en.snap = computeSnapshot(articleID, t, p, hasVotes)

	if en.snap.Status != oldStatus {
		ev := StatusChangeEvent{
			ArticleID: articleID,
			OldStatus: oldStatus,
			NewStatus: en.snap.Status,
			Timestamp: e.now(),
		}
		for _, s := range sinks {
			s.StatusChanged(ev)
		}
	}
	return en.snap
}

// effective resolves the policy for this entry. Caller holds en.mu.
func (en *entry) effective(global Policy) Policy {
	if en.override != nil {
		return *en.override
	}
	return global
}
