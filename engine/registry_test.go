// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// collectSink records every delivered event for assertions.
type collectSink struct {
	mu     sync.Mutex
	events []StatusChangeEvent
}

func (c *collectSink) StatusChanged(ev StatusChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collectSink) all() []StatusChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StatusChangeEvent, len(c.events))
	copy(out, c.events)
	return out
}

func newTestEngine(t *testing.T, policy Policy, ledger LedgerReadFunc) (*Engine, *collectSink) {
	t.Helper()

	eng, err := New(policy, ledger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	sink := &collectSink{}
	eng.AddSink(sink)
	return eng, sink
}

func TestObserveStartsPending(t *testing.T) {
	eng, sink := newTestEngine(t, DefaultPolicy(), nil)

	snap := eng.Observe("a1")
	if snap.Status != StatusPending {
		t.Errorf("New article should be pending, got %q", snap.Status)
	}
	if len(sink.all()) != 0 {
		t.Error("Observing an article must not emit events")
	}

	// Unknown articles read as pending too, flagged as absent
	snap, ok := eng.Snapshot("never-seen")
	if ok {
		t.Error("Expected ok=false for unknown article")
	}
	if snap.Status != StatusPending {
		t.Errorf("Unknown article should read pending, got %q", snap.Status)
	}
}

func TestIngestVotePipeline(t *testing.T) {
	eng, sink := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 2}, nil)

	// First vote: pending -> insufficient
	snap, err := eng.IngestVote("a1", VoteFake)
	if err != nil {
		t.Fatalf("IngestVote failed: %v", err)
	}
	if snap.Status != StatusInsufficient {
		t.Errorf("Expected insufficient after one vote, got %q", snap.Status)
	}

	// Second vote: insufficient -> fake (2/2 at threshold 0.6)
	snap, err = eng.IngestVote("a1", VoteFake)
	if err != nil {
		t.Fatalf("IngestVote failed: %v", err)
	}
	if snap.Status != StatusFake {
		t.Errorf("Expected fake, got %q", snap.Status)
	}
	if snap.FakeScore != 1.0 {
		t.Errorf("FakeScore = %f, want 1.0", snap.FakeScore)
	}

	events := sink.all()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].OldStatus != StatusPending || events[0].NewStatus != StatusInsufficient {
		t.Errorf("Unexpected first transition: %+v", events[0])
	}
	if events[1].OldStatus != StatusInsufficient || events[1].NewStatus != StatusFake {
		t.Errorf("Unexpected second transition: %+v", events[1])
	}
}

func TestIngestVoteRejectsUnknownResult(t *testing.T) {
	eng, sink := newTestEngine(t, DefaultPolicy(), nil)

	if _, err := eng.IngestVote("a1", "shrug"); err == nil {
		t.Fatal("Expected error for unknown vote result")
	}

	// The rejected event must not have touched the tally
	snap, _ := eng.Snapshot("a1")
	if snap.ValidVotes != 0 {
		t.Errorf("Rejected vote mutated the tally: %+v", snap)
	}
	if len(sink.all()) != 0 {
		t.Error("Rejected vote must not emit events")
	}
}

func TestInvalidateVote(t *testing.T) {
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 2}, nil)

	eng.IngestVote("a1", VoteFake)
	eng.IngestVote("a1", VoteFake)

	// Invalidate one fake vote: back below the minimum
	snap, err := eng.InvalidateVote("a1", VoteFake)
	if err != nil {
		t.Fatalf("InvalidateVote failed: %v", err)
	}
	if snap.Status != StatusInsufficient {
		t.Errorf("Expected insufficient after invalidation, got %q", snap.Status)
	}
	if snap.ValidVotes != 1 || snap.InvalidVotes != 1 {
		t.Errorf("Unexpected counts after invalidation: %+v", snap)
	}
}

func TestInvalidateNeverRevertsToPending(t *testing.T) {
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 1}, nil)

	eng.IngestVote("a1", VoteNonFake)
	snap, err := eng.InvalidateVote("a1", VoteNonFake)
	if err != nil {
		t.Fatalf("InvalidateVote failed: %v", err)
	}

	// Zero valid votes with vote history is insufficient, not pending
	if snap.Status != StatusInsufficient {
		t.Errorf("Expected insufficient, got %q", snap.Status)
	}
}

func TestInvalidateVoteErrors(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultPolicy(), nil)

	if _, err := eng.InvalidateVote("ghost", VoteFake); !errors.Is(err, ErrUnknownArticle) {
		t.Errorf("Expected ErrUnknownArticle, got %v", err)
	}

	eng.IngestVote("a1", VoteNonFake)
	_, err := eng.InvalidateVote("a1", VoteFake)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for empty counter, got %v", err)
	}
}

func TestSetPolicyReclassifies(t *testing.T) {
	// 11/20 = 0.55: non-fake at threshold 0.6
	eng, sink := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, nil)
	for i := 0; i < 11; i++ {
		eng.IngestVote("a1", VoteFake)
	}
	for i := 0; i < 9; i++ {
		eng.IngestVote("a1", VoteNonFake)
	}

	snap, _ := eng.Snapshot("a1")
	if snap.Status != StatusNonFake {
		t.Fatalf("Expected non-fake at threshold 0.6, got %q", snap.Status)
	}
	before := len(sink.all())

	// Lowering the threshold below the score flips the verdict
	if err := eng.SetPolicy(Policy{Threshold: 0.5, MinValidVotes: 5}); err != nil {
		t.Fatalf("SetPolicy failed: %v", err)
	}

	snap, _ = eng.Snapshot("a1")
	if snap.Status != StatusFake {
		t.Errorf("Expected fake at threshold 0.5, got %q", snap.Status)
	}

	events := sink.all()
	if len(events) != before+1 {
		t.Fatalf("Expected exactly one new event, got %d", len(events)-before)
	}
	last := events[len(events)-1]
	if last.OldStatus != StatusNonFake || last.NewStatus != StatusFake {
		t.Errorf("Unexpected transition: %+v", last)
	}

	// Setting the same policy again changes nothing and emits nothing
	if err := eng.SetPolicy(Policy{Threshold: 0.5, MinValidVotes: 5}); err != nil {
		t.Fatalf("SetPolicy failed: %v", err)
	}
	if len(sink.all()) != len(events) {
		t.Error("Unchanged policy re-emitted events")
	}
}

func TestSetPolicyRejectsInvalid(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultPolicy(), nil)
	eng.IngestVote("a1", VoteFake)
	snap, _ := eng.Snapshot("a1")

	if err := eng.SetPolicy(Policy{Threshold: 1.5}); err == nil {
		t.Fatal("Expected error for out-of-range policy")
	}

	// Prior policy still in force
	if eng.Policy() != DefaultPolicy() {
		t.Errorf("Policy changed after rejected update: %+v", eng.Policy())
	}
	after, _ := eng.Snapshot("a1")
	if after != snap {
		t.Errorf("Snapshot changed after rejected update: %+v", after)
	}
}

func TestArticlePolicyOverride(t *testing.T) {
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, nil)

	for i := 0; i < 5; i++ {
		eng.IngestVote("a1", VoteFake)
		eng.IngestVote("a2", VoteFake)
	}

	// Stricter minimum for a1 only
	if err := eng.SetArticlePolicy("a1", Policy{Threshold: 0.6, MinValidVotes: 10}); err != nil {
		t.Fatalf("SetArticlePolicy failed: %v", err)
	}

	snap, _ := eng.Snapshot("a1")
	if snap.Status != StatusInsufficient {
		t.Errorf("Expected a1 insufficient under override, got %q", snap.Status)
	}
	snap, _ = eng.Snapshot("a2")
	if snap.Status != StatusFake {
		t.Errorf("Expected a2 unaffected, got %q", snap.Status)
	}

	// Global updates leave the override in force
	if err := eng.SetPolicy(Policy{Threshold: 0.6, MinValidVotes: 1}); err != nil {
		t.Fatalf("SetPolicy failed: %v", err)
	}
	snap, _ = eng.Snapshot("a1")
	if snap.Status != StatusInsufficient {
		t.Errorf("Override should shadow the global policy, got %q", snap.Status)
	}

	// Clearing the override reclassifies under the global policy
	eng.ClearArticlePolicy("a1")
	snap, _ = eng.Snapshot("a1")
	if snap.Status != StatusFake {
		t.Errorf("Expected fake after clearing override, got %q", snap.Status)
	}
}

func TestConcurrentIngest(t *testing.T) {
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%3 == 0 {
				eng.IngestVote("a1", VoteNonFake)
			} else {
				eng.IngestVote("a1", VoteFake)
			}
		}(i)
	}
	wg.Wait()

	snap, _ := eng.Snapshot("a1")
	if snap.ValidVotes != 30 {
		t.Errorf("Expected 30 valid votes, got %d", snap.ValidVotes)
	}
	// 20/30 fake
	if snap.Status != StatusFake {
		t.Errorf("Expected fake, got %q", snap.Status)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	fixed := Tally{FakeVotes: 30, NonFakeVotes: 20, InvalidVotes: 5}
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		return fixed, nil
	}
	eng, sink := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, ledger)

	first, err := eng.Recalculate(context.Background(), "a1")
	if err != nil {
		t.Fatalf("First recalculation failed: %v", err)
	}
	second, err := eng.Recalculate(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Second recalculation failed: %v", err)
	}

	if first != second {
		t.Errorf("Recomputation is not idempotent: %+v vs %+v", first, second)
	}
	if first.FakeScore != 0.6 || first.Confidence != 0.2 || first.Status != StatusFake {
		t.Errorf("Unexpected snapshot: %+v", first)
	}
	if len(sink.all()) != 1 {
		t.Errorf("Expected exactly one event across both recalculations, got %d", len(sink.all()))
	}
}
