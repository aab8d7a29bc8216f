// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRecalculateReplacesTally(t *testing.T) {
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		return Tally{FakeVotes: 12, NonFakeVotes: 6, InvalidVotes: 1}, nil
	}
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, ledger)

	// Seed divergent in-memory state, then let the ledger win
	eng.IngestVote("a1", VoteNonFake)

	snap, err := eng.Recalculate(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}
	if snap.ValidVotes != 18 || snap.InvalidVotes != 1 {
		t.Errorf("Tally not replaced wholesale: %+v", snap)
	}
	if snap.Status != StatusFake {
		t.Errorf("Expected fake (12/18 >= 0.6), got %q", snap.Status)
	}
}

func TestRecalculateLedgerError(t *testing.T) {
	boom := errors.New("ledger unreachable")
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		return Tally{}, boom
	}
	eng, sink := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 2}, ledger)

	eng.IngestVote("a1", VoteFake)
	eng.IngestVote("a1", VoteFake)
	before, _ := eng.Snapshot("a1")
	eventsBefore := len(sink.all())

	_, err := eng.Recalculate(context.Background(), "a1")
	var rerr *RecalculationError
	if !errors.As(err, &rerr) {
		t.Fatalf("Expected RecalculationError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped ledger error, got %v", err)
	}

	// Prior snapshot and tally retained, no events emitted
	after, _ := eng.Snapshot("a1")
	if after != before {
		t.Errorf("Snapshot changed on failed recalculation: %+v vs %+v", after, before)
	}
	if len(sink.all()) != eventsBefore {
		t.Error("Failed recalculation emitted events")
	}
}

func TestRecalculateMalformedLedgerData(t *testing.T) {
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		return Tally{FakeVotes: -3}, nil
	}
	eng, _ := newTestEngine(t, DefaultPolicy(), ledger)

	_, err := eng.Recalculate(context.Background(), "a1")
	var rerr *RecalculationError
	if !errors.As(err, &rerr) {
		t.Fatalf("Expected RecalculationError for negative counters, got %v", err)
	}
}

// One article's failed recalculation must not affect another article.
func TestRecalculateFailureIsIsolated(t *testing.T) {
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		if articleID == "broken" {
			return Tally{}, errors.New("unreachable")
		}
		return Tally{FakeVotes: 10}, nil
	}
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, ledger)

	if _, err := eng.Recalculate(context.Background(), "broken"); err == nil {
		t.Fatal("Expected error for broken article")
	}
	snap, err := eng.Recalculate(context.Background(), "healthy")
	if err != nil {
		t.Fatalf("Healthy article failed: %v", err)
	}
	if snap.Status != StatusFake {
		t.Errorf("Expected fake, got %q", snap.Status)
	}
}

// Two concurrent recalculations may be served by the ledger with different
// reads, but the final tally must equal exactly one of them in full.
func TestConcurrentRecalculationsNeverMix(t *testing.T) {
	reads := []Tally{
		{FakeVotes: 10, NonFakeVotes: 5, InvalidVotes: 0},
		{FakeVotes: 12, NonFakeVotes: 6, InvalidVotes: 1},
	}
	var calls atomic.Int32
	release := make(chan struct{})
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		n := calls.Add(1) - 1
		<-release
		return reads[int(n)%len(reads)], nil
	}
	eng, _ := newTestEngine(t, DefaultPolicy(), ledger)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng.Recalculate(context.Background(), "a1")
		}()
	}

	// Let both callers pile up behind the ledger, then release it
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	snap, ok := eng.Snapshot("a1")
	if !ok {
		t.Fatal("No snapshot committed")
	}

	matches := false
	for _, r := range reads {
		if snap.ValidVotes == r.ValidVotes() && snap.InvalidVotes == r.InvalidVotes {
			matches = true
		}
	}
	if !matches {
		t.Errorf("Final tally mixes ledger reads: %+v", snap)
	}
}

// Concurrent callers for the same article coalesce onto one ledger read.
func TestRecalculateCoalesces(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		calls.Add(1)
		close(started)
		<-release
		return Tally{FakeVotes: 8, NonFakeVotes: 2}, nil
	}
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, ledger)

	const callers = 5
	results := make(chan Snapshot, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap, err := eng.Recalculate(context.Background(), "a1")
		if err != nil {
			t.Errorf("Recalculate failed: %v", err)
			return
		}
		results <- snap
	}()
	<-started

	// These join the in-flight read instead of issuing their own
	for i := 0; i < callers-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := eng.Recalculate(context.Background(), "a1")
			if err != nil {
				t.Errorf("Recalculate failed: %v", err)
				return
			}
			results <- snap
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	if calls.Load() != 1 {
		t.Errorf("Expected one ledger read, got %d", calls.Load())
	}
	var first *Snapshot
	for snap := range results {
		if first == nil {
			s := snap
			first = &s
			continue
		}
		if snap != *first {
			t.Errorf("Coalesced callers got different snapshots: %+v vs %+v", snap, *first)
		}
	}
}

// A caller that stops waiting must not abort the commit: the completed
// ledger read still lands.
func TestAbandonedRecalculationStillCommits(t *testing.T) {
	release := make(chan struct{})
	ledger := func(ctx context.Context, articleID string) (Tally, error) {
		<-release
		return Tally{FakeVotes: 9, NonFakeVotes: 1}, nil
	}
	eng, _ := newTestEngine(t, Policy{Threshold: 0.6, MinValidVotes: 5}, ledger)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := eng.Recalculate(ctx, "a1")
		errs <- err
	}()

	cancel()
	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	// The ledger read finishes after the caller gave up
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap, ok := eng.Snapshot("a1"); ok && snap.ValidVotes == 10 {
			if snap.Status != StatusFake {
				t.Errorf("Expected fake, got %q", snap.Status)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Abandoned recalculation never committed")
}
