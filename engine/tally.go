// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

// Vote result constants
const (
	VoteFake    = "fake"
	VoteNonFake = "non-fake"
)

// Tally holds the raw per-article vote counters. Valid and total counts are
// always derived from the three stored counters so they can never drift.
type Tally struct {
	FakeVotes    int `json:"fake_votes"`
	NonFakeVotes int `json:"non_fake_votes"`
	InvalidVotes int `json:"invalid_votes"`
}

// ValidVotes returns the number of votes that count toward classification.
func (t Tally) ValidVotes() int {
	return t.FakeVotes + t.NonFakeVotes
}

// TotalVotes returns every vote ever cast, including invalidated ones.
func (t Tally) TotalVotes() int {
	return t.ValidVotes() + t.InvalidVotes
}

// apply increments the counter for one incoming vote.
func (t Tally) apply(result string) (Tally, error) {
	switch result {
	case VoteFake:
		t.FakeVotes++
	case VoteNonFake:
		t.NonFakeVotes++
	default:
		return t, &ValidationError{Reason: "unknown vote result: " + result}
	}
	return t, nil
}

// invalidate moves one vote from its valid counter to the invalid counter.
// A move that would drive a counter negative is rejected and the receiver
// is returned unchanged.
func (t Tally) invalidate(previousResult string) (Tally, error) {
	switch previousResult {
	case VoteFake:
		if t.FakeVotes == 0 {
			return t, &ValidationError{Reason: "no fake votes to invalidate"}
		}
		t.FakeVotes--
	case VoteNonFake:
		if t.NonFakeVotes == 0 {
			return t, &ValidationError{Reason: "no non-fake votes to invalidate"}
		}
		t.NonFakeVotes--
	default:
		return t, &ValidationError{Reason: "unknown vote result: " + previousResult}
	}
	t.InvalidVotes++
	return t, nil
}

// validate rejects tallies with negative counters, e.g. from a malformed
// ledger payload.
func (t Tally) validate() error {
	if t.FakeVotes < 0 || t.NonFakeVotes < 0 || t.InvalidVotes < 0 {
		return &ValidationError{Reason: "negative vote counter"}
	}
	return nil
}
