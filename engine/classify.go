// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

// Classification status constants
const (
	StatusPending      = "pending"
	StatusInsufficient = "insufficient"
	StatusFake         = "fake"
	StatusNonFake      = "non-fake"
)

// Classify maps a tally and policy to a status. The rules are re-evaluated
// from scratch on every change; no history is accumulated:
//
//  1. fewer valid votes than the policy minimum -> insufficient
//  2. fake score at or above the threshold -> fake (boundary inclusive)
//  3. otherwise -> non-fake
//
// Classify assumes the article has vote history. An article with no history
// at all is StatusPending, which the registry assigns before any tally
// exists and never re-enters afterward.
func Classify(t Tally, p Policy) string {
	if t.ValidVotes() < p.MinValidVotes {
		return StatusInsufficient
	}
	if FakeScore(t) >= p.Threshold {
		return StatusFake
	}
	return StatusNonFake
}
