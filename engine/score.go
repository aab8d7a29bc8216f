// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "math"

// SaturationMultiple controls where the confidence vote-count factor
// saturates: once validVotes reaches SaturationMultiple times the policy's
// MinValidVotes, vote volume no longer discounts confidence. The value is a
// tuning heuristic with no statistical derivation behind it.
const SaturationMultiple = 5

// FakeScore returns the fraction of valid votes marked fake, in [0, 1].
// A tally with no valid votes has a defined, neutral score of 0.
func FakeScore(t Tally) float64 {
	valid := t.ValidVotes()
	if valid == 0 {
		return 0.0
	}
	return float64(t.FakeVotes) / float64(valid)
}

// Confidence combines how one-sided the vote is with how many valid votes
// back it, in [0, 1] rounded to 2 decimal places. Confidence is low both
// near a tie and when few votes have been cast.
func Confidence(t Tally, p Policy) float64 {
	valid := t.ValidVotes()
	if valid == 0 {
		return 0.0
	}

	diff := math.Abs(float64(t.FakeVotes - t.NonFakeVotes))
	ratioDifference := diff / float64(valid)

	// With no configured minimum the factor saturates immediately.
	voteCountFactor := 1.0
	if p.MinValidVotes > 0 {
		voteCountFactor = math.Min(float64(valid)/float64(p.MinValidVotes*SaturationMultiple), 1.0)
	}

	return round2(ratioDifference * voteCountFactor)
}

// round2 rounds to 2 decimal places with round-half-up semantics.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
