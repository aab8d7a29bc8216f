// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "testing"

func TestFakeScore(t *testing.T) {
	tests := []struct {
		name     string
		tally    Tally
		expected float64
	}{
		{"no votes", Tally{}, 0.0},
		{"only invalid votes", Tally{InvalidVotes: 7}, 0.0},
		{"all fake", Tally{FakeVotes: 4}, 1.0},
		{"all non-fake", Tally{NonFakeVotes: 9}, 0.0},
		{"even split", Tally{FakeVotes: 5, NonFakeVotes: 5}, 0.5},
		{"mixed votes with invalidations", Tally{FakeVotes: 30, NonFakeVotes: 20, InvalidVotes: 5}, 0.6},
		{"invalid votes excluded", Tally{FakeVotes: 3, NonFakeVotes: 1, InvalidVotes: 100}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FakeScore(tt.tally)
			if result != tt.expected {
				t.Errorf("FakeScore(%+v) = %f, want %f", tt.tally, result, tt.expected)
			}
		})
	}
}

// The non-fake share shown by consumers is 1 - fakeScore, so the two must
// partition exactly whenever any valid vote exists.
func TestFakeScoreComplement(t *testing.T) {
	tallies := []Tally{
		{FakeVotes: 1},
		{FakeVotes: 1, NonFakeVotes: 2},
		{FakeVotes: 30, NonFakeVotes: 20, InvalidVotes: 5},
		{FakeVotes: 7, NonFakeVotes: 3},
	}

	for _, tally := range tallies {
		score := FakeScore(tally)
		if score+(1-score) != 1.0 {
			t.Errorf("complement broken for %+v: score=%f", tally, score)
		}
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		tally    Tally
		policy   Policy
		expected float64
	}{
		{
			"no votes",
			Tally{},
			Policy{Threshold: 0.6, MinValidVotes: 5},
			0.0,
		},
		{
			"30/20 with min 5 saturates",
			Tally{FakeVotes: 30, NonFakeVotes: 20, InvalidVotes: 5},
			Policy{Threshold: 0.6, MinValidVotes: 5},
			0.20, // |30-20|/50 * min(50/25, 1) = 0.2 * 1
		},
		{
			"unanimous but few votes",
			Tally{FakeVotes: 2},
			Policy{Threshold: 0.6, MinValidVotes: 5},
			0.08, // 1.0 * 2/25
		},
		{
			"dead tie",
			Tally{FakeVotes: 50, NonFakeVotes: 50},
			Policy{Threshold: 0.6, MinValidVotes: 5},
			0.0,
		},
		{
			"zero minimum saturates immediately",
			Tally{FakeVotes: 1},
			Policy{Threshold: 0.6, MinValidVotes: 0},
			1.0,
		},
		{
			"rounds half up",
			Tally{FakeVotes: 9, NonFakeVotes: 7},
			Policy{Threshold: 0.6, MinValidVotes: 0},
			0.13, // 2/16 = 0.125 -> 0.13
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Confidence(tt.tally, tt.policy)
			if result != tt.expected {
				t.Errorf("Confidence(%+v, %+v) = %f, want %f", tt.tally, tt.policy, result, tt.expected)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0.0, 0.0},
		{0.125, 0.13},
		{0.124, 0.12},
		{0.2, 0.2},
		{2.0 / 3.0, 0.67},
		{1.0, 1.0},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.expected {
			t.Errorf("round2(%f) = %f, want %f", tt.in, got, tt.expected)
		}
	}
}
