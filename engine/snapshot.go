// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

// Snapshot is the computed classification for an article at a point in
// time. Snapshots are replaced wholesale on every recomputation, never
// merged, and callers always receive copies rather than live references.
//
// Snapshot deliberately carries no timestamp: recomputing with an unchanged
// tally and policy yields a bit-identical value, which is how idempotence
// is checked.
type Snapshot struct {
	ArticleID    string  `json:"article_id"`
	FakeScore    float64 `json:"fake_score"`
	Confidence   float64 `json:"confidence"`
	Status       string  `json:"status"`
	ValidVotes   int     `json:"valid_votes"`
	InvalidVotes int     `json:"invalid_votes"`
}

// computeSnapshot runs the score -> confidence -> status pipeline for one
// article. hasVotes distinguishes a brand-new article (pending) from one
// whose votes were all invalidated (classified by the normal rules).
func computeSnapshot(articleID string, t Tally, p Policy, hasVotes bool) Snapshot {
	if !hasVotes {
		return Snapshot{ArticleID: articleID, Status: StatusPending}
	}
	return Snapshot{
		ArticleID:    articleID,
		FakeScore:    FakeScore(t),
		Confidence:   Confidence(t, p),
		Status:       Classify(t, p),
		ValidVotes:   t.ValidVotes(),
		InvalidVotes: t.InvalidVotes,
	}
}
