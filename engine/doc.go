// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine converts raw per-article vote tallies into a truth-status
verdict with a confidence metric.

# Pipeline

Every tally or policy change re-runs the same pipeline:

	Tally -> FakeScore -> Confidence -> Classify -> Snapshot

FakeScore is the fraction of valid votes marked fake. Confidence combines
vote-ratio separation with valid-vote volume and saturates once the count
reaches SaturationMultiple times the policy minimum. Classify maps the
results to one of four statuses:

  - pending: no vote history exists yet
  - insufficient: fewer valid votes than Policy.MinValidVotes
  - fake: fake score at or above Policy.Threshold (boundary inclusive)
  - non-fake: everything else

# Registry

An Engine owns one registry entry per article and is the only place tallies
live. Incremental paths (IngestVote, InvalidateVote) apply deltas;
Recalculate is the only operation that replaces a tally wholesale, from an
injected LedgerReadFunc. Updates to one article are serialized, concurrent
recalculations for the same article are coalesced, and Snapshot always
returns a copy.

# Events

Registered EventSinks receive exactly one StatusChangeEvent per distinct
status transition, delivered synchronously with the commit that caused it.

# Errors

Invalid inputs are rejected with *ValidationError, leaving state untouched.
Failed ledger reads surface as *RecalculationError; the previous snapshot
and tally are retained. Neither is ever fatal: one article's failure never
affects another article's classification.
*/
package engine
