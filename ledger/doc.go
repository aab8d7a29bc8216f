// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger persists articles and the authoritative vote ledger.

Every cast vote is one immutable row; administrative invalidation flips a
flag rather than deleting, so the full history is always re-derivable.
Store.Counts aggregates the ledger into an engine.Tally and is the read the
classification engine's RecalculationCoordinator is wired to:

	store := ledger.New(db)
	eng, err := engine.New(policy, store.Counts)

Queries use $N placeholders and portable SQL so the same code runs against
lib/pq in production and modernc.org/sqlite in tests.
*/
package ledger
