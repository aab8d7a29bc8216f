// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the CrowdCheck API.

# Handler Types

Each handler is a struct with store, engine, and config dependencies:

  - ArticleHandler: Article submission and retrieval
  - VoteHandler: Voter registration, vote casting, vote invalidation
  - ClassificationHandler: Snapshots, recalculation, policy, audit, stats

Handlers are created via constructor functions:

	articleHandler := handlers.NewArticleHandler(store, eng, cfg)

# Article Flow

	POST /articles      → SubmitArticle (starts pending)
	GET  /articles      → ListArticles (paginated, with snapshots)
	GET  /articles/{id} → GetArticle

# Voting Flow

Voters are anonymous; a token is their only identity:

	POST /voters              → RegisterVoter (returns voter_token)
	POST /articles/{id}/votes → CastVote (one vote per voter per article)

Vote casting requires the X-Voter-Token header. Every vote lands in the
durable ledger first, then updates the in-memory tally.

# Classification

	GET  /articles/{id}/classification → GetClassification
	POST /articles/{id}/recalculate    → Recalculate (admin)
	GET  /policy                       → GetPolicy
	PUT  /policy                       → UpdatePolicy (admin, reclassifies all)
	GET  /articles/{id}/status-events  → GetStatusEvents
	GET  /stats                        → GetStats

Admin operations require the X-Admin-Key header. Moderation:

	POST /articles/{id}/votes/{voteID}/invalidate → InvalidateVote (admin)

Invalidation keeps the ledger row for audit and flips its invalidated
flag; the vote moves from its valid counter to the invalid counter.
*/
package handlers
