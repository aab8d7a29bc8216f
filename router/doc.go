// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the CrowdCheck API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, eng, cfg)

# Endpoints

Health:

	GET /health

Articles (public):

	POST /articles      - Submit a news item
	GET  /articles      - Paginated listing with snapshots
	GET  /articles/{id} - One article with snapshot

Voting (public, requires X-Voter-Token for casting):

	POST /voters              - Issue a voter token
	POST /articles/{id}/votes - Cast a fake / non-fake vote

Classification (public):

	GET /articles/{id}/classification - Current snapshot
	GET /articles/{id}/status-events  - Audit trail
	GET /policy                       - Current policy
	GET /stats                        - Service-wide totals

Moderation (admin, requires X-Admin-Key):

	POST /articles/{id}/votes/{voteID}/invalidate - Flag a vote
	POST /articles/{id}/recalculate               - Authoritative re-read
	PUT  /policy                                  - Install a new policy

# Handler Initialization

The router creates handler instances with dependency injection:

	articleHandler := handlers.NewArticleHandler(store, eng, cfg)
	voteHandler := handlers.NewVoteHandler(store, eng, cfg)
	classHandler := handlers.NewClassificationHandler(store, eng, cfg)

All handlers receive the ledger store, the classification engine, and the
configuration.
*/
package router
