// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SubmitArticleRequest: title, url, description, submitter
  - CastVoteRequest: vote ("fake" or "non-fake")
  - UpdatePolicyRequest: threshold, min_valid_votes

# Response Types

Types for JSON responses:

  - SubmitArticleResponse: article_id, snapshot
  - RegisterVoterResponse: voter_token
  - CastVoteResponse: vote_id, snapshot
  - InvalidateVoteResponse: vote_id, snapshot
  - RecalculateResponse: snapshot
  - PolicyResponse: policy
  - StatsResponse: article/vote counts with a humanized display value
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Article: submitted news item
  - ArticleWithSnapshot: article plus its current classification
  - Vote: one ledger row (voter token and IP hash are never serialized)
  - StatusEvent: persisted classification transition

Classification statuses, vote results, and the Snapshot type itself live in
the engine package; models only wraps them for the wire.
*/
package models
