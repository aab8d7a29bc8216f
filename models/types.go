package models

import (
	"time"

	"github.com/crowdcheck/crowdcheck/engine"
)

// Request types

type SubmitArticleRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Submitter   string `json:"submitter"`
}

type CastVoteRequest struct {
	Vote string `json:"vote"` // "fake" or "non-fake"
}

type UpdatePolicyRequest struct {
	Threshold     float64 `json:"threshold"`
	MinValidVotes int     `json:"min_valid_votes"`
}

// Response types

type SubmitArticleResponse struct {
	ArticleID string          `json:"article_id"`
	Snapshot  engine.Snapshot `json:"snapshot"`
}

type RegisterVoterResponse struct {
	VoterToken string `json:"voter_token"`
}

type CastVoteResponse struct {
	VoteID   string          `json:"vote_id"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

type InvalidateVoteResponse struct {
	VoteID   string          `json:"vote_id"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

type RecalculateResponse struct {
	Snapshot engine.Snapshot `json:"snapshot"`
}

type PolicyResponse struct {
	Policy engine.Policy `json:"policy"`
}

type StatsResponse struct {
	Articles          int    `json:"articles"`
	TotalVotes        int    `json:"total_votes"`
	InvalidatedVotes  int    `json:"invalidated_votes"`
	TotalVotesDisplay string `json:"total_votes_display"`
}

// Domain types

type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Submitter   string    `json:"submitter"`
	CreatedAt   time.Time `json:"created_at"`
}

type ArticleWithSnapshot struct {
	Article  Article         `json:"article"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

type ArticleList struct {
	Articles []ArticleWithSnapshot `json:"articles"`
	Total    int                   `json:"total"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type Vote struct {
	ID            string     `json:"id"`
	ArticleID     string     `json:"article_id"`
	VoterToken    string     `json:"-"` // Never expose in JSON
	Result        string     `json:"result"`
	Invalidated   bool       `json:"invalidated"`
	IPHash        *string    `json:"-"` // Never expose in JSON
	UserAgent     *string    `json:"-"` // Never expose in JSON
	SubmittedAt   time.Time  `json:"submitted_at"`
	InvalidatedAt *time.Time `json:"invalidated_at,omitempty"`
}

type StatusEvent struct {
	ID         string    `json:"id"`
	ArticleID  string    `json:"article_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
