// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/crowdcheck/crowdcheck/auth"
	"github.com/crowdcheck/crowdcheck/cliparse"
	"github.com/crowdcheck/crowdcheck/engine"
	"github.com/crowdcheck/crowdcheck/ledger"
	"github.com/crowdcheck/crowdcheck/middleware"
	"github.com/crowdcheck/crowdcheck/models"
)

type VoteHandler struct {
	store *ledger.Store
	eng   *engine.Engine
	cfg   cliparse.Config
}

func NewVoteHandler(store *ledger.Store, eng *engine.Engine, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{store: store, eng: eng, cfg: cfg}
}

// RegisterVoter handles POST /voters
// Issues an anonymous voter token; the token is the voter's only identity.
func (h *VoteHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	voterToken, err := auth.GenerateVoterToken()
	if err != nil {
		slog.Error("failed to generate voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{
		VoterToken: voterToken,
	})
}

// CastVote handles POST /articles/{id}/votes
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "article_id is required")
		return
	}

	voterToken := r.Header.Get("X-Voter-Token")
	if voterToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Vote != engine.VoteFake && req.Vote != engine.VoteNonFake {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote must be 'fake' or 'non-fake'")
		return
	}

	// Check the article exists before touching the ledger
	if _, err := h.store.GetArticle(r.Context(), articleID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Article not found")
			return
		}
		slog.Error("failed to query article", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	voteID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate vote ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)
	userAgent := r.Header.Get("User-Agent")

	err = h.store.RecordVote(r.Context(), models.Vote{
		ID:          voteID,
		ArticleID:   articleID,
		VoterToken:  voterToken,
		Result:      req.Vote,
		IPHash:      &ipHash,
		UserAgent:   &userAgent,
		SubmittedAt: time.Now().UTC(),
	})
	if errors.Is(err, ledger.ErrDuplicateVote) {
		middleware.ErrorResponse(w, http.StatusConflict, "Voter has already voted on this article")
		return
	}
	if err != nil {
		slog.Error("failed to record vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	// The ledger row is committed; now fold the vote into the in-memory
	// tally. After a restart the registry may not know the article yet, in
	// which case a full recalculation derives the tally (vote included).
	var snap engine.Snapshot
	if h.eng.Known(articleID) {
		snap, err = h.eng.IngestVote(articleID, req.Vote)
	} else {
		snap, err = h.eng.Recalculate(r.Context(), articleID)
	}
	if err != nil {
		slog.Error("failed to classify after vote", "article_id", articleID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to classify article")
		return
	}

	slog.Info("vote cast", "article_id", articleID, "vote_id", voteID, "result", req.Vote)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:   voteID,
		Snapshot: snap,
	})
}

// InvalidateVote handles POST /articles/{id}/votes/{voteID}/invalidate
// Administrative: flags a fraudulent or duplicate vote. The ledger row is
// kept for audit; only its invalidated flag flips.
func (h *VoteHandler) InvalidateVote(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	voteID := r.PathValue("voteID")
	if articleID == "" || voteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "article_id and vote_id are required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	result, err := h.store.InvalidateVote(r.Context(), articleID, voteID, time.Now().UTC())
	if errors.Is(err, ledger.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Vote not found")
		return
	}
	if errors.Is(err, ledger.ErrAlreadyInvalidated) {
		middleware.ErrorResponse(w, http.StatusConflict, "Vote is already invalidated")
		return
	}
	if err != nil {
		slog.Error("failed to invalidate vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to invalidate vote")
		return
	}

	var snap engine.Snapshot
	if h.eng.Known(articleID) {
		snap, err = h.eng.InvalidateVote(articleID, result)
	} else {
		snap, err = h.eng.Recalculate(r.Context(), articleID)
	}
	if err != nil {
		slog.Error("failed to classify after invalidation", "article_id", articleID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to classify article")
		return
	}

	slog.Info("vote invalidated", "article_id", articleID, "vote_id", voteID)

	middleware.JSONResponse(w, http.StatusOK, models.InvalidateVoteResponse{
		VoteID:   voteID,
		Snapshot: snap,
	})
}
