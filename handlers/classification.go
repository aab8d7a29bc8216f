// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/crowdcheck/crowdcheck/auth"
	"github.com/crowdcheck/crowdcheck/cliparse"
	"github.com/crowdcheck/crowdcheck/engine"
	"github.com/crowdcheck/crowdcheck/ledger"
	"github.com/crowdcheck/crowdcheck/middleware"
	"github.com/crowdcheck/crowdcheck/models"
)

type ClassificationHandler struct {
	store *ledger.Store
	eng   *engine.Engine
	cfg   cliparse.Config
}

func NewClassificationHandler(store *ledger.Store, eng *engine.Engine, cfg cliparse.Config) *ClassificationHandler {
	return &ClassificationHandler{store: store, eng: eng, cfg: cfg}
}

// GetClassification handles GET /articles/{id}/classification
func (h *ClassificationHandler) GetClassification(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "article_id is required")
		return
	}

	if !h.articleExists(w, r, articleID) {
		return
	}

	snap, ok := h.eng.Snapshot(articleID)
	if !ok {
		var err error
		snap, err = h.eng.Recalculate(r.Context(), articleID)
		if err != nil {
			slog.Error("failed to derive snapshot", "article_id", articleID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to classify article")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// Recalculate handles POST /articles/{id}/recalculate
// Admin-triggered authoritative re-read of the vote ledger. Concurrent
// requests for the same article share a single recalculation.
func (h *ClassificationHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "article_id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if !h.articleExists(w, r, articleID) {
		return
	}

	snap, err := h.eng.Recalculate(r.Context(), articleID)
	if err != nil {
		var recalcErr *engine.RecalculationError
		if errors.As(err, &recalcErr) {
			slog.Error("recalculation failed", "article_id", articleID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Recalculation failed; previous classification retained")
			return
		}
		slog.Error("recalculation aborted", "article_id", articleID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Recalculation failed")
		return
	}

	slog.Info("article recalculated", "article_id", articleID, "status", snap.Status)

	middleware.JSONResponse(w, http.StatusOK, models.RecalculateResponse{Snapshot: snap})
}

// GetPolicy handles GET /policy
func (h *ClassificationHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.PolicyResponse{Policy: h.eng.Policy()})
}

// UpdatePolicy handles PUT /policy
// Installing a new policy reclassifies every known article under it.
func (h *ClassificationHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.UpdatePolicyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	policy := engine.Policy{
		Threshold:     req.Threshold,
		MinValidVotes: req.MinValidVotes,
	}
	if err := h.eng.SetPolicy(policy); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("policy updated", "threshold", policy.Threshold, "min_valid_votes", policy.MinValidVotes)

	middleware.JSONResponse(w, http.StatusOK, models.PolicyResponse{Policy: policy})
}

// GetStatusEvents handles GET /articles/{id}/status-events
func (h *ClassificationHandler) GetStatusEvents(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "article_id is required")
		return
	}

	if !h.articleExists(w, r, articleID) {
		return
	}

	events, err := h.store.ListStatusEvents(r.Context(), articleID)
	if err != nil {
		slog.Error("failed to list status events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}

// GetStats handles GET /stats
func (h *ClassificationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	articles, votes, invalidated, err := h.store.Stats(r.Context())
	if err != nil {
		slog.Error("failed to compute stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatsResponse{
		Articles:          articles,
		TotalVotes:        votes,
		InvalidatedVotes:  invalidated,
		TotalVotesDisplay: humanize.Comma(int64(votes)),
	})
}

// articleExists writes a 404 or 500 and returns false when the article
// cannot be served.
func (h *ClassificationHandler) articleExists(w http.ResponseWriter, r *http.Request, articleID string) bool {
	_, err := h.store.GetArticle(r.Context(), articleID)
	if errors.Is(err, ledger.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Article not found")
		return false
	}
	if err != nil {
		slog.Error("failed to query article", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	return true
}
