// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/crowdcheck/crowdcheck/cliparse"
	"github.com/crowdcheck/crowdcheck/engine"
	"github.com/crowdcheck/crowdcheck/ledger"
	"github.com/crowdcheck/crowdcheck/middleware"
	"github.com/crowdcheck/crowdcheck/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ArticleHandler struct {
	store *ledger.Store
	eng   *engine.Engine
	cfg   cliparse.Config
}

func NewArticleHandler(store *ledger.Store, eng *engine.Engine, cfg cliparse.Config) *ArticleHandler {
	return &ArticleHandler{store: store, eng: eng, cfg: cfg}
}

// SubmitArticle handles POST /articles
func (h *ArticleHandler) SubmitArticle(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitArticleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.URL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.Submitter == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "submitter is required")
		return
	}

	articleID := uuid.NewString()

	err := h.store.CreateArticle(r.Context(), models.Article{
		ID:          articleID,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Submitter:   req.Submitter,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to insert article", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit article")
		return
	}

	// A fresh article has no votes yet; register it so its snapshot reads
	// pending rather than unknown.
	snap := h.eng.Observe(articleID)

	slog.Info("article submitted", "article_id", articleID, "submitter", req.Submitter)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitArticleResponse{
		ArticleID: articleID,
		Snapshot:  snap,
	})
}

// ListArticles handles GET /articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	offset := parseQueryInt(r, "offset", 0)
	if offset < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	articles, total, err := h.store.ListArticles(r.Context(), limit, offset)
	if err != nil {
		slog.Error("failed to list articles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	list := models.ArticleList{
		Articles: make([]models.ArticleWithSnapshot, 0, len(articles)),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
	for _, a := range articles {
		snap, err := h.currentSnapshot(r, a.ID)
		if err != nil {
			slog.Error("failed to derive snapshot", "article_id", a.ID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to classify article")
			return
		}
		list.Articles = append(list.Articles, models.ArticleWithSnapshot{
			Article:  a,
			Snapshot: snap,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, list)
}

// GetArticle handles GET /articles/{id}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "article_id is required")
		return
	}

	article, err := h.store.GetArticle(r.Context(), articleID)
	if errors.Is(err, ledger.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		slog.Error("failed to query article", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	snap, err := h.currentSnapshot(r, articleID)
	if err != nil {
		slog.Error("failed to derive snapshot", "article_id", articleID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to classify article")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ArticleWithSnapshot{
		Article:  article,
		Snapshot: snap,
	})
}

// currentSnapshot returns the article's in-memory snapshot, deriving one
// from the ledger when the registry has no entry (e.g. after a restart).
func (h *ArticleHandler) currentSnapshot(r *http.Request, articleID string) (engine.Snapshot, error) {
	if snap, ok := h.eng.Snapshot(articleID); ok {
		return snap, nil
	}
	return h.eng.Recalculate(r.Context(), articleID)
}

// parseQueryInt reads an integer query parameter, falling back to def when
// absent or malformed.
func parseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
