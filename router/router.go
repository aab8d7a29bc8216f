// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/crowdcheck/crowdcheck/cliparse"
	"github.com/crowdcheck/crowdcheck/engine"
	"github.com/crowdcheck/crowdcheck/handlers"
	"github.com/crowdcheck/crowdcheck/ledger"
	"github.com/crowdcheck/crowdcheck/middleware"
)

func NewRouter(store *ledger.Store, eng *engine.Engine, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	articleHandler := handlers.NewArticleHandler(store, eng, cfg)
	voteHandler := handlers.NewVoteHandler(store, eng, cfg)
	classHandler := handlers.NewClassificationHandler(store, eng, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Article submission and retrieval (public)
	mux.HandleFunc("POST /articles", middleware.WithLogging(articleHandler.SubmitArticle))
	mux.HandleFunc("GET /articles", middleware.WithLogging(articleHandler.ListArticles))
	mux.HandleFunc("GET /articles/{id}", middleware.WithLogging(articleHandler.GetArticle))

	// Voting (public, voter token required for casting)
	mux.HandleFunc("POST /voters", middleware.WithLogging(voteHandler.RegisterVoter))
	mux.HandleFunc("POST /articles/{id}/votes", middleware.WithLogging(voteHandler.CastVote))

	// Classification and audit (public)
	mux.HandleFunc("GET /articles/{id}/classification", middleware.WithLogging(classHandler.GetClassification))
	mux.HandleFunc("GET /articles/{id}/status-events", middleware.WithLogging(classHandler.GetStatusEvents))
	mux.HandleFunc("GET /policy", middleware.WithLogging(classHandler.GetPolicy))
	mux.HandleFunc("GET /stats", middleware.WithLogging(classHandler.GetStats))

	// Moderation (admin operations)
	mux.HandleFunc("POST /articles/{id}/votes/{voteID}/invalidate", middleware.WithLogging(voteHandler.InvalidateVote))
	mux.HandleFunc("POST /articles/{id}/recalculate", middleware.WithLogging(classHandler.Recalculate))
	mux.HandleFunc("PUT /policy", middleware.WithLogging(classHandler.UpdatePolicy))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("crowdcheck API v1"))
	})

	return mux
}
