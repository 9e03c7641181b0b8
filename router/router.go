// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/cliparse"
	"github.com/danielhkuo/roodle/handlers"
	"github.com/danielhkuo/roodle/logging"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

// healthTimeout bounds the database ping in /health
const healthTimeout = 2 * time.Second

func NewRouter(db *sql.DB, cfg cliparse.Config, provider auth.IdentityProvider) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	exportHandler := handlers.NewExportHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(db, cfg, provider)

	// Health check
	mux.HandleFunc("GET /health", health(db))

	// Sign-in
	mux.HandleFunc("GET /login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("GET /auth/google/callback", middleware.WithLogging(authHandler.Callback))
	mux.HandleFunc("GET /api/v1/me", middleware.WithLogging(middleware.RequireSession(authHandler.Me)))

	// Polls
	mux.HandleFunc("GET /api/v1/poll", middleware.WithLogging(middleware.RequireSession(pollHandler.ListPolls)))
	mux.HandleFunc("POST /api/v1/poll", middleware.WithLogging(middleware.RequireSession(pollHandler.CreatePoll)))
	mux.HandleFunc("GET /api/v1/poll/{id}", middleware.WithLogging(middleware.RequireSession(pollHandler.GetPoll)))
	mux.HandleFunc("DELETE /api/v1/poll/{id}", middleware.WithLogging(middleware.RequireSession(pollHandler.DeletePoll)))

	// Voting
	mux.HandleFunc("POST /api/v1/poll/{id}/vote", middleware.WithLogging(middleware.RequireSession(votingHandler.SubmitVote)))
	mux.HandleFunc("GET /api/v1/poll/{id}/vote", middleware.WithLogging(middleware.RequireSession(votingHandler.GetMyVote)))

	// Results and calendar export expose invitee emails
	mux.HandleFunc("GET /api/v1/poll/{id}/results", middleware.WithLogging(middleware.RequireSession(resultsHandler.GetResults)))
	mux.HandleFunc("GET /api/v1/poll/{id}/option/{optionId}/export", middleware.WithLogging(middleware.RequireSession(exportHandler.GetExport)))
	mux.HandleFunc("GET /api/v1/poll/{id}/option/{optionId}/google", middleware.WithLogging(middleware.RequireSession(exportHandler.RedirectGoogle)))
	mux.HandleFunc("GET /api/v1/poll/{id}/option/{optionId}/ics", middleware.WithLogging(middleware.RequireSession(exportHandler.DownloadICS)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("roodle API v1"))
	})

	return mux
}

// NewHandler wraps the router with CORS, session loading and rate limiting
func NewHandler(db *sql.DB, cfg cliparse.Config, provider auth.IdentityProvider) (http.Handler, error) {
	limit, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit: %w", err)
	}

	sessions := handlers.NewSessionStore(db)
	key := auth.DeriveKey(cfg.CookieSecret, auth.PurposeSessionCookie)

	mux := NewRouter(db, cfg, provider)
	cors := middleware.CORS(cfg.AllowedOrigins()...)
	return cors(middleware.LoadSession(sessions, key)(limit(mux))), nil
}

func health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := models.HealthResponse{Server: "healthy", DB: "healthy"}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			logging.FromContext(r.Context()).Error("database ping failed", "error", err)
			resp.DB = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		middleware.JSONResponse(w, status, resp)
	}
}
