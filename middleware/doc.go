// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/v1/poll", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms), tagged with a random request_id. Handlers log through the
same logger with logging.FromContext(r.Context()).

# Sessions

LoadSession reads the signed roodle_session cookie, resolves it once per
request, and stores the resulting models.Session in the request context:

	handler := middleware.LoadSession(sessions, cookieKey)(mux)

The session is never modified after it is attached. Handlers read it
with SessionFromContext, and RequireSession answers 401 when it is
missing:

	mux.HandleFunc("GET /api/v1/me", middleware.RequireSession(authHandler.Me))

# Rate Limiting

RateLimit uses ulule/limiter with an in-memory store. Signed-in callers
are keyed by account, everyone else by client IP:

	limit, err := middleware.RateLimit("10000-H")
	handler := middleware.LoadSession(sessions, key)(limit(mux))

# CORS Middleware

Allow credentialed cross-origin requests from the app's own origins only:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins()...)(handler),
	}

# JSON Helpers

	middleware.DataResponse(w, http.StatusOK, poll)              // {"data": ...}
	middleware.ErrorResponse(w, http.StatusNotFound, "poll not found") // {"error": ...}

Parse JSON request bodies:

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request payload")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for rate limiting and vote auditing.
*/
package middleware
