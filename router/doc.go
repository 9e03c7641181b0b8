// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Roodle API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, provider)

NewHandler wraps it with CORS, session loading and rate limiting, and is
what the server runs:

	handler, err := router.NewHandler(db, cfg, provider)

# Endpoints

Health:

	GET /health

Sign-in:

	GET /login                - Redirect to Google
	GET /auth/google/callback - Finish sign-in, set session cookie
	GET /logout               - Drop the session
	GET /api/v1/me            - Current account (session)

Every /api/v1 route requires a session cookie.

Polls:

	GET    /api/v1/poll      - Caller's polls
	POST   /api/v1/poll      - Create poll
	GET    /api/v1/poll/{id} - Poll and availabilities
	DELETE /api/v1/poll/{id} - Delete poll (owner)

Voting:

	POST /api/v1/poll/{id}/vote - Submit or replace availability
	GET  /api/v1/poll/{id}/vote - Caller's availability

Results and export:

	GET /api/v1/poll/{id}/results                     - Ranked options
	GET /api/v1/poll/{id}/option/{optionId}/export    - Calendar links
	GET /api/v1/poll/{id}/option/{optionId}/google    - Google Calendar redirect
	GET /api/v1/poll/{id}/option/{optionId}/ics       - ICS download
*/
package router
