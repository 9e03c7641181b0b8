// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Roodle API server.

Roodle is a meeting scheduler: an organizer proposes time slots, invitees
mark each one available, maybe or unavailable, and the slots are ranked
by how well they suit everyone. The winning slot can be added to Google
Calendar or downloaded as an ICS file.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=roodle.db COOKIE_SECRET=... go run .

Or with flags:

	go run . -p 8080 -t postgres -d "postgres://..."

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - COOKIE_SECRET (--cookie-secret): at least 32 bytes, signs cookies
  - OAUTH2_GOOGLE_CREDENTIALS_FILE (--google-credentials) or
    OAUTH2_GOOGLE_CREDENTIALS_CONTENTS: Google OAuth client JSON

Optional settings:

  - PORT (-p): Server port (default: 8080)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BASE_URL (--base-url): public URL used for redirects and ICS links
  - CORS_ORIGINS (--cors-origins): extra origins allowed to call the API
  - RATE_LIMIT (--rate): requests per client, e.g. 10000-H
  - SESSION_TTL (--session-ttl): session lifetime (default: 720h)
  - LOG_LEVEL (--log-level): debug, info, warn or error

# Architecture

  - handlers: HTTP request handlers (polls, votes, results, export, sign-in)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, rate limiting, JSON helpers
  - calendar: Google Calendar links, ICS rendering and delivery
  - models: Domain and request/response types
  - auth: Tokens, cookie signing and the Google identity provider
  - db: Connection and schema creation
  - logging: slog setup and request loggers
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
