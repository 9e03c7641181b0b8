// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Roodle API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll list, creation, lookup and deletion
  - VotingHandler: Availability submission and lookup
  - ResultsHandler: Ranked tally of a poll
  - ExportHandler: Google Calendar links and ICS files for one option
  - AuthHandler: Google sign-in, sign-out and the current account

Handlers are created via constructor functions that accept *sql.DB and Config:

	pollHandler := handlers.NewPollHandler(db, cfg)

AuthHandler also takes the auth.IdentityProvider used for sign-in.

# Sessions

Handlers behind middleware.RequireSession read the caller with
middleware.SessionFromContext. SessionStore keeps sessions in the
database and implements middleware.SessionResolver:

	sessions := handlers.NewSessionStore(db)
	handler := middleware.LoadSession(sessions, key)(mux)

# Polls and Votes

	GET    /api/v1/poll           → ListPolls (caller's polls)
	POST   /api/v1/poll           → CreatePoll
	GET    /api/v1/poll/{id}      → GetPoll (poll and every availability)
	DELETE /api/v1/poll/{id}      → DeletePoll (owner only)
	POST   /api/v1/poll/{id}/vote → SubmitVote (replaces earlier answers)
	GET    /api/v1/poll/{id}/vote → GetMyVote

# Tally

tally.go holds the pure part of the results:

	agg := handlers.Aggregate(poll.Options, records)
	ranked := handlers.RankOptions(poll.Options, agg)

Aggregate groups answers per option in invitee order. RankOptions
scores each option (available +3, maybe +1, unavailable -3) and orders
them best-first, earlier start winning ties. BuildRanking adds the rank
labels and grouped answers served by GetResults.
*/
package handlers
