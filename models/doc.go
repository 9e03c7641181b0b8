// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Poll: id, title, description, location, ordered options, owning account
  - PollOption: id, start, end
  - PollAccountAvailability: one invitee's answers for one poll
  - OptionAvailability: option_id, answer
  - Account: id, email, username, name
  - Session: the authenticated caller of a request (never serialized)

Answers are one of available, maybe, or unavailable:

	models.AnswerAvailable
	models.AnswerMaybe
	models.AnswerUnavailable

# Request Types

  - CreatePollRequest: title, description, location, options [{start, end}]
  - SubmitVoteRequest: [{option_id, answer}]

# Response Types

Successful responses are wrapped in DataResponse:

	{"data": {...}}

Errors use ErrorResponse with a plain text message:

	{"error": "poll not found"}

Payload types include GetPollResponse, ResultsResponse, ExportResponse,
MeResponse, and HealthResponse.

# JSON Conventions

  - Field names use snake_case
  - Timestamps are RFC 3339
  - Optional poll fields are omitted when empty
*/
package models
