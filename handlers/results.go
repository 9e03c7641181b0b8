// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/danielhkuo/roodle/cliparse"
	"github.com/danielhkuo/roodle/logging"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, now: time.Now}
}

// GetResults handles GET /api/v1/poll/{id}/results
// Results are computed on every request from the stored availabilities.
// An optional ?tz= names the IANA zone used for the "when" labels.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "invalid time zone")
			return
		}
	}

	poll, err := loadPoll(r.Context(), h.db, pollID)
	if errors.Is(err, errPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "poll not found")
		return
	}
	if err != nil {
		logger.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	records, err := loadAvailabilities(r.Context(), h.db, pollID)
	if err != nil {
		logger.Error("failed to load availabilities", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	middleware.DataResponse(w, http.StatusOK, models.ResultsResponse{
		PollID:      poll.ID,
		Respondents: len(records),
		Ranking:     BuildRanking(poll.Options, records, loc, h.now()),
	})
}
