// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/cliparse"
	"github.com/danielhkuo/roodle/logging"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// ListPolls handles GET /api/v1/poll
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	session, _ := middleware.SessionFromContext(r.Context())

	polls, err := listPolls(r.Context(), h.db, session.AccountID)
	if err != nil {
		logger.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	middleware.DataResponse(w, http.StatusOK, polls)
}

// CreatePoll handles POST /api/v1/poll
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	session, _ := middleware.SessionFromContext(r.Context())

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		logger.Info("failed to parse request body", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	// Validate input
	if len(req.Options) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one option is required")
		return
	}
	for _, o := range req.Options {
		if o.Start.IsZero() || !o.End.After(o.Start) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "end must be after start")
			return
		}
	}

	poll := models.Poll{
		PollBase: models.PollBase{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Options:     make([]models.PollOption, 0, len(req.Options)),
		},
		AccountID: session.AccountID,
	}

	var err error
	if poll.ID, err = auth.GeneratePollID(); err != nil {
		logger.Error("failed to generate poll ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}
	for _, o := range req.Options {
		optionID, err := auth.GeneratePollID()
		if err != nil {
			logger.Error("failed to generate option ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
			return
		}
		poll.Options = append(poll.Options, models.PollOption{ID: optionID, Start: o.Start.UTC(), End: o.End.UTC()})
	}

	if err := h.insertPoll(r, poll); err != nil {
		logger.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	logger.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))

	middleware.DataResponse(w, http.StatusCreated, poll)
}

func (h *PollHandler) insertPoll(r *http.Request, poll models.Poll) error {
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO poll (id, account_id, title, description, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, poll.ID, poll.AccountID, poll.Title, poll.Description, poll.Location, time.Now().UTC())
	if err != nil {
		return err
	}

	for i, o := range poll.Options {
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO option (id, poll_id, position, starts_at, ends_at)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, poll.ID, i, o.Start, o.End)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPoll handles GET /api/v1/poll/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid poll id")
		return
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

	availabilities, err := loadAvailabilities(r.Context(), h.db, pollID)
	if err != nil {
		logger.Error("failed to load availabilities", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	middleware.DataResponse(w, http.StatusOK, models.GetPollResponse{
		Poll:           poll,
		Availabilities: availabilities,
	})
}

// DeletePoll handles DELETE /api/v1/poll/{id}
// Only the owner can delete; anyone else gets the same 404 as a missing poll.
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	session, _ := middleware.SessionFromContext(r.Context())
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	poll, err := loadPoll(r.Context(), h.db, pollID)
	if errors.Is(err, errPollNotFound) || (err == nil && poll.AccountID != session.AccountID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "poll not found")
		return
	}
	if err != nil {
		logger.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	_, err = h.db.ExecContext(r.Context(), `DELETE FROM poll WHERE id = $1 AND account_id = $2`, pollID, session.AccountID)
	if err != nil {
		logger.Error("failed to delete poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	logger.Info("poll deleted", "poll_id", pollID)

	middleware.DataResponse(w, http.StatusOK, poll)
}
