// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/cliparse"
	"github.com/danielhkuo/roodle/logging"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

type VotingHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	ipKey []byte
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{
		db:    db,
		cfg:   cfg,
		ipKey: auth.DeriveKey(cfg.CookieSecret, auth.PurposeIPHash),
	}
}

func invalidAnswerMessage() string {
	names := make([]string, len(models.AllAnswers))
	for i, a := range models.AllAnswers {
		names[i] = string(a)
	}
	return "invalid availability. needs to be one of: " + strings.Join(names, ", ")
}

// SubmitVote handles POST /api/v1/poll/{id}/vote
// A second submission replaces the caller's previous answers.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	session, _ := middleware.SessionFromContext(r.Context())
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		logger.Info("failed to parse request body", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	for _, a := range req {
		if !slices.Contains(models.AllAnswers, a.Answer) {
			logger.Info("invalid availability", "answer", a.Answer)
			middleware.ErrorResponse(w, http.StatusBadRequest, invalidAnswerMessage())
			return
		}
	}

	options, err := loadOptions(r.Context(), h.db, pollID)
	if err != nil {
		logger.Error("failed to load options", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}
	if len(options) == 0 {
		// every poll has at least one option
		middleware.ErrorResponse(w, http.StatusNotFound, "poll not found")
		return
	}
	for _, a := range req {
		if !slices.ContainsFunc(options, func(o models.PollOption) bool { return o.ID == a.OptionID }) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "invalid option id")
			return
		}
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.ipKey)
	if err := h.replaceVote(r.Context(), pollID, session.AccountID, req, ipHash, r.UserAgent()); err != nil {
		logger.Error("failed to store vote", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	vote, err := loadAvailability(r.Context(), h.db, pollID, session.AccountID)
	if err != nil {
		logger.Error("failed to load vote", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	logger.Info("vote submitted", "poll_id", pollID, "answers", len(req))

	middleware.DataResponse(w, http.StatusOK, vote)
}

// replaceVote swaps the caller's answers in one transaction. The first
// submission time is kept so invitees stay in the order they first answered.
func (h *VotingHandler) replaceVote(ctx context.Context, pollID, accountID string, answers models.SubmitVoteRequest, ipHash, userAgent string) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	submittedAt := time.Now().UTC()
	var previous time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT submitted_at FROM availability WHERE poll_id = $1 AND account_id = $2
	`, pollID, accountID).Scan(&previous)
	switch {
	case err == nil:
		submittedAt = previous.UTC()
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to query availability: %w", err)
	}

	// answers go with it
	_, err = tx.ExecContext(ctx, `DELETE FROM availability WHERE poll_id = $1 AND account_id = $2`, pollID, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO availability (poll_id, account_id, submitted_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, accountID, submittedAt, ipHash, userAgent)
	if err != nil {
		return fmt.Errorf("failed to insert availability: %w", err)
	}

	for i, a := range answers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO answer (poll_id, account_id, position, option_id, answer)
			VALUES ($1, $2, $3, $4, $5)
		`, pollID, accountID, i, a.OptionID, string(a.Answer))
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
	}

	return tx.Commit()
}

// GetMyVote handles GET /api/v1/poll/{id}/vote
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	session, _ := middleware.SessionFromContext(r.Context())
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	vote, err := loadAvailability(r.Context(), h.db, pollID, session.AccountID)
	if errors.Is(err, errVoteNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "vote not found")
		return
	}
	if err != nil {
		logger.Error("failed to load vote", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	middleware.DataResponse(w, http.StatusOK, vote)
}
