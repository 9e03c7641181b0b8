// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

var (
	errPollNotFound = errors.New("poll not found")
	errVoteNotFound = errors.New("vote not found")
)

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadPoll reads a poll and its options in position order
func loadPoll(ctx context.Context, q queryer, pollID string) (models.Poll, error) {
	var p models.Poll
	err := q.QueryRowContext(ctx, `
		SELECT id, account_id, title, description, location
		FROM poll WHERE id = $1
	`, pollID).Scan(&p.ID, &p.AccountID, &p.Title, &p.Description, &p.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return p, errPollNotFound
	}
	if err != nil {
		return p, fmt.Errorf("failed to query poll: %w", err)
	}

	p.Options, err = loadOptions(ctx, q, pollID)
	if err != nil {
		return p, err
	}
	return p, nil
}

func loadOptions(ctx context.Context, q queryer, pollID string) ([]models.PollOption, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, starts_at, ends_at
		FROM option WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.PollOption{}
	for rows.Next() {
		var o models.PollOption
		if err := rows.Scan(&o.ID, &o.Start, &o.End); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		o.Start, o.End = o.Start.UTC(), o.End.UTC()
		options = append(options, o)
	}
	return options, rows.Err()
}

// listPolls returns the polls owned by an account, newest first
func listPolls(ctx context.Context, db *sql.DB, accountID string) ([]models.Poll, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, account_id, title, description, location
		FROM poll WHERE account_id = $1
		ORDER BY created_at DESC, id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}

	polls := []models.Poll{}
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Title, &p.Description, &p.Location); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// Options are read after the poll cursor is closed so this also works
	// on a single-connection pool.
	for i := range polls {
		polls[i].Options, err = loadOptions(ctx, db, polls[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return polls, nil
}

// loadAvailabilities returns every invitee's answers for a poll, ordered by
// submission time and then by answer position.
func loadAvailabilities(ctx context.Context, q queryer, pollID string) ([]models.PollAccountAvailability, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT av.account_id, acc.email, an.option_id, an.answer
		FROM availability av
		JOIN account acc ON acc.id = av.account_id
		LEFT JOIN answer an ON an.poll_id = av.poll_id AND an.account_id = av.account_id
		WHERE av.poll_id = $1
		ORDER BY av.submitted_at, av.account_id, an.position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availabilities: %w", err)
	}
	defer rows.Close()

	records := []models.PollAccountAvailability{}
	for rows.Next() {
		var accountID, email string
		var optionID, answer sql.NullString
		if err := rows.Scan(&accountID, &email, &optionID, &answer); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}

		n := len(records)
		if n == 0 || records[n-1].AccountID != accountID {
			records = append(records, models.PollAccountAvailability{
				PollID:         pollID,
				AccountID:      accountID,
				AccountEmail:   email,
				Availabilities: []models.OptionAvailability{},
			})
			n++
		}
		if optionID.Valid {
			records[n-1].Availabilities = append(records[n-1].Availabilities, models.OptionAvailability{
				OptionID: optionID.String,
				Answer:   models.Answer(answer.String),
			})
		}
	}
	return records, rows.Err()
}

// loadAvailability returns one invitee's answers for a poll
func loadAvailability(ctx context.Context, q queryer, pollID, accountID string) (models.PollAccountAvailability, error) {
	rec := models.PollAccountAvailability{PollID: pollID, AccountID: accountID, Availabilities: []models.OptionAvailability{}}

	err := q.QueryRowContext(ctx, `
		SELECT acc.email FROM availability av
		JOIN account acc ON acc.id = av.account_id
		WHERE av.poll_id = $1 AND av.account_id = $2
	`, pollID, accountID).Scan(&rec.AccountEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, errVoteNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("failed to query availability: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT option_id, answer FROM answer
		WHERE poll_id = $1 AND account_id = $2
		ORDER BY position
	`, pollID, accountID)
	if err != nil {
		return rec, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.OptionAvailability
		if err := rows.Scan(&a.OptionID, &a.Answer); err != nil {
			return rec, fmt.Errorf("failed to scan answer: %w", err)
		}
		rec.Availabilities = append(rec.Availabilities, a)
	}
	return rec, rows.Err()
}

// upsertAccount finds the account for an email or creates it
func upsertAccount(ctx context.Context, db *sql.DB, identity auth.Identity) (models.Account, error) {
	acc := models.Account{Email: identity.Email}
	err := db.QueryRowContext(ctx, `
		SELECT id, username, name FROM account WHERE email = $1
	`, identity.Email).Scan(&acc.ID, &acc.Username, &acc.Name)

	if err == nil {
		if identity.Name != "" && identity.Name != acc.Name {
			if _, err := db.ExecContext(ctx, `UPDATE account SET name = $1 WHERE id = $2`, identity.Name, acc.ID); err != nil {
				return acc, fmt.Errorf("failed to update account: %w", err)
			}
			acc.Name = identity.Name
		}
		return acc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return acc, fmt.Errorf("failed to query account: %w", err)
	}

	acc.ID = auth.GenerateAccountID()
	acc.Username = auth.Username(identity.Email)
	acc.Name = identity.Name
	_, err = db.ExecContext(ctx, `
		INSERT INTO account (id, email, username, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, acc.ID, acc.Email, acc.Username, acc.Name, time.Now().UTC())
	if err != nil {
		return acc, fmt.Errorf("failed to insert account: %w", err)
	}
	return acc, nil
}

// SessionStore keeps browser sessions in the session table
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

// Create starts a session for an account
func (s *SessionStore) Create(ctx context.Context, acc models.Account, ttl time.Duration) (models.Session, error) {
	now := s.now().UTC()
	session := models.Session{
		Token:     auth.GenerateSessionToken(),
		AccountID: acc.ID,
		Email:     acc.Email,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (token, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.AccountID, now, session.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return session, nil
}

// ResolveSession implements middleware.SessionResolver
func (s *SessionStore) ResolveSession(ctx context.Context, token string) (models.Session, error) {
	session := models.Session{Token: token}
	err := s.db.QueryRowContext(ctx, `
		SELECT s.account_id, a.email, s.expires_at
		FROM session s
		JOIN account a ON a.id = s.account_id
		WHERE s.token = $1
	`, token).Scan(&session.AccountID, &session.Email, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, middleware.ErrNoSession
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	session.ExpiresAt = session.ExpiresAt.UTC()
	if !s.now().Before(session.ExpiresAt) {
		return models.Session{}, middleware.ErrNoSession
	}
	return session, nil
}

// Delete ends a session
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
