// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/roodle/auth"
	"github.com/danielhkuo/roodle/cliparse"
	"github.com/danielhkuo/roodle/db"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

// TestDBURL is an in-memory sqlite database; each SetupTestDB call gets a
// fresh one.
const TestDBURL = ":memory:"

// TestCookieSecret is long enough to pass config validation
const TestCookieSecret = "test-cookie-secret-0123456789abcdef"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), "sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       TestDBURL,
		DatabaseType:      "sqlite",
		CookieSecret:      TestCookieSecret,
		BaseURL:           "http://localhost:3318",
		GoogleCredentials: `{"clientid":"test-client","secret":"test-secret"}`,
		RateLimit:         "10000-H",
		SessionTTL:        time.Hour,
		LogLevel:          "error",
	}
}

// CreateTestAccount inserts an account for email and returns it
func CreateTestAccount(t *testing.T, conn *sql.DB, email string) models.Account {
	t.Helper()

	acc := models.Account{
		ID:       auth.GenerateSessionToken(),
		Email:    email,
		Username: auth.Username(email),
		Name:     auth.Username(email),
	}
	_, err := conn.Exec(`
		INSERT INTO account (id, email, username, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, acc.ID, acc.Email, acc.Username, acc.Name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return acc
}

// CreateTestSession inserts a session for acc that expires after ttl
func CreateTestSession(t *testing.T, conn *sql.DB, acc models.Account, ttl time.Duration) models.Session {
	t.Helper()

	now := time.Now().UTC()
	session := models.Session{
		Token:     auth.GenerateSessionToken(),
		AccountID: acc.ID,
		Email:     acc.Email,
		ExpiresAt: now.Add(ttl),
	}
	_, err := conn.Exec(`
		INSERT INTO session (token, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.AccountID, now, session.ExpiresAt)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return session
}

// CreateTestPoll creates a poll owned by acc with one option per start
// time. Each option lasts an hour.
func CreateTestPoll(t *testing.T, conn *sql.DB, acc models.Account, title string, starts ...time.Time) models.Poll {
	t.Helper()

	pollID, _ := auth.GeneratePollID()
	poll := models.Poll{
		PollBase:  models.PollBase{Title: title, Options: []models.PollOption{}},
		ID:        pollID,
		AccountID: acc.ID,
	}

	_, err := conn.Exec(`
		INSERT INTO poll (id, account_id, title, description, location, created_at)
		VALUES ($1, $2, $3, '', '', $4)
	`, poll.ID, acc.ID, title, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, start := range starts {
		optionID, _ := auth.GeneratePollID()
		o := models.PollOption{ID: optionID, Start: start.UTC(), End: start.Add(time.Hour).UTC()}
		_, err := conn.Exec(`
			INSERT INTO option (id, poll_id, position, starts_at, ends_at)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, poll.ID, i, o.Start, o.End)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		poll.Options = append(poll.Options, o)
	}

	return poll
}

// SubmitTestVote stores acc's answers for a poll. submittedAt orders
// invitees in results.
func SubmitTestVote(t *testing.T, conn *sql.DB, pollID string, acc models.Account, submittedAt time.Time, answers ...models.OptionAvailability) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO availability (poll_id, account_id, submitted_at)
		VALUES ($1, $2, $3)
	`, pollID, acc.ID, submittedAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test availability: %v", err)
	}

	for i, a := range answers {
		_, err := conn.Exec(`
			INSERT INTO answer (poll_id, account_id, position, option_id, answer)
			VALUES ($1, $2, $3, $4, $5)
		`, pollID, acc.ID, i, a.OptionID, string(a.Answer))
		if err != nil {
			t.Fatalf("Failed to create test answer: %v", err)
		}
	}
}

// WithSession attaches session to the request context the way
// middleware.LoadSession does.
func WithSession(req *http.Request, session models.Session) *http.Request {
	return req.WithContext(middleware.ContextWithSession(req.Context(), session))
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// DecodeData decodes a {"data": ...} response body into v
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	AssertJSON(t, w, &models.DataResponse{Data: v})
}

// AssertError checks the {"error": ...} message of a response
func AssertError(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.Error != expected {
		t.Errorf("Expected error %q, got %q", expected, resp.Error)
	}
}
