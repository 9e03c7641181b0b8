// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// driverNames maps DATABASE_TYPE values to registered sql drivers
var driverNames = map[string]string{
	"sqlite":   "sqlite",
	"postgres": "postgres",
}

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	driver, ok := driverNames[dbType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	if dbType == "sqlite" {
		url = withSQLitePragmas(url)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbType == "sqlite" {
		// sqlite allows a single writer
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// withSQLitePragmas turns on foreign keys so ON DELETE CASCADE applies
func withSQLitePragmas(url string) string {
	if strings.Contains(url, "foreign_keys") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)"
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are written by the application in UTC so the schema works
// unchanged on sqlite and PostgreSQL.
const schema = `
-- Accounts (one per Google identity)
CREATE TABLE IF NOT EXISTS account (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Sessions
CREATE TABLE IF NOT EXISTS session (
    token TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_account_id ON session(account_id);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    location TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_account_id ON poll(account_id);

-- Options (candidate time slots)
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    starts_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_option_poll_id ON option(poll_id);

-- Availability (one per invitee per poll)
CREATE TABLE IF NOT EXISTS availability (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    account_id TEXT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
    submitted_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    PRIMARY KEY (poll_id, account_id)
);

-- Answers, in the order the invitee submitted them
CREATE TABLE IF NOT EXISTS answer (
    poll_id TEXT NOT NULL,
    account_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    answer TEXT NOT NULL,
    PRIMARY KEY (poll_id, account_id, position),
    FOREIGN KEY (poll_id, account_id) REFERENCES availability(poll_id, account_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_answer_option_id ON answer(option_id);
`
