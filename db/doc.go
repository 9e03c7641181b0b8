// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open accepts the DATABASE_TYPE value and the connection string:

	conn, err := db.Open(ctx, "sqlite", "file:roodle.db")
	conn, err := db.Open(ctx, "postgres", "postgres://...")

sqlite uses modernc.org/sqlite (pure Go), with foreign keys enabled and a
single open connection. postgres uses github.com/lib/pq. Both accept $1
style placeholders, so handlers share the same SQL.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - account: One row per Google identity
  - session: Signed-in browser sessions
  - poll: Poll metadata, owned by an account
  - option: Candidate time slots, ordered by position
  - availability: One submission per invitee per poll
  - answer: The invitee's answers, ordered by position

# Relationships

	account 1──* session
	account 1──* poll
	poll 1──* option
	poll 1──* availability
	availability 1──* answer
	option 1──* answer

All foreign keys use ON DELETE CASCADE, so deleting a poll removes its
options, availability, and answers.
*/
package db
