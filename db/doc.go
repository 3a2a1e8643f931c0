// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Both Postgres and SQLite variants are provided; they differ only in
timestamp defaults (NOW() vs CURRENT_TIMESTAMP).

# Tables

The schema includes:

  - session: game instance, join code, lifecycle status, current mystery
  - player: participants with status, score, investigator history
  - mystery: immutable scenario content
  - character_sheet: role briefings per mystery
  - player_assignment: player -> sheet mapping per (session, mystery)
  - round: resolved accusations, at most one per (session, mystery)
  - mystery_vote: next-round votes, at most one per (session, player, round)
  - ready_state: ephemeral lobby ready flags

# Relationships

	session 1──* player
	session 1──* round
	session 1──* mystery_vote
	session 1──* player_assignment
	mystery 1──* character_sheet
	player  1──* player_assignment

All foreign keys use ON DELETE CASCADE.

# Concurrency

The session.status column doubles as the round-start lock: role
distribution performs a conditional UPDATE on it and only the caller whose
update affects a row proceeds. Unique constraints on player names, rounds,
and votes are the remaining race guards; there is no other locking.
*/
package db
