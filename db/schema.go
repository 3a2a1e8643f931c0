// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// dbType is "postgres" or "sqlite"; the variants differ only in
// timestamp defaults.
func CreateSchema(db *sql.DB, dbType string) error {
	s := schemaPostgres
	if dbType == "sqlite" {
		s = schemaSQLite
	}
	_, err := db.Exec(s)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schemaPostgres = `
-- Sessions
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    join_code TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'lobby' CHECK (status IN ('lobby', 'playing', 'completed')),
    current_mystery_id TEXT,
    language TEXT NOT NULL DEFAULT 'en',
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_session_join_code ON session(join_code);
CREATE INDEX IF NOT EXISTS idx_session_status ON session(status);

-- Players
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'quit', 'accused', 'kicked')),
    has_been_investigator BOOLEAN NOT NULL DEFAULT FALSE,
    score INTEGER NOT NULL DEFAULT 0,
    player_token TEXT NOT NULL UNIQUE,
    last_heartbeat TIMESTAMP NOT NULL DEFAULT NOW(),
    joined_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_player_session_id ON player(session_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_player_session_name ON player(session_id, LOWER(name));

-- Mysteries
CREATE TABLE IF NOT EXISTS mystery (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    innocent_words TEXT NOT NULL,
    guilty_words TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT 'en',
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Character sheets
CREATE TABLE IF NOT EXISTS character_sheet (
    id TEXT PRIMARY KEY,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('investigator', 'guilty', 'innocent')),
    character_name TEXT NOT NULL,
    briefing TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_character_sheet_mystery ON character_sheet(mystery_id);

-- Player assignments
CREATE TABLE IF NOT EXISTS player_assignment (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    sheet_id TEXT NOT NULL REFERENCES character_sheet(id) ON DELETE CASCADE,
    assigned_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (session_id, player_id, mystery_id)
);

CREATE INDEX IF NOT EXISTS idx_assignment_session_mystery ON player_assignment(session_id, mystery_id);

-- Rounds (one per resolved accusation; existence = mystery played)
CREATE TABLE IF NOT EXISTS round (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    round_number INTEGER NOT NULL,
    investigator_player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    accused_player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    was_correct BOOLEAN NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (session_id, mystery_id),
    UNIQUE (session_id, round_number)
);

-- Votes for the next round's mystery
CREATE TABLE IF NOT EXISTS mystery_vote (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    round_number INTEGER NOT NULL,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (session_id, player_id, round_number)
);

CREATE INDEX IF NOT EXISTS idx_vote_session_round ON mystery_vote(session_id, round_number);

-- Lobby ready flags
CREATE TABLE IF NOT EXISTS ready_state (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    is_ready BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (session_id, player_id)
);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    join_code TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'lobby' CHECK (status IN ('lobby', 'playing', 'completed')),
    current_mystery_id TEXT,
    language TEXT NOT NULL DEFAULT 'en',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_session_join_code ON session(join_code);
CREATE INDEX IF NOT EXISTS idx_session_status ON session(status);

CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'quit', 'accused', 'kicked')),
    has_been_investigator BOOLEAN NOT NULL DEFAULT FALSE,
    score INTEGER NOT NULL DEFAULT 0,
    player_token TEXT NOT NULL UNIQUE,
    last_heartbeat TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_player_session_id ON player(session_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_player_session_name ON player(session_id, LOWER(name));

CREATE TABLE IF NOT EXISTS mystery (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    innocent_words TEXT NOT NULL,
    guilty_words TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT 'en',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS character_sheet (
    id TEXT PRIMARY KEY,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('investigator', 'guilty', 'innocent')),
    character_name TEXT NOT NULL,
    briefing TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_character_sheet_mystery ON character_sheet(mystery_id);

CREATE TABLE IF NOT EXISTS player_assignment (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    sheet_id TEXT NOT NULL REFERENCES character_sheet(id) ON DELETE CASCADE,
    assigned_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, player_id, mystery_id)
);

CREATE INDEX IF NOT EXISTS idx_assignment_session_mystery ON player_assignment(session_id, mystery_id);

CREATE TABLE IF NOT EXISTS round (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    round_number INTEGER NOT NULL,
    investigator_player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    accused_player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    was_correct BOOLEAN NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, mystery_id),
    UNIQUE (session_id, round_number)
);

CREATE TABLE IF NOT EXISTS mystery_vote (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    round_number INTEGER NOT NULL,
    mystery_id TEXT NOT NULL REFERENCES mystery(id) ON DELETE CASCADE,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, player_id, round_number)
);

CREATE INDEX IF NOT EXISTS idx_vote_session_round ON mystery_vote(session_id, round_number);

CREATE TABLE IF NOT EXISTS ready_state (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    player_id TEXT NOT NULL REFERENCES player(id) ON DELETE CASCADE,
    is_ready BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, player_id)
);
`
