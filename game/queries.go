// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"database/sql"
	"fmt"

	"github.com/mhartman/whodunit/models"
)

type sessionRow struct {
	ID               string
	Status           string
	CurrentMysteryID sql.NullString
	Language         string
}

func getSession(db *sql.DB, sessionID string) (sessionRow, error) {
	var s sessionRow
	err := db.QueryRow(`
		SELECT id, status, current_mystery_id, language FROM session WHERE id = $1
	`, sessionID).Scan(&s.ID, &s.Status, &s.CurrentMysteryID, &s.Language)
	if err == sql.ErrNoRows {
		return s, ErrSessionNotFound
	}
	if err != nil {
		return s, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

// nextRoundNumber is one past the highest resolved round. Votes for the
// upcoming round and the Round row eventually written for it share this
// value.
func nextRoundNumber(db *sql.DB, sessionID string) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(round_number), 0) + 1 FROM round WHERE session_id = $1
	`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to compute round number: %w", err)
	}
	return n, nil
}

func mysteryPlayed(db *sql.DB, sessionID, mysteryID string) (bool, error) {
	var played bool
	err := db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM round WHERE session_id = $1 AND mystery_id = $2
		)
	`, sessionID, mysteryID).Scan(&played)
	if err != nil {
		return false, fmt.Errorf("failed to check round existence: %w", err)
	}
	return played, nil
}

type playerRow struct {
	ID                  string
	HasBeenInvestigator bool
}

func activePlayers(db *sql.DB, sessionID string) ([]playerRow, error) {
	rows, err := db.Query(`
		SELECT id, has_been_investigator
		FROM player
		WHERE session_id = $1 AND status = $2
		ORDER BY id
	`, sessionID, models.PlayerActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []playerRow
	for rows.Next() {
		var p playerRow
		if err := rows.Scan(&p.ID, &p.HasBeenInvestigator); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

type sheetRow struct {
	ID   string
	Role string
}

// sheetsByRole returns the mystery's sheets partitioned by role.
func sheetsByRole(db *sql.DB, mysteryID string) (investigator, guilty []sheetRow, innocents []sheetRow, err error) {
	rows, err := db.Query(`
		SELECT id, role FROM character_sheet WHERE mystery_id = $1 ORDER BY id
	`, mysteryID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to query sheets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s sheetRow
		if err := rows.Scan(&s.ID, &s.Role); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		switch s.Role {
		case models.RoleInvestigator:
			investigator = append(investigator, s)
		case models.RoleGuilty:
			guilty = append(guilty, s)
		default:
			innocents = append(innocents, s)
		}
	}
	return investigator, guilty, innocents, rows.Err()
}

// UnplayedMysteryCount counts mysteries in the session's language that
// have no Round for this session yet.
func UnplayedMysteryCount(db *sql.DB, sessionID string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM mystery m
		WHERE m.language = (SELECT language FROM session WHERE id = $1)
		  AND NOT EXISTS (
			SELECT 1 FROM round r WHERE r.session_id = $1 AND r.mystery_id = m.id
		  )
	`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unplayed mysteries: %w", err)
	}
	return count, nil
}

// markCompleted flips the session to completed. Idempotent.
func markCompleted(db *sql.DB, sessionID string) error {
	_, err := db.Exec(`
		UPDATE session SET status = $1 WHERE id = $2 AND status <> $1
	`, models.StatusCompleted, sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// assignmentRole returns the role on the sheet assigned to a player for
// a mystery, or sql.ErrNoRows if no assignment exists.
func assignmentRole(db *sql.DB, sessionID, playerID, mysteryID string) (string, error) {
	var role string
	err := db.QueryRow(`
		SELECT cs.role
		FROM player_assignment pa
		JOIN character_sheet cs ON pa.sheet_id = cs.id
		WHERE pa.session_id = $1 AND pa.player_id = $2 AND pa.mystery_id = $3
	`, sessionID, playerID, mysteryID).Scan(&role)
	return role, err
}
