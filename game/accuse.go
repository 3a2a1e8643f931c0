// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mhartman/whodunit/models"
)

// AccusationResult reports the outcome of an accusation. When
// AlreadyResolved is set the values come from the previously persisted
// Round, so page reloads and concurrent submissions observe the same
// answer.
type AccusationResult struct {
	WasCorrect       bool
	AccusedRole      string
	RoundNumber      int
	AlreadyResolved  bool
	SessionCompleted bool
}

// SubmitAccusation records the investigator's accusation for the
// session's current mystery. The Round insert is the exactly-once gate:
// at most one Round exists per (session, mystery), and losers of the
// insert race return the winner's result.
func SubmitAccusation(db *sql.DB, sessionID, accuserPlayerID, accusedPlayerID string) (AccusationResult, error) {
	var res AccusationResult

	sess, err := getSession(db, sessionID)
	if err != nil {
		return res, err
	}
	if sess.Status == models.StatusCompleted {
		return res, ErrSessionCompleted
	}
	if sess.Status != models.StatusPlaying || !sess.CurrentMysteryID.Valid {
		return res, ErrNoCurrentMystery
	}
	mysteryID := sess.CurrentMysteryID.String

	if accuserPlayerID == accusedPlayerID {
		return res, ErrSelfAccusation
	}

	accuserRole, err := assignmentRole(db, sessionID, accuserPlayerID, mysteryID)
	if err == sql.ErrNoRows {
		return res, ErrNotInvestigator
	}
	if err != nil {
		return res, fmt.Errorf("failed to query accuser assignment: %w", err)
	}
	if accuserRole != models.RoleInvestigator {
		return res, ErrNotInvestigator
	}

	accusedRole, err := assignmentRole(db, sessionID, accusedPlayerID, mysteryID)
	if err == sql.ErrNoRows {
		return res, ErrNotAssigned
	}
	if err != nil {
		return res, fmt.Errorf("failed to query accused assignment: %w", err)
	}

	wasCorrect := accusedRole == models.RoleGuilty
	roundNumber, err := nextRoundNumber(db, sessionID)
	if err != nil {
		return res, err
	}

	tx, err := db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ON CONFLICT DO NOTHING makes the insert the race arbiter: the
	// loser sees zero rows affected and reads the winner's Round.
	result, err := tx.Exec(`
		INSERT INTO round (session_id, mystery_id, round_number, investigator_player_id, accused_player_id, was_correct, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
	`, sessionID, mysteryID, roundNumber, accuserPlayerID, accusedPlayerID, wasCorrect, time.Now())
	if err != nil {
		return res, fmt.Errorf("failed to insert round: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return res, fmt.Errorf("failed to read insert result: %w", err)
	}

	if affected == 0 {
		// Lost the race (or a reload resubmitted): return the persisted
		// resolution.
		var existing models.Round
		err := db.QueryRow(`
			SELECT round_number, accused_player_id, was_correct
			FROM round WHERE session_id = $1 AND mystery_id = $2
		`, sessionID, mysteryID).Scan(&existing.RoundNumber, &existing.AccusedPlayerID, &existing.WasCorrect)
		if err != nil {
			return res, fmt.Errorf("failed to read existing round: %w", err)
		}
		existingRole, err := assignmentRole(db, sessionID, existing.AccusedPlayerID, mysteryID)
		if err != nil {
			return res, fmt.Errorf("failed to read accused role: %w", err)
		}
		res.WasCorrect = existing.WasCorrect
		res.AccusedRole = existingRole
		res.RoundNumber = existing.RoundNumber
		res.AlreadyResolved = true
		return res, nil
	}

	// Scoring follows deterministically from role and correctness, and
	// is committed atomically with the Round so it applies exactly once.
	if wasCorrect {
		_, err = tx.Exec(`
			UPDATE player SET score = score + $1 WHERE id = $2
		`, ScoreInvestigatorCorrect, accuserPlayerID)
		if err != nil {
			return res, fmt.Errorf("failed to score investigator: %w", err)
		}
	} else {
		_, err = tx.Exec(`
			UPDATE player SET score = score + $1
			WHERE id = (
				SELECT pa.player_id
				FROM player_assignment pa
				JOIN character_sheet cs ON pa.sheet_id = cs.id
				WHERE pa.session_id = $2 AND pa.mystery_id = $3 AND cs.role = $4
			)
		`, ScoreGuiltyUncaught, sessionID, mysteryID, models.RoleGuilty)
		if err != nil {
			return res, fmt.Errorf("failed to score guilty player: %w", err)
		}
		if accusedRole == models.RoleInnocent {
			_, err = tx.Exec(`
				UPDATE player SET score = score + $1 WHERE id = $2
			`, ScoreInnocentAccused, accusedPlayerID)
			if err != nil {
				return res, fmt.Errorf("failed to score accused innocent: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit round: %w", err)
	}

	res.WasCorrect = wasCorrect
	res.AccusedRole = accusedRole
	res.RoundNumber = roundNumber

	// Drives the "blood splatter" UI state; purely presentational, so a
	// failure is logged rather than surfaced.
	_, err = db.Exec(`
		UPDATE player SET status = $1 WHERE id = $2 AND status = $3
	`, models.PlayerAccused, accusedPlayerID, models.PlayerActive)
	if err != nil {
		slog.Warn("failed to mark accused player", "error", err, "player_id", accusedPlayerID)
	}

	// Terminal-state detection belongs to the controller: with no
	// unplayed mysteries left there is nothing to vote on.
	remaining, err := UnplayedMysteryCount(db, sessionID)
	if err != nil {
		slog.Warn("failed to check remaining mysteries", "error", err, "session_id", sessionID)
	} else if remaining == 0 {
		if err := markCompleted(db, sessionID); err != nil {
			slog.Warn("failed to mark session completed", "error", err, "session_id", sessionID)
		} else {
			res.SessionCompleted = true
		}
	}

	slog.Info("accusation recorded",
		"session_id", sessionID,
		"mystery_id", mysteryID,
		"round", roundNumber,
		"was_correct", wasCorrect,
	)

	return res, nil
}
