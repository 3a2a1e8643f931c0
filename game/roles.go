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

// DistributeResult reports what DistributeRoles did.
type DistributeResult struct {
	AssignmentCount int
	UnassignedCount int
	AlreadyStarted  bool
}

// DistributeRoles transitions the session into playing the given mystery
// and hands out character sheets: exactly one investigator, exactly one
// guilty, remaining players innocent.
//
// The session row's status column is the lock. A conditional UPDATE flips
// it; callers whose update affects no row conclude someone else already
// started this mystery and return a no-op success. Safe to invoke
// concurrently and repeatedly.
func DistributeRoles(db *sql.DB, rng *Rand, sessionID, mysteryID string) (DistributeResult, error) {
	var res DistributeResult

	sess, err := getSession(db, sessionID)
	if err != nil {
		return res, err
	}
	if sess.Status == models.StatusCompleted {
		return res, ErrSessionCompleted
	}

	// Duplicate trigger from a concurrent vote cascade: already playing
	// this mystery means the work is done.
	if sess.Status == models.StatusPlaying && sess.CurrentMysteryID.Valid && sess.CurrentMysteryID.String == mysteryID {
		res.AlreadyStarted = true
		return res, nil
	}

	var mysteryExists bool
	err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM mystery WHERE id = $1)`, mysteryID).Scan(&mysteryExists)
	if err != nil {
		return res, fmt.Errorf("failed to query mystery: %w", err)
	}
	if !mysteryExists {
		return res, ErrMysteryNotFound
	}

	played, err := mysteryPlayed(db, sessionID, mysteryID)
	if err != nil {
		return res, err
	}
	if played {
		return res, ErrAlreadyPlayed
	}

	// Lock acquisition: compare-and-swap on the session row. Exactly one
	// concurrent caller sees RowsAffected == 1.
	result, err := db.Exec(`
		UPDATE session
		SET status = $1, current_mystery_id = $2
		WHERE id = $3
		  AND status <> $4
		  AND NOT (status = $1 AND COALESCE(current_mystery_id, '') = $2)
	`, models.StatusPlaying, mysteryID, sessionID, models.StatusCompleted)
	if err != nil {
		return res, fmt.Errorf("failed to acquire round lock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return res, fmt.Errorf("failed to read lock result: %w", err)
	}
	if affected == 0 {
		// Someone else flipped the row between our read and the update.
		res.AlreadyStarted = true
		return res, nil
	}

	// From here on, validation failures roll the lock back so a session
	// is never left playing with no assignments.
	rollback := func() {
		var prior interface{}
		if sess.CurrentMysteryID.Valid {
			prior = sess.CurrentMysteryID.String
		}
		_, rbErr := db.Exec(`
			UPDATE session
			SET status = $1, current_mystery_id = $2
			WHERE id = $3 AND status = $4 AND COALESCE(current_mystery_id, '') = $5
		`, sess.Status, prior, sessionID, models.StatusPlaying, mysteryID)
		if rbErr != nil {
			slog.Error("failed to roll back round lock", "error", rbErr, "session_id", sessionID)
		}
	}

	// Accused is a per-round marker; clear carry-over from the previous
	// round before counting players.
	_, err = db.Exec(`
		UPDATE player SET status = $1 WHERE session_id = $2 AND status = $3
	`, models.PlayerActive, sessionID, models.PlayerAccused)
	if err != nil {
		rollback()
		return res, fmt.Errorf("failed to reset accused players: %w", err)
	}

	players, err := activePlayers(db, sessionID)
	if err != nil {
		rollback()
		return res, err
	}
	if len(players) < MinPlayers {
		rollback()
		return res, ErrInsufficientPlayers
	}

	invSheets, guiltySheets, innocentSheets, err := sheetsByRole(db, mysteryID)
	if err != nil {
		rollback()
		return res, err
	}
	if len(invSheets) != 1 || len(guiltySheets) != 1 {
		rollback()
		return res, ErrMissingRoles
	}

	// Investigator fairness: draw from players who have never held the
	// role; fall back to everyone once all have.
	var fresh, veterans []playerRow
	for _, p := range players {
		if p.HasBeenInvestigator {
			veterans = append(veterans, p)
		} else {
			fresh = append(fresh, p)
		}
	}
	pool := fresh
	if len(pool) == 0 {
		pool = veterans
	}
	investigator := pool[rng.Intn(len(pool))]

	var rest []playerRow
	for _, p := range players {
		if p.ID != investigator.ID {
			rest = append(rest, p)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	guilty := rest[0]
	innocents := rest[1:]
	rng.Shuffle(len(innocentSheets), func(i, j int) {
		innocentSheets[i], innocentSheets[j] = innocentSheets[j], innocentSheets[i]
	})

	type pairing struct {
		playerID string
		sheetID  string
	}
	assignments := []pairing{
		{investigator.ID, invSheets[0].ID},
		{guilty.ID, guiltySheets[0].ID},
	}
	for i, p := range innocents {
		if i >= len(innocentSheets) {
			break
		}
		assignments = append(assignments, pairing{p.ID, innocentSheets[i].ID})
	}
	if len(innocents) > len(innocentSheets) {
		res.UnassignedCount = len(innocents) - len(innocentSheets)
		unassigned := make([]string, 0, res.UnassignedCount)
		for _, p := range innocents[len(innocentSheets):] {
			unassigned = append(unassigned, p.ID)
		}
		slog.Warn("more players than innocent sheets; some players unassigned",
			"session_id", sessionID,
			"mystery_id", mysteryID,
			"unassigned_players", unassigned,
		)
	}

	tx, err := db.Begin()
	if err != nil {
		rollback()
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE player SET has_been_investigator = TRUE WHERE id = $1
	`, investigator.ID)
	if err != nil {
		rollback()
		return res, fmt.Errorf("failed to mark investigator: %w", err)
	}

	// Upsert so a lobby->playing retry that reselects roles does not
	// trip the (session, player, mystery) key.
	now := time.Now()
	for _, a := range assignments {
		_, err = tx.Exec(`
			INSERT INTO player_assignment (session_id, player_id, mystery_id, sheet_id, assigned_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (session_id, player_id, mystery_id)
			DO UPDATE SET sheet_id = excluded.sheet_id, assigned_at = excluded.assigned_at
		`, sessionID, a.playerID, mysteryID, a.sheetID, now)
		if err != nil {
			rollback()
			return res, fmt.Errorf("failed to upsert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		rollback()
		return res, fmt.Errorf("failed to commit assignments: %w", err)
	}

	// Ready flags are lobby-only state. Failure here is cosmetic.
	if _, err := db.Exec(`DELETE FROM ready_state WHERE session_id = $1`, sessionID); err != nil {
		slog.Warn("failed to clear ready states", "error", err, "session_id", sessionID)
	}

	res.AssignmentCount = len(assignments)

	slog.Info("roles distributed",
		"session_id", sessionID,
		"mystery_id", mysteryID,
		"assignments", res.AssignmentCount,
		"unassigned", res.UnassignedCount,
	)

	return res, nil
}
