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

// VoteOutcome reports a vote submission and whether it triggered the
// next-round cascade.
type VoteOutcome struct {
	RoundNumber      int
	NextRoundStarted bool
	SessionCompleted bool
}

// SubmitVote upserts (or, with a nil mysteryID, clears) the player's
// vote for the upcoming round. When every player with status active or
// accused has voted, the submission itself runs the cascade: tally, then
// role distribution for the winner. The last voter's request carries the
// side effect; redundant concurrent cascades collapse on the
// distribution lock.
func SubmitVote(db *sql.DB, rng *Rand, sessionID, playerID string, mysteryID *string) (VoteOutcome, error) {
	var out VoteOutcome

	sess, err := getSession(db, sessionID)
	if err != nil {
		return out, err
	}
	if sess.Status == models.StatusCompleted {
		return out, ErrSessionCompleted
	}

	var playerStatus string
	err = db.QueryRow(`
		SELECT status FROM player WHERE id = $1 AND session_id = $2
	`, playerID, sessionID).Scan(&playerStatus)
	if err == sql.ErrNoRows {
		return out, ErrPlayerNotFound
	}
	if err != nil {
		return out, fmt.Errorf("failed to query player: %w", err)
	}
	if playerStatus != models.PlayerActive && playerStatus != models.PlayerAccused {
		return out, ErrPlayerInactive
	}

	// Voting is only open while no round is unresolved: in the lobby
	// before the first round, or after the current mystery's accusation.
	if sess.Status == models.StatusPlaying && sess.CurrentMysteryID.Valid {
		resolved, err := mysteryPlayed(db, sessionID, sess.CurrentMysteryID.String)
		if err != nil {
			return out, err
		}
		if !resolved {
			return out, ErrRoundInProgress
		}
	}

	roundNumber, err := nextRoundNumber(db, sessionID)
	if err != nil {
		return out, err
	}
	out.RoundNumber = roundNumber

	if mysteryID == nil {
		_, err := db.Exec(`
			DELETE FROM mystery_vote
			WHERE session_id = $1 AND player_id = $2 AND round_number = $3
		`, sessionID, playerID, roundNumber)
		if err != nil {
			return out, fmt.Errorf("failed to clear vote: %w", err)
		}
		return out, nil
	}

	var mysteryExists bool
	err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM mystery WHERE id = $1)`, *mysteryID).Scan(&mysteryExists)
	if err != nil {
		return out, fmt.Errorf("failed to query mystery: %w", err)
	}
	if !mysteryExists {
		return out, ErrMysteryNotFound
	}

	played, err := mysteryPlayed(db, sessionID, *mysteryID)
	if err != nil {
		return out, err
	}
	if played {
		return out, ErrAlreadyPlayed
	}

	// One vote per (session, player, round); re-votes are last-write-wins.
	_, err = db.Exec(`
		INSERT INTO mystery_vote (session_id, player_id, round_number, mystery_id, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, player_id, round_number)
		DO UPDATE SET mystery_id = excluded.mystery_id, updated_at = excluded.updated_at
	`, sessionID, playerID, roundNumber, *mysteryID, time.Now())
	if err != nil {
		return out, fmt.Errorf("failed to upsert vote: %w", err)
	}

	var voterCount, activeCount int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM mystery_vote WHERE session_id = $1 AND round_number = $2
	`, sessionID, roundNumber).Scan(&voterCount)
	if err != nil {
		return out, fmt.Errorf("failed to count votes: %w", err)
	}
	err = db.QueryRow(`
		SELECT COUNT(*) FROM player WHERE session_id = $1 AND status IN ($2, $3)
	`, sessionID, models.PlayerActive, models.PlayerAccused).Scan(&activeCount)
	if err != nil {
		return out, fmt.Errorf("failed to count active players: %w", err)
	}

	if voterCount < activeCount {
		return out, nil
	}

	tally, err := TallyVotes(db, rng, sessionID)
	if err != nil {
		return out, err
	}
	if tally.WinningMysteryID == "" {
		// Everyone voted but nothing is winnable: no unplayed mysteries
		// remain, so the session is over.
		if err := markCompleted(db, sessionID); err != nil {
			return out, err
		}
		out.SessionCompleted = true
		slog.Info("session completed: no unplayed mysteries", "session_id", sessionID)
		return out, nil
	}

	if _, err := DistributeRoles(db, rng, sessionID, tally.WinningMysteryID); err != nil {
		return out, err
	}
	// A concurrent last vote may have won the lock instead; either way
	// the next round is underway.
	out.NextRoundStarted = true

	slog.Info("vote cascade started next round",
		"session_id", sessionID,
		"mystery_id", tally.WinningMysteryID,
		"round", roundNumber,
	)

	return out, nil
}
