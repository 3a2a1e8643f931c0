// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"database/sql"
	"fmt"
	"sort"
)

// TallyResult is the current standing of the next-round vote.
// WinningMysteryID is empty when no winnable mystery has votes.
type TallyResult struct {
	VoteCounts       map[string]int
	WinningMysteryID string
	RoundNumber      int
}

// TallyVotes counts votes for the upcoming round, excluding mysteries
// already played in this session. Ties at the max are broken uniformly
// at random: the tie-break is intentionally non-deterministic, which is
// why the rng is injected.
func TallyVotes(db *sql.DB, rng *Rand, sessionID string) (TallyResult, error) {
	var res TallyResult

	if _, err := getSession(db, sessionID); err != nil {
		return res, err
	}

	roundNumber, err := nextRoundNumber(db, sessionID)
	if err != nil {
		return res, err
	}
	res.RoundNumber = roundNumber
	res.VoteCounts = make(map[string]int)

	// A mystery with a Round row is never replayed, so its votes are
	// dead even if a client managed to cast one.
	rows, err := db.Query(`
		SELECT v.mystery_id, COUNT(*)
		FROM mystery_vote v
		WHERE v.session_id = $1
		  AND v.round_number = $2
		  AND NOT EXISTS (
			SELECT 1 FROM round r
			WHERE r.session_id = v.session_id AND r.mystery_id = v.mystery_id
		  )
		GROUP BY v.mystery_id
	`, sessionID, roundNumber)
	if err != nil {
		return res, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mysteryID string
		var count int
		if err := rows.Scan(&mysteryID, &count); err != nil {
			return res, fmt.Errorf("failed to scan vote count: %w", err)
		}
		res.VoteCounts[mysteryID] = count
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("failed to read vote counts: %w", err)
	}

	if len(res.VoteCounts) == 0 {
		return res, nil
	}

	maxVotes := 0
	for _, count := range res.VoteCounts {
		if count > maxVotes {
			maxVotes = count
		}
	}
	var tied []string
	for mysteryID, count := range res.VoteCounts {
		if count == maxVotes {
			tied = append(tied, mysteryID)
		}
	}
	// Sorted before drawing so a seeded rng yields a reproducible pick.
	sort.Strings(tied)
	res.WinningMysteryID = tied[rng.Intn(len(tied))]

	return res, nil
}
