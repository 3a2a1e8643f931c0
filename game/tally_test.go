// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"testing"
	"time"

	"github.com/mhartman/whodunit/models"
	"github.com/mhartman/whodunit/testutil"
)

func TestTallyVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	sessionID, _, _ := testutil.CreateTestSession(t, db, cfg, models.StatusLobby)
	ids, _ := testutil.AddTestPlayers(t, db, sessionID, 5)
	mysteryA := testutil.CreateTestMystery(t, db, "Mystery A", 3)
	mysteryB := testutil.CreateTestMystery(t, db, "Mystery B", 3)

	for _, id := range ids[:3] {
		testutil.AddTestVote(t, db, sessionID, id, 1, mysteryA)
	}
	for _, id := range ids[3:] {
		testutil.AddTestVote(t, db, sessionID, id, 1, mysteryB)
	}

	res, err := TallyVotes(db, NewSeededRand(1), sessionID)
	if err != nil {
		t.Fatalf("TallyVotes() error = %v", err)
	}
	if res.RoundNumber != 1 {
		t.Errorf("Expected round 1, got %d", res.RoundNumber)
	}
	if res.VoteCounts[mysteryA] != 3 || res.VoteCounts[mysteryB] != 2 {
		t.Errorf("Unexpected counts: %v", res.VoteCounts)
	}
	if res.WinningMysteryID != mysteryA {
		t.Errorf("Expected %s to win, got %s", mysteryA, res.WinningMysteryID)
	}
}

func TestTallyVotesExcludesPlayed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	sessionID, _, _ := testutil.CreateTestSession(t, db, cfg, models.StatusLobby)
	ids, _ := testutil.AddTestPlayers(t, db, sessionID, 5)
	mysteryA := testutil.CreateTestMystery(t, db, "Mystery A", 3)
	mysteryB := testutil.CreateTestMystery(t, db, "Mystery B", 3)

	// Mystery A was resolved in round 1, so votes for it are dead
	_, err := db.Exec(`
		INSERT INTO round (session_id, mystery_id, round_number, investigator_player_id, accused_player_id, was_correct, created_at)
		VALUES ($1, $2, 1, $3, $4, FALSE, $5)
	`, sessionID, mysteryA, ids[0], ids[1], time.Now())
	if err != nil {
		t.Fatalf("Failed to insert round: %v", err)
	}

	for _, id := range ids[:4] {
		testutil.AddTestVote(t, db, sessionID, id, 2, mysteryA)
	}
	testutil.AddTestVote(t, db, sessionID, ids[4], 2, mysteryB)

	res, err := TallyVotes(db, NewSeededRand(1), sessionID)
	if err != nil {
		t.Fatalf("TallyVotes() error = %v", err)
	}
	if res.RoundNumber != 2 {
		t.Errorf("Expected round 2, got %d", res.RoundNumber)
	}
	if _, present := res.VoteCounts[mysteryA]; present {
		t.Errorf("Played mystery should not appear in counts: %v", res.VoteCounts)
	}
	if res.WinningMysteryID != mysteryB {
		t.Errorf("Expected %s to win despite fewer raw votes, got %s", mysteryB, res.WinningMysteryID)
	}
}

func TestTallyVotesTieBreak(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	sessionID, _, _ := testutil.CreateTestSession(t, db, cfg, models.StatusLobby)
	ids, _ := testutil.AddTestPlayers(t, db, sessionID, 4)
	mysteryA := testutil.CreateTestMystery(t, db, "Mystery A", 3)
	mysteryB := testutil.CreateTestMystery(t, db, "Mystery B", 3)

	testutil.AddTestVote(t, db, sessionID, ids[0], 1, mysteryA)
	testutil.AddTestVote(t, db, sessionID, ids[1], 1, mysteryA)
	testutil.AddTestVote(t, db, sessionID, ids[2], 1, mysteryB)
	testutil.AddTestVote(t, db, sessionID, ids[3], 1, mysteryB)

	// Same seed, same pick
	first, err := TallyVotes(db, NewSeededRand(42), sessionID)
	if err != nil {
		t.Fatalf("TallyVotes() error = %v", err)
	}
	second, err := TallyVotes(db, NewSeededRand(42), sessionID)
	if err != nil {
		t.Fatalf("TallyVotes() error = %v", err)
	}
	if first.WinningMysteryID != second.WinningMysteryID {
		t.Errorf("Seeded tie-break not reproducible: %s vs %s", first.WinningMysteryID, second.WinningMysteryID)
	}

	// Across seeds the pick should land on both sides
	wins := make(map[string]int)
	for seed := int64(0); seed < 100; seed++ {
		res, err := TallyVotes(db, NewSeededRand(seed), sessionID)
		if err != nil {
			t.Fatalf("TallyVotes() error = %v", err)
		}
		wins[res.WinningMysteryID]++
	}
	if wins[mysteryA] == 0 || wins[mysteryB] == 0 {
		t.Errorf("Tie-break never picked one side: %v", wins)
	}
}

func TestTallyVotesEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	sessionID, _, _ := testutil.CreateTestSession(t, db, cfg, models.StatusLobby)

	res, err := TallyVotes(db, NewSeededRand(1), sessionID)
	if err != nil {
		t.Fatalf("TallyVotes() error = %v", err)
	}
	if res.WinningMysteryID != "" {
		t.Errorf("Expected no winner with no votes, got %s", res.WinningMysteryID)
	}
	if len(res.VoteCounts) != 0 {
		t.Errorf("Expected empty counts, got %v", res.VoteCounts)
	}
}
