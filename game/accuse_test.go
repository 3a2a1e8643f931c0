// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/mhartman/whodunit/models"
	"github.com/mhartman/whodunit/testutil"
)

// setupPlayingSession creates a 5-player session mid-round and returns
// the player IDs holding each role.
func setupPlayingSession(t *testing.T, db *sql.DB) (sessionID, mysteryID, investigator, guilty string, innocents []string) {
	t.Helper()

	cfg := testutil.GetTestConfig()
	sessionID, _, _ = testutil.CreateTestSession(t, db, cfg, models.StatusLobby)
	testutil.AddTestPlayers(t, db, sessionID, 5)
	mysteryID = testutil.CreateTestMystery(t, db, "Manor Murder", 3)

	if _, err := DistributeRoles(db, NewSeededRand(1), sessionID, mysteryID); err != nil {
		t.Fatalf("DistributeRoles() error = %v", err)
	}

	roles := rolesByPlayer(t, db, sessionID, mysteryID)
	return sessionID, mysteryID, roles[models.RoleInvestigator][0], roles[models.RoleGuilty][0], roles[models.RoleInnocent]
}

func playerScore(t *testing.T, db *sql.DB, playerID string) int {
	t.Helper()
	var score int
	if err := db.QueryRow(`SELECT score FROM player WHERE id = $1`, playerID).Scan(&score); err != nil {
		t.Fatalf("Failed to query score: %v", err)
	}
	return score
}

func TestSubmitAccusationCorrect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	sessionID, mysteryID, investigator, guilty, _ := setupPlayingSession(t, db)
	// A second mystery keeps the session alive after this round
	testutil.CreateTestMystery(t, db, "Harbor Mystery", 3)

	res, err := SubmitAccusation(db, sessionID, investigator, guilty)
	if err != nil {
		t.Fatalf("SubmitAccusation() error = %v", err)
	}
	if !res.WasCorrect {
		t.Error("Expected correct accusation")
	}
	if res.AccusedRole != models.RoleGuilty {
		t.Errorf("Expected accused role guilty, got %s", res.AccusedRole)
	}
	if res.RoundNumber != 1 {
		t.Errorf("Expected round 1, got %d", res.RoundNumber)
	}
	if res.AlreadyResolved {
		t.Error("First accusation should not report AlreadyResolved")
	}
	if res.SessionCompleted {
		t.Error("Session should not complete with unplayed mysteries remaining")
	}

	if got := playerScore(t, db, investigator); got != ScoreInvestigatorCorrect {
		t.Errorf("Expected investigator score %d, got %d", ScoreInvestigatorCorrect, got)
	}
	if got := playerScore(t, db, guilty); got != 0 {
		t.Errorf("Caught guilty player should score 0, got %d", got)
	}

	var roundCount int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM round WHERE session_id = $1 AND mystery_id = $2
	`, sessionID, mysteryID).Scan(&roundCount)
	if err != nil {
		t.Fatalf("Failed to count rounds: %v", err)
	}
	if roundCount != 1 {
		t.Errorf("Expected exactly 1 round, got %d", roundCount)
	}
}

func TestSubmitAccusationWrong(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	sessionID, _, investigator, guilty, innocents := setupPlayingSession(t, db)
	testutil.CreateTestMystery(t, db, "Harbor Mystery", 3)

	accused := innocents[0]
	res, err := SubmitAccusation(db, sessionID, investigator, accused)
	if err != nil {
		t.Fatalf("SubmitAccusation() error = %v", err)
	}
	if res.WasCorrect {
		t.Error("Expected incorrect accusation")
	}
	if res.AccusedRole != models.RoleInnocent {
		t.Errorf("Expected accused role innocent, got %s", res.AccusedRole)
	}

	if got := playerScore(t, db, investigator); got != 0 {
		t.Errorf("Wrong investigator should score 0, got %d", got)
	}
	if got := playerScore(t, db, guilty); got != ScoreGuiltyUncaught {
		t.Errorf("Uncaught guilty should score %d, got %d", ScoreGuiltyUncaught, got)
	}
	if got := playerScore(t, db, accused); got != ScoreInnocentAccused {
		t.Errorf("Wrongly accused innocent should score %d, got %d", ScoreInnocentAccused, got)
	}

	// The accused gets the splatter marker
	var status string
	if err := db.QueryRow(`SELECT status FROM player WHERE id = $1`, accused).Scan(&status); err != nil {
		t.Fatalf("Failed to query player: %v", err)
	}
	if status != models.PlayerAccused {
		t.Errorf("Expected accused status, got %s", status)
	}
}

func TestSubmitAccusationResubmit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	sessionID, _, investigator, guilty, innocents := setupPlayingSession(t, db)
	testutil.CreateTestMystery(t, db, "Harbor Mystery", 3)

	first, err := SubmitAccusation(db, sessionID, investigator, guilty)
	if err != nil {
		t.Fatalf("First SubmitAccusation() error = %v", err)
	}

	// A reload resubmits, even against a different target: the persisted
	// Round wins
	second, err := SubmitAccusation(db, sessionID, investigator, innocents[0])
	if err != nil {
		t.Fatalf("Second SubmitAccusation() error = %v", err)
	}
	if !second.AlreadyResolved {
		t.Error("Expected AlreadyResolved on resubmission")
	}
	if second.WasCorrect != first.WasCorrect || second.RoundNumber != first.RoundNumber {
		t.Errorf("Resubmission diverged: first %+v, second %+v", first, second)
	}
	if second.AccusedRole != models.RoleGuilty {
		t.Errorf("Expected persisted accused role guilty, got %s", second.AccusedRole)
	}

	// Scoring applied exactly once
	if got := playerScore(t, db, investigator); got != ScoreInvestigatorCorrect {
		t.Errorf("Expected investigator score %d after resubmit, got %d", ScoreInvestigatorCorrect, got)
	}
}

func TestSubmitAccusationValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	sessionID, _, investigator, guilty, innocents := setupPlayingSession(t, db)

	t.Run("self accusation", func(t *testing.T) {
		_, err := SubmitAccusation(db, sessionID, investigator, investigator)
		if !errors.Is(err, ErrSelfAccusation) {
			t.Errorf("Expected ErrSelfAccusation, got %v", err)
		}
	})

	t.Run("non-investigator accuser", func(t *testing.T) {
		_, err := SubmitAccusation(db, sessionID, innocents[0], guilty)
		if !errors.Is(err, ErrNotInvestigator) {
			t.Errorf("Expected ErrNotInvestigator, got %v", err)
		}
	})

	t.Run("unassigned accused", func(t *testing.T) {
		_, err := SubmitAccusation(db, sessionID, investigator, "no-such-player")
		if !errors.Is(err, ErrNotAssigned) {
			t.Errorf("Expected ErrNotAssigned, got %v", err)
		}
	})
}

func TestSubmitAccusationNoCurrentMystery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	sessionID, _, _ := testutil.CreateTestSession(t, db, cfg, models.StatusLobby)
	ids, _ := testutil.AddTestPlayers(t, db, sessionID, 5)

	_, err := SubmitAccusation(db, sessionID, ids[0], ids[1])
	if !errors.Is(err, ErrNoCurrentMystery) {
		t.Fatalf("Expected ErrNoCurrentMystery, got %v", err)
	}
}

func TestSubmitAccusationCompletesSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	// Only one mystery exists, so resolving it ends the session
	sessionID, _, investigator, guilty, _ := setupPlayingSession(t, db)

	res, err := SubmitAccusation(db, sessionID, investigator, guilty)
	if err != nil {
		t.Fatalf("SubmitAccusation() error = %v", err)
	}
	if !res.SessionCompleted {
		t.Error("Expected SessionCompleted with no mysteries left")
	}

	var status string
	if err := db.QueryRow(`SELECT status FROM session WHERE id = $1`, sessionID).Scan(&status); err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if status != models.StatusCompleted {
		t.Errorf("Expected session completed, got %s", status)
	}

	// A further accusation against the completed session is rejected
	_, err = SubmitAccusation(db, sessionID, investigator, guilty)
	if !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("Expected ErrSessionCompleted, got %v", err)
	}
}
