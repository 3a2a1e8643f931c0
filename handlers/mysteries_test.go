// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mhartman/whodunit/models"
	"github.com/mhartman/whodunit/testutil"
)

func validMysteryRequest() models.CreateMysteryRequest {
	return models.CreateMysteryRequest{
		Title:         "The Vanishing Violinist",
		Description:   "A concert hall, a missing soloist.",
		InnocentWords: []string{"stage", "curtain", "encore"},
		GuiltyWords:   []string{"trapdoor", "wire", "silence"},
		Language:      "en",
		Sheets: []models.CreateSheetRequest{
			{Role: models.RoleInvestigator, CharacterName: "Inspector Vale", Briefing: "You arrived late."},
			{Role: models.RoleGuilty, CharacterName: "The Understudy", Briefing: "You wanted the spotlight."},
			{Role: models.RoleInnocent, CharacterName: "The Conductor", Briefing: "You saw nothing."},
			{Role: models.RoleInnocent, CharacterName: "The Usher", Briefing: "You heard a thud."},
			{Role: models.RoleInnocent, CharacterName: "The Critic", Briefing: "You were taking notes."},
		},
	}
}

func TestCreateMystery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewMysteryHandler(db)

	noTitle := validMysteryRequest()
	noTitle.Title = ""

	badWords := validMysteryRequest()
	badWords.InnocentWords = []string{"only", "two"}

	twoInvestigators := validMysteryRequest()
	twoInvestigators.Sheets[2].Role = models.RoleInvestigator

	noGuilty := validMysteryRequest()
	noGuilty.Sheets[1].Role = models.RoleInnocent

	tooFewInnocents := validMysteryRequest()
	tooFewInnocents.Sheets = tooFewInnocents.Sheets[:4]

	badRole := validMysteryRequest()
	badRole.Sheets[2].Role = "bystander"

	unnamedSheet := validMysteryRequest()
	unnamedSheet.Sheets[3].CharacterName = ""

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid mystery", validMysteryRequest(), http.StatusCreated},
		{"missing title", noTitle, http.StatusBadRequest},
		{"wrong word count", badWords, http.StatusBadRequest},
		{"two investigators", twoInvestigators, http.StatusBadRequest},
		{"no guilty sheet", noGuilty, http.StatusBadRequest},
		{"too few innocents", tooFewInnocents, http.StatusBadRequest},
		{"invalid role", badRole, http.StatusBadRequest},
		{"unnamed sheet", unnamedSheet, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/mysteries", tt.body, nil)
			w := httptest.NewRecorder()
			handler.CreateMystery(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.CreateMysteryResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.MysteryID == "" {
					t.Error("Expected non-empty mystery_id")
				}
				if len(resp.SheetIDs) != 5 {
					t.Errorf("Expected 5 sheet IDs, got %d", len(resp.SheetIDs))
				}

				var sheetCount int
				err := db.QueryRow(`
					SELECT COUNT(*) FROM character_sheet WHERE mystery_id = $1
				`, resp.MysteryID).Scan(&sheetCount)
				if err != nil {
					t.Fatalf("Failed to count sheets: %v", err)
				}
				if sheetCount != 5 {
					t.Errorf("Expected 5 sheets in database, got %d", sheetCount)
				}
			}
		})
	}

	// Validation failures must not leave partial rows behind
	var mysteryCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM mystery`).Scan(&mysteryCount); err != nil {
		t.Fatalf("Failed to count mysteries: %v", err)
	}
	if mysteryCount != 1 {
		t.Errorf("Expected 1 mystery after rejected requests, got %d", mysteryCount)
	}
}

func TestListMysteries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewMysteryHandler(db)

	testutil.CreateTestMystery(t, db, "Mystery A", 3)
	testutil.CreateTestMystery(t, db, "Mystery B", 3)

	req := testutil.MakeRequest("GET", "/mysteries", nil, nil)
	w := httptest.NewRecorder()
	handler.ListMysteries(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Mysteries []models.Mystery `json:"mysteries"`
	}
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Mysteries) != 2 {
		t.Fatalf("Expected 2 mysteries, got %d", len(resp.Mysteries))
	}
	if len(resp.Mysteries[0].InnocentWords) != 3 || len(resp.Mysteries[0].GuiltyWords) != 3 {
		t.Errorf("Expected decoded word lists, got %+v", resp.Mysteries[0])
	}
}

func TestListAvailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewMysteryHandler(db)

	sessionID, joinCode, _ := testutil.CreateTestSession(t, db, cfg, models.StatusLobby)
	ids, _ := testutil.AddTestPlayers(t, db, sessionID, 2)
	playedID := testutil.CreateTestMystery(t, db, "Played Mystery", 3)
	freshID := testutil.CreateTestMystery(t, db, "Fresh Mystery", 3)

	// A different-language mystery never shows up for an English session
	otherLang := testutil.CreateTestMystery(t, db, "Mysterium", 3)
	if _, err := db.Exec(`UPDATE mystery SET language = 'de' WHERE id = $1`, otherLang); err != nil {
		t.Fatalf("Failed to update language: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO round (session_id, mystery_id, round_number, investigator_player_id, accused_player_id, was_correct, created_at)
		VALUES ($1, $2, 1, $3, $4, TRUE, $5)
	`, sessionID, playedID, ids[0], ids[1], time.Now())
	if err != nil {
		t.Fatalf("Failed to insert round: %v", err)
	}

	req := testutil.MakeRequest("GET", "/sessions/"+joinCode+"/mysteries", nil, nil)
	req.SetPathValue("code", joinCode)
	w := httptest.NewRecorder()
	handler.ListAvailable(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Mysteries []models.Mystery `json:"mysteries"`
	}
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Mysteries) != 1 {
		t.Fatalf("Expected 1 available mystery, got %d", len(resp.Mysteries))
	}
	if resp.Mysteries[0].ID != freshID {
		t.Errorf("Expected only the unplayed mystery %s, got %s", freshID, resp.Mysteries[0].ID)
	}
}
