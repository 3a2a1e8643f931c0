// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/models"
)

type MysteryHandler struct {
	db *sql.DB
}

func NewMysteryHandler(db *sql.DB) *MysteryHandler {
	return &MysteryHandler{db: db}
}

// CreateMystery handles POST /mysteries
// The structural invariant (exactly one investigator, exactly one
// guilty, at least three innocents) is enforced here, at upload time,
// so role distribution can trust the sheet set.
func (h *MysteryHandler) CreateMystery(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMysteryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.InnocentWords) != 3 || len(req.GuiltyWords) != 3 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "innocent_words and guilty_words must each have 3 entries")
		return
	}

	var investigators, guilty, innocents int
	for _, s := range req.Sheets {
		switch s.Role {
		case models.RoleInvestigator:
			investigators++
		case models.RoleGuilty:
			guilty++
		case models.RoleInnocent:
			innocents++
		default:
			middleware.ErrorResponse(w, http.StatusBadRequest, "invalid sheet role: "+s.Role)
			return
		}
		if s.CharacterName == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "character_name is required on every sheet")
			return
		}
	}
	if investigators != 1 || guilty != 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mystery requires exactly one investigator and one guilty sheet")
		return
	}
	if innocents < 3 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mystery requires at least 3 innocent sheets")
		return
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	mysteryID := uuid.NewString()
	innocentWords, _ := json.Marshal(req.InnocentWords)
	guiltyWords, _ := json.Marshal(req.GuiltyWords)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO mystery (id, title, description, innocent_words, guilty_words, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, mysteryID, req.Title, req.Description, string(innocentWords), string(guiltyWords), language, time.Now())
	if err != nil {
		slog.Error("failed to insert mystery", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create mystery")
		return
	}

	sheetIDs := make([]string, 0, len(req.Sheets))
	for _, s := range req.Sheets {
		sheetID := uuid.NewString()
		_, err = tx.Exec(`
			INSERT INTO character_sheet (id, mystery_id, role, character_name, briefing)
			VALUES ($1, $2, $3, $4, $5)
		`, sheetID, mysteryID, s.Role, s.CharacterName, s.Briefing)
		if err != nil {
			slog.Error("failed to insert sheet", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create mystery")
			return
		}
		sheetIDs = append(sheetIDs, sheetID)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit mystery", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create mystery")
		return
	}

	slog.Info("mystery created", "mystery_id", mysteryID, "title", req.Title, "sheets", len(sheetIDs))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateMysteryResponse{
		MysteryID: mysteryID,
		SheetIDs:  sheetIDs,
	})
}

// ListMysteries handles GET /mysteries
func (h *MysteryHandler) ListMysteries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, title, description, innocent_words, guilty_words, language, created_at
		FROM mystery ORDER BY created_at, id
	`)
	if err != nil {
		slog.Error("failed to query mysteries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	mysteries, err := scanMysteries(rows)
	if err != nil {
		slog.Error("failed to scan mysteries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{"mysteries": mysteries})
}

// ListAvailable handles GET /sessions/{code}/mysteries
// A mystery with an existing Round for the session never reappears.
func (h *MysteryHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionByCode(h.db, r.PathValue("code"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT m.id, m.title, m.description, m.innocent_words, m.guilty_words, m.language, m.created_at
		FROM mystery m
		WHERE m.language = $1
		  AND NOT EXISTS (
			SELECT 1 FROM round r WHERE r.session_id = $2 AND r.mystery_id = m.id
		  )
		ORDER BY m.created_at, m.id
	`, sess.Language, sess.ID)
	if err != nil {
		slog.Error("failed to query available mysteries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	mysteries, err := scanMysteries(rows)
	if err != nil {
		slog.Error("failed to scan mysteries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{"mysteries": mysteries})
}

func scanMysteries(rows *sql.Rows) ([]models.Mystery, error) {
	mysteries := []models.Mystery{}
	for rows.Next() {
		var m models.Mystery
		var description sql.NullString
		var innocentWords, guiltyWords string
		if err := rows.Scan(&m.ID, &m.Title, &description, &innocentWords, &guiltyWords, &m.Language, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Description = description.String
		if err := json.Unmarshal([]byte(innocentWords), &m.InnocentWords); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(guiltyWords), &m.GuiltyWords); err != nil {
			return nil, err
		}
		mysteries = append(mysteries, m)
	}
	return mysteries, rows.Err()
}
