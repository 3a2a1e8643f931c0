// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mhartman/whodunit/auth"
	"github.com/mhartman/whodunit/cliparse"
	"github.com/mhartman/whodunit/game"
	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/models"
	"github.com/mhartman/whodunit/notify"
)

type RoundHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier notify.Notifier
	rng      *game.Rand
}

func NewRoundHandler(db *sql.DB, cfg cliparse.Config, notifier notify.Notifier, rng *game.Rand) *RoundHandler {
	return &RoundHandler{db: db, cfg: cfg, notifier: notifier, rng: rng}
}

// StartRound handles POST /sessions/{code}/rounds (host only)
// Explicit start path; the vote cascade reaches the same controller.
func (h *RoundHandler) StartRound(w http.ResponseWriter, r *http.Request) {
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

	hostKey := r.Header.Get("X-Host-Key")
	if err := auth.ValidateHostKey(sess.ID, hostKey, h.cfg.HostKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid host key")
		return
	}

	var req models.StartRoundRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.MysteryID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mystery_id is required")
		return
	}

	res, err := game.DistributeRoles(h.db, h.rng, sess.ID, req.MysteryID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	if !res.AlreadyStarted {
		h.notifier.Publish(notify.Event{
			SessionID: sess.ID,
			Type:      notify.EventRolesDistributed,
			Payload:   map[string]any{"mystery_id": req.MysteryID},
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.StartRoundResponse{
		AssignmentCount: res.AssignmentCount,
		UnassignedCount: res.UnassignedCount,
		AlreadyStarted:  res.AlreadyStarted,
	})
}

// GetAssignment handles GET /sessions/{code}/assignment
// Returns the caller's character sheet for the current mystery. Each
// player only ever sees their own sheet.
func (h *RoundHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
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

	player, err := playerByToken(h.db, sess.ID, middleware.PlayerToken(r))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Player-Token header required")
		return
	}
	if err != nil {
		slog.Error("failed to query player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if sess.CurrentMysteryID == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No mystery in play")
		return
	}

	var a models.Assignment
	err = h.db.QueryRow(`
		SELECT pa.session_id, pa.player_id, pa.mystery_id, pa.assigned_at,
		       cs.id, cs.mystery_id, cs.role, cs.character_name, cs.briefing
		FROM player_assignment pa
		JOIN character_sheet cs ON pa.sheet_id = cs.id
		WHERE pa.session_id = $1 AND pa.player_id = $2 AND pa.mystery_id = $3
	`, sess.ID, player.ID, *sess.CurrentMysteryID).Scan(
		&a.SessionID, &a.PlayerID, &a.MysteryID, &a.AssignedAt,
		&a.Sheet.ID, &a.Sheet.MysteryID, &a.Sheet.Role, &a.Sheet.CharacterName, &a.Sheet.Briefing,
	)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No assignment for this round")
		return
	}
	if err != nil {
		slog.Error("failed to query assignment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, a)
}

// GetCurrentRound handles GET /sessions/{code}/rounds/current
// Re-fetchable resolution: once a Round exists for the current mystery,
// every GET returns the same outcome, which is what page reloads rely
// on.
func (h *RoundHandler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
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

	resp := models.CurrentRoundResponse{Session: sess}

	if sess.CurrentMysteryID != nil {
		var m models.Mystery
		var description sql.NullString
		var innocentWords, guiltyWords string
		err = h.db.QueryRow(`
			SELECT id, title, description, innocent_words, guilty_words, language, created_at
			FROM mystery WHERE id = $1
		`, *sess.CurrentMysteryID).Scan(&m.ID, &m.Title, &description, &innocentWords, &guiltyWords, &m.Language, &m.CreatedAt)
		if err != nil {
			slog.Error("failed to query current mystery", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		m.Description = description.String
		if err := json.Unmarshal([]byte(innocentWords), &m.InnocentWords); err == nil {
			_ = json.Unmarshal([]byte(guiltyWords), &m.GuiltyWords)
		}
		resp.Mystery = &m

		var round models.Round
		err = h.db.QueryRow(`
			SELECT session_id, mystery_id, round_number, investigator_player_id, accused_player_id, was_correct, created_at
			FROM round WHERE session_id = $1 AND mystery_id = $2
		`, sess.ID, *sess.CurrentMysteryID).Scan(
			&round.SessionID, &round.MysteryID, &round.RoundNumber,
			&round.InvestigatorPlayerID, &round.AccusedPlayerID, &round.WasCorrect, &round.CreatedAt,
		)
		if err == nil {
			resp.Round = &round
		} else if err != sql.ErrNoRows {
			slog.Error("failed to query round", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// SubmitAccusation handles POST /sessions/{code}/accusation
func (h *RoundHandler) SubmitAccusation(w http.ResponseWriter, r *http.Request) {
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

	player, err := playerByToken(h.db, sess.ID, middleware.PlayerToken(r))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Player-Token header required")
		return
	}
	if err != nil {
		slog.Error("failed to query player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.SubmitAccusationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.AccusedPlayerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "accused_player_id is required")
		return
	}

	res, err := game.SubmitAccusation(h.db, sess.ID, player.ID, req.AccusedPlayerID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	if !res.AlreadyResolved {
		h.notifier.Publish(notify.Event{
			SessionID: sess.ID,
			Type:      notify.EventAccusationMade,
			Payload: map[string]any{
				"accused_player_id": req.AccusedPlayerID,
				"was_correct":       res.WasCorrect,
				"round_number":      res.RoundNumber,
			},
		})
		if res.SessionCompleted {
			h.notifier.Publish(notify.Event{
				SessionID: sess.ID,
				Type:      notify.EventSessionCompleted,
			})
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitAccusationResponse{
		WasCorrect:      res.WasCorrect,
		AccusedRole:     res.AccusedRole,
		RoundNumber:     res.RoundNumber,
		AlreadyResolved: res.AlreadyResolved,
	})
}
