// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/models"
)

// PresenceHandler tracks player liveness. Heartbeats are a best-effort
// freshness signal for the UI; they never gate game-state transitions.
type PresenceHandler struct {
	db *sql.DB
}

func NewPresenceHandler(db *sql.DB) *PresenceHandler {
	return &PresenceHandler{db: db}
}

// Heartbeat handles POST /sessions/{code}/heartbeat
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
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

	_, err = h.db.Exec(`
		UPDATE player SET last_heartbeat = $1 WHERE id = $2
	`, time.Now(), player.ID)
	if err != nil {
		slog.Error("failed to update heartbeat", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record heartbeat")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetPresence handles GET /sessions/{code}/presence
func (h *PresenceHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
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
		SELECT id, name, status, last_heartbeat FROM player
		WHERE session_id = $1
		ORDER BY joined_at, id
	`, sess.ID)
	if err != nil {
		slog.Error("failed to query presence", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries := []models.PresenceEntry{}
	for rows.Next() {
		var e models.PresenceEntry
		var lastSeen time.Time
		if err := rows.Scan(&e.PlayerID, &e.Name, &e.Status, &lastSeen); err != nil {
			slog.Error("failed to scan presence", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		e.LastSeenAgo = humanize.Time(lastSeen)
		entries = append(entries, e)
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{"presence": entries})
}
