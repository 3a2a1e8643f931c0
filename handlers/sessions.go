// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/mhartman/whodunit/auth"
	"github.com/mhartman/whodunit/cliparse"
	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/models"
	"github.com/mhartman/whodunit/notify"
)

type SessionHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier notify.Notifier
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config, notifier notify.Notifier) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg, notifier: notifier}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	language := req.Language
	if language == "" {
		language = "en"
	}

	sessionID := uuid.NewString()
	hostKey := auth.GenerateHostKey(sessionID, h.cfg.HostKeySalt)

	// Join codes collide rarely; retry a few times against the unique
	// constraint rather than pre-checking.
	var joinCode string
	for attempt := 0; attempt < 5; attempt++ {
		code, err := auth.GenerateJoinCode()
		if err != nil {
			slog.Error("failed to generate join code", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
		_, err = h.db.Exec(`
			INSERT INTO session (id, join_code, status, language, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, sessionID, code, models.StatusLobby, language, time.Now())
		if err == nil {
			joinCode = code
			break
		}
		if !isUniqueViolation(err) {
			slog.Error("failed to insert session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
			return
		}
	}
	if joinCode == "" {
		slog.Error("exhausted join code attempts")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "session_id", sessionID, "join_code", joinCode)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: sessionID,
		JoinCode:  joinCode,
		HostKey:   hostKey,
	})
}

// JoinSession handles POST /sessions/{code}/join
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
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

	var req models.JoinSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 30 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be 2-30 characters")
		return
	}

	if sess.Status == models.StatusCompleted {
		middleware.ErrorResponse(w, http.StatusConflict, "Session is completed")
		return
	}

	playerID := uuid.NewString()
	playerToken, err := auth.GeneratePlayerToken()
	if err != nil {
		slog.Error("failed to generate player token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO player (id, session_id, name, status, player_token, last_heartbeat, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, playerID, sess.ID, name, models.PlayerActive, playerToken, now, now)
	if err != nil {
		// Names are unique per session, case-insensitively. Surfaced as
		// a distinguishable conflict so the client can retry or offer
		// takeover.
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Name already taken")
			return
		}
		slog.Error("failed to insert player", "error", err, "session_id", sess.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join session")
		return
	}

	slog.Info("player joined", "session_id", sess.ID, "player_id", playerID, "name", name)

	h.notifier.Publish(notify.Event{
		SessionID: sess.ID,
		Type:      notify.EventPlayerJoined,
		Payload:   map[string]any{"player_id": playerID, "name": name},
	})

	middleware.JSONResponse(w, http.StatusCreated, models.JoinSessionResponse{
		PlayerID:    playerID,
		PlayerToken: playerToken,
	})
}

// GetLobby handles GET /sessions/{code}
func (h *SessionHandler) GetLobby(w http.ResponseWriter, r *http.Request) {
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
		SELECT p.id, p.name, p.status, p.score, p.joined_at, COALESCE(rs.is_ready, FALSE)
		FROM player p
		LEFT JOIN ready_state rs ON rs.session_id = p.session_id AND rs.player_id = p.id
		WHERE p.session_id = $1
		ORDER BY p.joined_at, p.id
	`, sess.ID)
	if err != nil {
		slog.Error("failed to query players", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	players := []models.LobbyPlayer{}
	for rows.Next() {
		var p models.LobbyPlayer
		var joinedAt time.Time
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Score, &joinedAt, &p.IsReady); err != nil {
			slog.Error("failed to scan player", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		p.JoinedAgo = humanize.Time(joinedAt)
		players = append(players, p)
	}

	middleware.JSONResponse(w, http.StatusOK, models.LobbyResponse{
		Session: sess,
		Players: players,
	})
}

// SetReady handles POST /sessions/{code}/ready
func (h *SessionHandler) SetReady(w http.ResponseWriter, r *http.Request) {
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

	var req models.SetReadyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO ready_state (session_id, player_id, is_ready, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, player_id)
		DO UPDATE SET is_ready = excluded.is_ready, updated_at = excluded.updated_at
	`, sess.ID, player.ID, req.IsReady, time.Now())
	if err != nil {
		slog.Error("failed to upsert ready state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update ready state")
		return
	}

	h.notifier.Publish(notify.Event{
		SessionID: sess.ID,
		Type:      notify.EventReadyChanged,
		Payload:   map[string]any{"player_id": player.ID, "is_ready": req.IsReady},
	})

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"is_ready": req.IsReady})
}

// QuitSession handles POST /sessions/{code}/quit
func (h *SessionHandler) QuitSession(w http.ResponseWriter, r *http.Request) {
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
		UPDATE player SET status = $1 WHERE id = $2
	`, models.PlayerQuit, player.ID)
	if err != nil {
		slog.Error("failed to quit player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to quit")
		return
	}

	slog.Info("player quit", "session_id", sess.ID, "player_id", player.ID)

	h.notifier.Publish(notify.Event{
		SessionID: sess.ID,
		Type:      notify.EventPlayerLeft,
		Payload:   map[string]any{"player_id": player.ID},
	})

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": models.PlayerQuit})
}

// KickPlayer handles POST /sessions/{code}/kick (host only)
func (h *SessionHandler) KickPlayer(w http.ResponseWriter, r *http.Request) {
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

	var req models.KickPlayerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PlayerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "player_id is required")
		return
	}

	result, err := h.db.Exec(`
		UPDATE player SET status = $1 WHERE id = $2 AND session_id = $3
	`, models.PlayerKicked, req.PlayerID, sess.ID)
	if err != nil {
		slog.Error("failed to kick player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to kick player")
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Player not found")
		return
	}

	slog.Info("player kicked", "session_id", sess.ID, "player_id", req.PlayerID)

	h.notifier.Publish(notify.Event{
		SessionID: sess.ID,
		Type:      notify.EventPlayerKicked,
		Payload:   map[string]any{"player_id": req.PlayerID},
	})

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": models.PlayerKicked})
}

// GetScores handles GET /sessions/{code}/scores
func (h *SessionHandler) GetScores(w http.ResponseWriter, r *http.Request) {
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
		SELECT id, name, score FROM player
		WHERE session_id = $1
		ORDER BY score DESC, name
	`, sess.ID)
	if err != nil {
		slog.Error("failed to query scores", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	scores := []models.ScoreEntry{}
	for rows.Next() {
		var s models.ScoreEntry
		if err := rows.Scan(&s.PlayerID, &s.Name, &s.Score); err != nil {
			slog.Error("failed to scan score", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		scores = append(scores, s)
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{"scores": scores})
}
