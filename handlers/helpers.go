// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lib/pq"

	"github.com/mhartman/whodunit/auth"
	"github.com/mhartman/whodunit/game"
	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/models"
)

// sessionByCode resolves a join code to the session row.
// Returns sql.ErrNoRows for unknown codes.
func sessionByCode(db *sql.DB, code string) (models.Session, error) {
	normalized, err := auth.NormalizeJoinCode(code)
	if err != nil {
		return models.Session{}, sql.ErrNoRows
	}
	var s models.Session
	var current sql.NullString
	err = db.QueryRow(`
		SELECT id, join_code, status, current_mystery_id, language, created_at
		FROM session WHERE join_code = $1
	`, normalized).Scan(&s.ID, &s.JoinCode, &s.Status, &current, &s.Language, &s.CreatedAt)
	if err != nil {
		return models.Session{}, err
	}
	if current.Valid {
		s.CurrentMysteryID = &current.String
	}
	return s, nil
}

// playerByToken resolves the X-Player-Token header to a player in the
// given session. Returns sql.ErrNoRows when the token matches nothing.
func playerByToken(db *sql.DB, sessionID, token string) (models.Player, error) {
	var p models.Player
	if token == "" {
		return p, sql.ErrNoRows
	}
	err := db.QueryRow(`
		SELECT id, session_id, name, status, has_been_investigator, score, joined_at
		FROM player WHERE session_id = $1 AND player_token = $2
	`, sessionID, token).Scan(&p.ID, &p.SessionID, &p.Name, &p.Status, &p.HasBeenInvestigator, &p.Score, &p.JoinedAt)
	return p, err
}

// isUniqueViolation recognizes unique-constraint failures from both
// supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// writeGameError maps round-controller sentinels to HTTP statuses.
// Anything unrecognized is a store failure: logged, surfaced as 500.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound),
		errors.Is(err, game.ErrMysteryNotFound),
		errors.Is(err, game.ErrPlayerNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrNotInvestigator),
		errors.Is(err, game.ErrPlayerInactive):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrNotAssigned):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrAlreadyPlayed),
		errors.Is(err, game.ErrSessionCompleted),
		errors.Is(err, game.ErrRoundInProgress):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInsufficientPlayers),
		errors.Is(err, game.ErrMissingRoles),
		errors.Is(err, game.ErrSelfAccusation),
		errors.Is(err, game.ErrNoCurrentMystery):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("game operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
