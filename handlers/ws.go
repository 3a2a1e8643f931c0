// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/notify"
)

type WSHandler struct {
	db  *sql.DB
	hub *notify.Hub
}

func NewWSHandler(db *sql.DB, hub *notify.Hub) *WSHandler {
	return &WSHandler{db: db, hub: hub}
}

var upgrader = websocket.Upgrader{
	// The REST API is already CORS-open; the feed carries no secrets
	// (IDs and event types only).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve handles GET /sessions/{code}/ws
// Subscribes the caller to the session's event feed. The feed is
// read-only; client frames are drained and ignored.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
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

	if _, err := playerByToken(h.db, sess.ID, middleware.PlayerToken(r)); err == sql.ErrNoRows {
		// Browsers cannot set headers on websocket upgrades, so the
		// token may come as a query parameter instead.
		if _, err := playerByToken(h.db, sess.ID, r.URL.Query().Get("token")); err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "player token required")
			return
		}
	} else if err != nil {
		slog.Error("failed to query player", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "session_id", sess.ID)
		return
	}

	client := h.hub.Add(sess.ID, conn)
	go func() {
		defer h.hub.Remove(sess.ID, client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
