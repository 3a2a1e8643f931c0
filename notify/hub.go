// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one websocket subscriber to a session's event feed.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex // Serialize writes to WebSocket (required by gorilla/websocket)
}

// Hub fans session events out to connected websocket clients. Delivery
// is best-effort: a failed write drops the client, and clients refetch
// on reconnect.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Client]struct{})}
}

// Add registers a connection under a session and returns its client
// handle for later removal.
func (h *Hub) Add(sessionID string, conn *websocket.Conn) *Client {
	c := &Client{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*Client]struct{})
	}
	h.sessions[sessionID][c] = struct{}{}
	slog.Info("websocket client connected", "session_id", sessionID, "clients", len(h.sessions[sessionID]))
	return c
}

// Remove drops a client and closes its connection.
func (h *Hub) Remove(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.sessions[sessionID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.sessions, sessionID)
		}
	}
	c.conn.Close()
	slog.Info("websocket client disconnected", "session_id", sessionID)
}

// Broadcast sends a message to every client subscribed to the session.
// Clients whose write fails are pruned.
func (h *Hub) Broadcast(sessionID string, message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[sessionID]))
	for c := range h.sessions[sessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.writeMu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, message)
		c.writeMu.Unlock()
		if err != nil {
			slog.Warn("websocket write failed, dropping client", "error", err, "session_id", sessionID)
			h.Remove(sessionID, c)
		}
	}
}
