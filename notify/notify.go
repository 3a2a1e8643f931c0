// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Channel is the Postgres NOTIFY channel carrying game events.
const Channel = "whodunit_events"

// Event types pushed to clients.
const (
	EventPlayerJoined     = "player_joined"
	EventPlayerLeft       = "player_left"
	EventPlayerKicked     = "player_kicked"
	EventReadyChanged     = "ready_changed"
	EventVoteCast         = "vote_cast"
	EventRoundStarted     = "round_started"
	EventRolesDistributed = "roles_distributed"
	EventAccusationMade   = "accusation_made"
	EventSessionCompleted = "session_completed"
)

// Event is one row-change notification delivered to session clients.
type Event struct {
	SessionID string         `json:"session_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Notifier publishes session events to connected clients. Delivery is
// at-most-once and best-effort; game state never depends on it.
type Notifier interface {
	Publish(ev Event)
}

// PGNotifier routes events through Postgres NOTIFY so every server
// instance sees them, regardless of which instance handled the request.
type PGNotifier struct {
	db *sql.DB
}

func NewPGNotifier(db *sql.DB) *PGNotifier {
	return &PGNotifier{db: db}
}

func (n *PGNotifier) Publish(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("failed to marshal event", "error", err, "type", ev.Type)
		return
	}
	if _, err := n.db.Exec(`SELECT pg_notify($1, $2)`, Channel, string(body)); err != nil {
		slog.Warn("failed to publish event", "error", err, "type", ev.Type, "session_id", ev.SessionID)
	}
}

// LocalNotifier pushes straight into the in-process hub. Used in SQLite
// mode where LISTEN/NOTIFY is unavailable; only works single-instance.
type LocalNotifier struct {
	hub *Hub
}

func NewLocalNotifier(hub *Hub) *LocalNotifier {
	return &LocalNotifier{hub: hub}
}

func (n *LocalNotifier) Publish(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("failed to marshal event", "error", err, "type", ev.Type)
		return
	}
	n.hub.Broadcast(ev.SessionID, body)
}

// Listen bridges Postgres notifications into the hub. It blocks until
// the listener fails permanently, so callers run it in a goroutine.
func Listen(dsn string, hub *Hub) error {
	listener := pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("pg listener event", "event", int(ev), "error", err)
		}
	})
	if err := listener.Listen(Channel); err != nil {
		return err
	}
	slog.Info("listening for game events", "channel", Channel)

	for {
		select {
		case n, ok := <-listener.Notify:
			if !ok {
				return nil
			}
			if n == nil {
				// Reconnect marker; clients refetch on their own.
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				slog.Warn("malformed event payload", "error", err)
				continue
			}
			hub.Broadcast(ev.SessionID, []byte(n.Extra))
		case <-time.After(90 * time.Second):
			// Periodic liveness check on an otherwise quiet channel.
			go listener.Ping()
		}
	}
}
