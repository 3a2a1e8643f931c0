// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify pushes row-change events to connected browser clients.

# Model

Handlers publish an Event after each state change; the Hub fans events
out over websockets to every client watching that session. Delivery is
at-most-once and best-effort: clients treat the feed as a cache
invalidation hint and refetch authoritative state over REST on
reconnect. No game-state transition depends on delivery.

# Transports

On Postgres, events round-trip through NOTIFY/LISTEN (PGNotifier +
Listen) so a horizontally scaled deployment fans out from whichever
instance handled the request:

	hub := notify.NewHub()
	go notify.Listen(cfg.DatabaseURL, hub)
	notifier := notify.NewPGNotifier(db)

On SQLite (single-instance dev mode) LocalNotifier writes straight into
the hub.

# Event Types

player_joined, player_left, player_kicked, ready_changed, vote_cast,
round_started, roles_distributed, accusation_made, session_completed.
Payloads carry IDs only; clients refetch details they need.
*/
package notify
