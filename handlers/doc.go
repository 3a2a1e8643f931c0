// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the whodunit API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - SessionHandler: session lifecycle, joining, ready flags, kicks, scores
  - MysteryHandler: mystery content upload and listing
  - RoundHandler: round start, assignments, accusations
  - VotingHandler: next-mystery votes and tally
  - PresenceHandler: heartbeats and liveness listing
  - WSHandler: websocket event feed

Handlers are created via constructor functions:

	sessions := handlers.NewSessionHandler(db, cfg, notifier)

# Session Lifecycle

Sessions progress lobby -> playing -> ... -> completed:

	POST /sessions                  -> CreateSession (returns host_key)
	POST /sessions/{code}/join      -> JoinSession (returns player_token)
	POST /sessions/{code}/ready     -> SetReady
	POST /sessions/{code}/rounds    -> StartRound (host; distributes roles)
	POST /sessions/{code}/accusation -> SubmitAccusation (investigator)
	POST /sessions/{code}/votes     -> SubmitVote (cascade on last vote)

Host operations require the X-Host-Key header; player operations require
X-Player-Token.

# Round Controller

The actual game logic lives in package game; handlers validate identity,
translate errors to HTTP statuses, and publish notify events after state
changes. Event publication is best-effort and never fails a request.

# Identity

The API trusts (player_token -> player_id, session_id) resolution against
the store; there is no separate authentication layer.
*/
package handlers
