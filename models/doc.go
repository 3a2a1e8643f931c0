// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: language
  - JoinSessionRequest: name
  - SetReadyRequest: is_ready
  - StartRoundRequest: mystery_id
  - SubmitAccusationRequest: accused_player_id
  - SubmitVoteRequest: mystery_id (null clears the vote)
  - CreateMysteryRequest: title, words, character sheets

# Response Types

Types for JSON responses:

  - CreateSessionResponse: session_id, join_code, host_key
  - JoinSessionResponse: player_id, player_token
  - StartRoundResponse: assignment_count, unassigned_count, already_started
  - SubmitAccusationResponse: was_correct, accused_role, round_number
  - SubmitVoteResponse: round_number, next_round_started
  - TallyResponse: vote_counts, winning_mystery_id, round_number
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Session: game instance with join code and lifecycle status
  - Player: participant with status, score, investigator history
  - Mystery: immutable scenario content with innocent/guilty word lists
  - CharacterSheet: one role briefing within a mystery
  - Assignment: player -> sheet mapping for one mystery in one session
  - Round: resolved accusation record, at most one per (session, mystery)

# Constants

Session status values:

	StatusLobby     = "lobby"
	StatusPlaying   = "playing"
	StatusCompleted = "completed"

Player status values:

	PlayerActive  = "active"
	PlayerQuit    = "quit"
	PlayerAccused = "accused"
	PlayerKicked  = "kicked"

Character roles:

	RoleInvestigator = "investigator"
	RoleGuilty       = "guilty"
	RoleInnocent     = "innocent"
*/
package models
