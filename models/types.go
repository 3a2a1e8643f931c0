// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Session status constants
const (
	StatusLobby     = "lobby"
	StatusPlaying   = "playing"
	StatusCompleted = "completed"
)

// Player status constants
const (
	PlayerActive  = "active"
	PlayerQuit    = "quit"
	PlayerAccused = "accused"
	PlayerKicked  = "kicked"
)

// Character sheet roles
const (
	RoleInvestigator = "investigator"
	RoleGuilty       = "guilty"
	RoleInnocent     = "innocent"
)

// Request types

type CreateSessionRequest struct {
	Language string `json:"language"`
}

type JoinSessionRequest struct {
	Name string `json:"name"`
}

type SetReadyRequest struct {
	IsReady bool `json:"is_ready"`
}

type KickPlayerRequest struct {
	PlayerID string `json:"player_id"`
}

type StartRoundRequest struct {
	MysteryID string `json:"mystery_id"`
}

type SubmitAccusationRequest struct {
	AccusedPlayerID string `json:"accused_player_id"`
}

// MysteryID == nil clears the caller's vote for the current round.
type SubmitVoteRequest struct {
	MysteryID *string `json:"mystery_id"`
}

type CreateSheetRequest struct {
	Role          string `json:"role"`
	CharacterName string `json:"character_name"`
	Briefing      string `json:"briefing"`
}

type CreateMysteryRequest struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	InnocentWords []string             `json:"innocent_words"`
	GuiltyWords   []string             `json:"guilty_words"`
	Language      string               `json:"language"`
	Sheets        []CreateSheetRequest `json:"sheets"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	JoinCode  string `json:"join_code"`
	HostKey   string `json:"host_key"`
}

type JoinSessionResponse struct {
	PlayerID    string `json:"player_id"`
	PlayerToken string `json:"player_token"`
}

type StartRoundResponse struct {
	AssignmentCount int  `json:"assignment_count"`
	UnassignedCount int  `json:"unassigned_count"`
	AlreadyStarted  bool `json:"already_started"`
}

type SubmitAccusationResponse struct {
	WasCorrect      bool   `json:"was_correct"`
	AccusedRole     string `json:"accused_role"`
	RoundNumber     int    `json:"round_number"`
	AlreadyResolved bool   `json:"already_resolved"`
}

type SubmitVoteResponse struct {
	RoundNumber      int  `json:"round_number"`
	NextRoundStarted bool `json:"next_round_started"`
}

type TallyResponse struct {
	VoteCounts       map[string]int `json:"vote_counts"`
	WinningMysteryID string         `json:"winning_mystery_id,omitempty"`
	RoundNumber      int            `json:"round_number"`
}

type CreateMysteryResponse struct {
	MysteryID string   `json:"mystery_id"`
	SheetIDs  []string `json:"sheet_ids"`
}

// Domain types

type Session struct {
	ID               string    `json:"id"`
	JoinCode         string    `json:"join_code"`
	Status           string    `json:"status"`
	CurrentMysteryID *string   `json:"current_mystery_id,omitempty"`
	Language         string    `json:"language"`
	CreatedAt        time.Time `json:"created_at"`
}

type Player struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	Name                string    `json:"name"`
	Status              string    `json:"status"`
	HasBeenInvestigator bool      `json:"has_been_investigator"`
	Score               int       `json:"score"`
	PlayerToken         string    `json:"-"` // Never expose in JSON
	LastHeartbeat       time.Time `json:"-"`
	JoinedAt            time.Time `json:"joined_at"`
}

// LobbyPlayer is the per-player view returned by the lobby endpoint.
type LobbyPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Score     int    `json:"score"`
	IsReady   bool   `json:"is_ready"`
	JoinedAgo string `json:"joined_ago"`
}

type LobbyResponse struct {
	Session Session       `json:"session"`
	Players []LobbyPlayer `json:"players"`
}

type Mystery struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	InnocentWords []string  `json:"innocent_words"`
	GuiltyWords   []string  `json:"guilty_words"`
	Language      string    `json:"language"`
	CreatedAt     time.Time `json:"created_at"`
}

type CharacterSheet struct {
	ID            string `json:"id"`
	MysteryID     string `json:"mystery_id"`
	Role          string `json:"role"`
	CharacterName string `json:"character_name"`
	Briefing      string `json:"briefing"`
}

type Assignment struct {
	SessionID  string         `json:"session_id"`
	PlayerID   string         `json:"player_id"`
	MysteryID  string         `json:"mystery_id"`
	Sheet      CharacterSheet `json:"sheet"`
	AssignedAt time.Time      `json:"assigned_at"`
}

type Round struct {
	SessionID            string    `json:"session_id"`
	MysteryID            string    `json:"mystery_id"`
	RoundNumber          int       `json:"round_number"`
	InvestigatorPlayerID string    `json:"investigator_player_id"`
	AccusedPlayerID      string    `json:"accused_player_id"`
	WasCorrect           bool      `json:"was_correct"`
	CreatedAt            time.Time `json:"created_at"`
}

type CurrentRoundResponse struct {
	Session Session  `json:"session"`
	Mystery *Mystery `json:"mystery,omitempty"`
	Round   *Round   `json:"round,omitempty"`
}

type PresenceEntry struct {
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	LastSeenAgo string `json:"last_seen_ago"`
}

type ScoreEntry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
