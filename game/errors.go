// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import "errors"

// Sentinel errors returned by the round controller. Handlers map these
// to HTTP statuses; anything else is treated as a store failure.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionCompleted    = errors.New("session is completed")
	ErrMysteryNotFound     = errors.New("mystery not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerInactive      = errors.New("player is not active in this session")
	ErrInsufficientPlayers = errors.New("not enough active players")
	ErrMissingRoles        = errors.New("mystery is missing required roles")
	ErrAlreadyPlayed       = errors.New("mystery was already played in this session")
	ErrNotInvestigator     = errors.New("caller is not the investigator for the current mystery")
	ErrNotAssigned         = errors.New("accused player has no assignment for the current mystery")
	ErrSelfAccusation      = errors.New("investigator cannot accuse themselves")
	ErrNoCurrentMystery    = errors.New("session has no mystery in play")
	ErrRoundInProgress     = errors.New("voting is closed while a round is unresolved")
)
