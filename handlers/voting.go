// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mhartman/whodunit/game"
	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/models"
	"github.com/mhartman/whodunit/notify"
)

type VotingHandler struct {
	db       *sql.DB
	notifier notify.Notifier
	rng      *game.Rand
}

func NewVotingHandler(db *sql.DB, notifier notify.Notifier, rng *game.Rand) *VotingHandler {
	return &VotingHandler{db: db, notifier: notifier, rng: rng}
}

// SubmitVote handles POST /sessions/{code}/votes
// A null mystery_id clears the caller's vote. The last active voter's
// request triggers the next-round cascade inline.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
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

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := game.SubmitVote(h.db, h.rng, sess.ID, player.ID, req.MysteryID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	h.notifier.Publish(notify.Event{
		SessionID: sess.ID,
		Type:      notify.EventVoteCast,
		Payload:   map[string]any{"player_id": player.ID, "round_number": out.RoundNumber},
	})
	if out.NextRoundStarted {
		h.notifier.Publish(notify.Event{
			SessionID: sess.ID,
			Type:      notify.EventRoundStarted,
			Payload:   map[string]any{"round_number": out.RoundNumber},
		})
	}
	if out.SessionCompleted {
		h.notifier.Publish(notify.Event{
			SessionID: sess.ID,
			Type:      notify.EventSessionCompleted,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		RoundNumber:      out.RoundNumber,
		NextRoundStarted: out.NextRoundStarted,
	})
}

// GetTally handles GET /sessions/{code}/tally
func (h *VotingHandler) GetTally(w http.ResponseWriter, r *http.Request) {
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

	tally, err := game.TallyVotes(h.db, h.rng, sess.ID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TallyResponse{
		VoteCounts:       tally.VoteCounts,
		WinningMysteryID: tally.WinningMysteryID,
		RoundNumber:      tally.RoundNumber,
	})
}
