// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/mhartman/whodunit/cliparse"
	"github.com/mhartman/whodunit/game"
	"github.com/mhartman/whodunit/handlers"
	"github.com/mhartman/whodunit/middleware"
	"github.com/mhartman/whodunit/notify"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, notifier notify.Notifier, hub *notify.Hub, rng *game.Rand) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(db, cfg, notifier)
	mysteryHandler := handlers.NewMysteryHandler(db)
	roundHandler := handlers.NewRoundHandler(db, cfg, notifier, rng)
	votingHandler := handlers.NewVotingHandler(db, notifier, rng)
	presenceHandler := handlers.NewPresenceHandler(db)
	wsHandler := handlers.NewWSHandler(db, hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{code}", middleware.WithLogging(sessionHandler.GetLobby))
	mux.HandleFunc("POST /sessions/{code}/join", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("POST /sessions/{code}/ready", middleware.WithLogging(sessionHandler.SetReady))
	mux.HandleFunc("POST /sessions/{code}/quit", middleware.WithLogging(sessionHandler.QuitSession))
	mux.HandleFunc("POST /sessions/{code}/kick", middleware.WithLogging(sessionHandler.KickPlayer))
	mux.HandleFunc("GET /sessions/{code}/scores", middleware.WithLogging(sessionHandler.GetScores))
	mux.HandleFunc("GET /sessions/{code}/qr", middleware.WithLogging(sessionHandler.GetQR))

	// Mystery content
	mux.HandleFunc("POST /mysteries", middleware.WithLogging(mysteryHandler.CreateMystery))
	mux.HandleFunc("GET /mysteries", middleware.WithLogging(mysteryHandler.ListMysteries))
	mux.HandleFunc("GET /sessions/{code}/mysteries", middleware.WithLogging(mysteryHandler.ListAvailable))

	// Rounds
	mux.HandleFunc("POST /sessions/{code}/rounds", middleware.WithLogging(roundHandler.StartRound))
	mux.HandleFunc("GET /sessions/{code}/rounds/current", middleware.WithLogging(roundHandler.GetCurrentRound))
	mux.HandleFunc("GET /sessions/{code}/assignment", middleware.WithLogging(roundHandler.GetAssignment))
	mux.HandleFunc("POST /sessions/{code}/accusation", middleware.WithLogging(roundHandler.SubmitAccusation))

	// Voting
	mux.HandleFunc("POST /sessions/{code}/votes", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("GET /sessions/{code}/tally", middleware.WithLogging(votingHandler.GetTally))

	// Presence
	mux.HandleFunc("POST /sessions/{code}/heartbeat", presenceHandler.Heartbeat)
	mux.HandleFunc("GET /sessions/{code}/presence", middleware.WithLogging(presenceHandler.GetPresence))

	// Realtime feed
	mux.HandleFunc("GET /sessions/{code}/ws", wsHandler.Serve)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("whodunit API v1"))
	})

	return mux
}
