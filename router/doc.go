// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the route table using Go 1.22+ pattern routing.

NewRouter wires every handler to its path and wraps JSON routes in the
logging middleware. The heartbeat route skips request logging (it fires
every few seconds per client) and the websocket route manages its own
connection lifecycle.

	mux := router.NewRouter(db, cfg, notifier, hub, rng)
	http.ListenAndServe(addr, middleware.CORS(mux))

Routes are grouped by concern: session lifecycle, mystery content,
rounds, voting, presence, and the realtime feed. See package handlers
for per-route behavior.
*/
package router
