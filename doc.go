// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the whodunit API server.

Whodunit is a browser-based murder-mystery party game: players join a
session via a 6-character code, vote on scenarios, receive secret role
assignments, and the round's investigator accuses a suspect.

# Starting the Server

The server requires environment variables or CLI flags for
configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3419 -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string (or SQLite path)
  - HOST_KEY_SALT (--host-salt): Secret for host key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3419)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"
  - BASE_URL (--base-url): Public base URL for join links and QR codes

# Architecture

The server uses a handler-based architecture with dependency injection:

  - game: round controller (role distribution, accusations, vote tally)
  - handlers: HTTP request handlers (sessions, mysteries, rounds, votes)
  - notify: websocket hub + Postgres LISTEN/NOTIFY event feed
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Join codes, tokens, host key HMAC
  - db: Schema creation
  - cliparse: Configuration parsing

Request handlers are stateless; the database row store is the only
shared mutable state, so instances scale horizontally behind a load
balancer with LISTEN/NOTIFY carrying events between them.

See package documentation for each component.
*/
package main
