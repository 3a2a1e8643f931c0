// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by all handlers.

# Helpers

  - WithLogging: wraps a handler with slog request/completion logging
  - JSONResponse / ErrorResponse: JSON encoding with consistent error shape
  - ParseJSONBody: request body decoding
  - PlayerToken: X-Player-Token header extraction
  - CORS: permissive CORS for the browser frontend, including preflight
  - GetClientIP: X-Forwarded-For / X-Real-IP / RemoteAddr resolution

# Headers

The API uses two identity headers:

  - X-Player-Token: identifies a player within their session
  - X-Host-Key: authorizes host-only session operations
*/
package middleware
