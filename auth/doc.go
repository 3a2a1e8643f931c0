// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID, join code, token, and host key generation.

# IDs and Tokens

Random identifiers use crypto/rand:

	id, err := auth.GenerateID(16)          // 32 hex chars
	token, err := auth.GeneratePlayerToken() // 192-bit URL-safe token

Player tokens are sent in the X-Player-Token header and identify a player
within their session. They are bearer tokens; the server stores them in
the player row.

# Join Codes

Sessions are joined via a 6-character code drawn from an alphabet without
ambiguous characters (no 0/O or 1/I):

	code, err := auth.GenerateJoinCode() // e.g. "AB12CD" shaped

NormalizeJoinCode uppercases client input and rejects malformed codes
before any database lookup.

# Host Keys

The session creator receives an HMAC-based host key, deterministic from
the session ID and a server-side salt:

	key := auth.GenerateHostKey(sessionID, salt)
	err := auth.ValidateHostKey(sessionID, key, salt)

Host keys gate host-only operations (kicking players, force-starting a
round) and are validated in constant time.
*/
package auth
