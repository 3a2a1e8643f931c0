// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Flags take precedence; environment variables are the fallback.

# Settings

Required:

  - DATABASE_URL (-d): connection string (Postgres DSN or SQLite path)
  - HOST_KEY_SALT (--host-salt): secret for host key HMAC

Optional:

  - PORT (-p): server port (default: 3419)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"
  - BASE_URL (--base-url): public base URL used in join links and QR
    codes (default: http://localhost:PORT)

SQLite mode exists for local development; the realtime notifier degrades
to in-process fan-out there since LISTEN/NOTIFY is Postgres-only.
*/
package cliparse
