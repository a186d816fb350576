// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the unanimy API server.

unanimy helps a small group pick a restaurant. An organizer opens a decision
with a handful of places, friends join with a five-character code, everyone
rates each place from NoWay (-2) to Preferred (2), and the decision closes on
expiry, on the organizer's word, or once everybody is done. A vetoed place
never wins while an unvetoed one exists.

# Starting the Server

	DATABASE_URL=postgres://... ORGANIZER_KEY_SALT=... STAFF_JWT_SECRET=... go run .

SQLite works for local development:

	go run . -d "file:unanimy.db?_pragma=foreign_keys(1)" -p 3318

Settings may also live in a .env file (see -env-file).

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL URL or SQLite DSN
  - ORGANIZER_KEY_SALT (-organizer-salt): Secret for organizer key hashes
  - STAFF_JWT_SECRET (-staff-secret): Signing key for staff sessions

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (guessed from the URL)
  - STAFF_SESSION_TTL (-staff-session-ttl): default 12h
  - STAFF_EMAIL, STAFF_PASSWORD: staff account created at startup
  - CORS_ORIGINS (-cors-origins): comma-separated, default *
  - LOG_FORMAT (-log-format): text or json

# Architecture

  - decision: lifecycle, closing procedure, staff operations
  - scoring: winner selection
  - store: SQL persistence for PostgreSQL and SQLite
  - appconfig: cached runtime config read from app_config
  - handlers, router, middleware: HTTP surface
  - models: request, response and domain types
  - auth: ids, tokens, join codes, staff sessions
  - db: schema creation
  - cliparse: configuration parsing
*/
package main
