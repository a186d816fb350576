// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL URL or SQLite DSN (required)
  - DatabaseType: postgres or sqlite (inferred from the URL when unset)
  - OrganizerKeySalt: Secret for organizer key HMAC (required)
  - StaffJWTSecret: Secret for staff session tokens (required)
  - StaffSessionTTL: Staff session lifetime (default: 12h)
  - StaffEmail, StaffPassword: Optional staff account created at startup
  - CORSOrigins: Allowed origins (default: *)
  - LogFormat: text or json (default: text)

# CLI Flags

	-p                 Server port
	-d                 Database URL
	-t                 Database type
	-env-file          Optional .env file (default: .env)
	-organizer-salt    Organizer key salt
	-staff-secret      Staff session secret
	-staff-session-ttl Staff session lifetime
	-cors-origins      Comma-separated origins
	-log-format        text or json

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	ORGANIZER_KEY_SALT → -organizer-salt
	STAFF_JWT_SECRET   → -staff-secret
	STAFF_SESSION_TTL  → -staff-session-ttl
	CORS_ORIGINS       → -cors-origins
	LOG_FORMAT         → -log-format
	STAFF_EMAIL, STAFF_PASSWORD (environment only)

Variables from the .env file (github.com/joho/godotenv) fill in anything not
already set in the environment. CLI flags take precedence over both.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - ORGANIZER_KEY_SALT and STAFF_JWT_SECRET must be provided
  - STAFF_EMAIL and STAFF_PASSWORD must be set together
*/
package cliparse
