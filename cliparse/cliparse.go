// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Secrets
	OrganizerKeySalt string
	StaffJWTSecret   string

	StaffSessionTTL time.Duration

	// Optional staff account created at startup
	StaffEmail    string
	StaffPassword string

	CORSOrigins []string
	LogFormat   string
}

// ParseFlags reads flags, then a .env file, then the environment.
// Flags take precedence; .env never overrides variables already set.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, origins, sessionTTL string

	fset := flag.NewFlagSet("unanimy", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fset.StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.OrganizerKeySalt, "organizer-salt", "", "Organizer key salt (prefer env)")
	fset.StringVar(&cfg.StaffJWTSecret, "staff-secret", "", "Staff session signing secret (prefer env)")

	fset.StringVar(&sessionTTL, "staff-session-ttl", "", "Staff session lifetime, e.g. 12h")
	fset.StringVar(&origins, "cors-origins", "", "Comma-separated allowed origins")
	fset.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
	}
	if cfg.DatabaseType == "" {
		if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
			cfg.DatabaseType = "postgres"
		} else {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "postgres" && cfg.DatabaseType != "sqlite" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.OrganizerKeySalt == "" {
		cfg.OrganizerKeySalt = os.Getenv("ORGANIZER_KEY_SALT")
	}
	if cfg.OrganizerKeySalt == "" {
		return Config{}, errors.New("ORGANIZER_KEY_SALT required")
	}

	if cfg.StaffJWTSecret == "" {
		cfg.StaffJWTSecret = os.Getenv("STAFF_JWT_SECRET")
	}
	if cfg.StaffJWTSecret == "" {
		return Config{}, errors.New("STAFF_JWT_SECRET required")
	}

	if sessionTTL == "" {
		sessionTTL = os.Getenv("STAFF_SESSION_TTL")
	}
	cfg.StaffSessionTTL = 12 * time.Hour
	if sessionTTL != "" {
		ttl, err := time.ParseDuration(sessionTTL)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid staff session TTL %q", sessionTTL)
		}
		cfg.StaffSessionTTL = ttl
	}

	cfg.StaffEmail = strings.ToLower(strings.TrimSpace(os.Getenv("STAFF_EMAIL")))
	cfg.StaffPassword = os.Getenv("STAFF_PASSWORD")
	if (cfg.StaffEmail == "") != (cfg.StaffPassword == "") {
		return Config{}, errors.New("STAFF_EMAIL and STAFF_PASSWORD must be set together")
	}

	if origins == "" {
		origins = os.Getenv("CORS_ORIGINS")
	}
	cfg.CORSOrigins = splitList(origins)
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
