// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is accepted by both PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Tables lists every table in dependency order (parents first)
var Tables = []string{
	"decision",
	"decision_item",
	"participant",
	"vote",
	"decision_result",
	"decision_join_code",
	"app_config",
	"staff_user",
}

const schema = `
-- Decisions
CREATE TABLE IF NOT EXISTS decision (
    id TEXT PRIMARY KEY,
    decision_type TEXT NOT NULL DEFAULT 'restaurants',
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    algorithm TEXT NOT NULL DEFAULT 'collective' CHECK (algorithm IN ('collective', 'most_satisfied')),
    allow_veto BOOLEAN NOT NULL DEFAULT TRUE,
    opened_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at TIMESTAMP,
    closed_at TIMESTAMP,
    organizer_key_hash TEXT NOT NULL,
    CHECK ((status = 'open' AND closed_at IS NULL) OR (status = 'closed' AND closed_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_decision_status ON decision(status);

-- Options
CREATE TABLE IF NOT EXISTS decision_item (
    id TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL REFERENCES decision(id) ON DELETE CASCADE,
    display_order INTEGER NOT NULL,
    snapshot TEXT NOT NULL,
    UNIQUE (decision_id, display_order)
);

CREATE INDEX IF NOT EXISTS idx_decision_item_decision_id ON decision_item(decision_id);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL REFERENCES decision(id) ON DELETE CASCADE,
    token TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL CHECK (role IN ('organizer', 'member')),
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_participant_decision_id ON participant(decision_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_participant_one_organizer ON participant(decision_id) WHERE role = 'organizer';

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    participant_id TEXT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    decision_item_id TEXT NOT NULL REFERENCES decision_item(id) ON DELETE CASCADE,
    value INTEGER NOT NULL CHECK (value >= -2 AND value <= 2),
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (participant_id, decision_item_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_decision_item_id ON vote(decision_item_id);

-- Results
CREATE TABLE IF NOT EXISTS decision_result (
    decision_id TEXT PRIMARY KEY REFERENCES decision(id) ON DELETE CASCADE,
    winning_decision_item_id TEXT NOT NULL REFERENCES decision_item(id),
    summary TEXT NOT NULL,
    computed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Join codes
CREATE TABLE IF NOT EXISTS decision_join_code (
    code TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL UNIQUE REFERENCES decision(id) ON DELETE CASCADE,
    expires_at TIMESTAMP NOT NULL
);

-- Runtime configuration
CREATE TABLE IF NOT EXISTS app_config (
    key TEXT PRIMARY KEY,
    value_json TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_by TEXT
);

-- Staff operators
CREATE TABLE IF NOT EXISTS staff_user (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
