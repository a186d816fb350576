// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):
timestamps are TIMESTAMP, JSON payloads are TEXT, defaults use
CURRENT_TIMESTAMP.

# Tables

  - decision: Lifecycle state (open/closed), algorithm, veto policy, expiry
  - decision_item: Options with an opaque JSON snapshot and display order
  - participant: Organizer and members, bearer token, completion time
  - vote: One value in [-2, 2] per (participant, option)
  - decision_result: At most one computed winner per decision
  - decision_join_code: Short code for joining, one per decision
  - app_config: Runtime key/value JSON settings
  - staff_user: Operator accounts (bcrypt hashes)

# Relationships

	decision 1──* decision_item
	decision 1──* participant
	participant 1──* vote *──1 decision_item
	decision 1──0..1 decision_result
	decision 1──1 decision_join_code

All foreign keys from owned rows use ON DELETE CASCADE.

# Constraints

  - closed_at is set iff status = 'closed'
  - one organizer per decision (partial unique index)
  - vote.value between -2 and 2
*/
package db
