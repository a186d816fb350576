// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/unanimy/models"
)

// GetConfig returns the raw JSON value stored under key
func (s *Store) GetConfig(ctx context.Context, key string) (json.RawMessage, bool, error) {
	const op = "store.GetConfig"

	var value []byte
	err := s.q.QueryRowContext(ctx, `SELECT value_json FROM app_config WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return json.RawMessage(value), true, nil
}

// ListConfig returns every config row ordered by key
func (s *Store) ListConfig(ctx context.Context) ([]models.ConfigRow, error) {
	const op = "store.ListConfig"

	rows, err := s.q.QueryContext(ctx, `
		SELECT key, value_json, updated_at, updated_by FROM app_config ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []models.ConfigRow{}
	for rows.Next() {
		row, err := scanConfigRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// PutConfig inserts or replaces a config value
func (s *Store) PutConfig(ctx context.Context, key string, value json.RawMessage, updatedBy string, at time.Time) (*models.ConfigRow, error) {
	const op = "store.PutConfig"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO app_config (key, value_json, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key)
		DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at, updated_by = excluded.updated_by
	`, key, string(value), at.UTC(), updatedBy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row, err := scanConfigRow(s.q.QueryRowContext(ctx, `
		SELECT key, value_json, updated_at, updated_by FROM app_config WHERE key = $1
	`, key))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row, nil
}

func scanConfigRow(row rowScanner) (*models.ConfigRow, error) {
	var r models.ConfigRow
	var value []byte
	var updatedBy sql.NullString
	if err := row.Scan(&r.Key, &value, &r.UpdatedAt, &updatedBy); err != nil {
		return nil, err
	}
	r.ValueJSON = value
	r.UpdatedAt = r.UpdatedAt.UTC()
	if updatedBy.Valid {
		r.UpdatedBy = &updatedBy.String
	}
	return &r, nil
}

// UpsertStaffUser creates a staff account or replaces its password hash
func (s *Store) UpsertStaffUser(ctx context.Context, u models.StaffUser, at time.Time) error {
	const op = "store.UpsertStaffUser"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO staff_user (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash
	`, u.ID, u.Email, u.PasswordHash, at.UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetStaffUserByEmail finds a staff account
func (s *Store) GetStaffUserByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	const op = "store.GetStaffUserByEmail"

	var u models.StaffUser
	err := s.q.QueryRowContext(ctx, `
		SELECT id, email, password_hash FROM staff_user WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
