// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/unanimy/models"
)

// UpsertResult writes the result once. A second write for the same decision
// is a no-op; the return value reports whether this call inserted the row.
func (s *Store) UpsertResult(ctx context.Context, r models.Result) (bool, error) {
	const op = "store.UpsertResult"

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO decision_result (decision_id, winning_decision_item_id, summary, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (decision_id) DO NOTHING
	`, r.DecisionID, r.WinningDecisionItemID, string(r.Summary), r.ComputedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// GetResult loads the stored result for a decision
func (s *Store) GetResult(ctx context.Context, decisionID string) (*models.Result, error) {
	const op = "store.GetResult"

	var r models.Result
	var summary []byte
	err := s.q.QueryRowContext(ctx, `
		SELECT decision_id, winning_decision_item_id, summary, computed_at
		FROM decision_result
		WHERE decision_id = $1
	`, decisionID).Scan(&r.DecisionID, &r.WinningDecisionItemID, &summary, &r.ComputedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.Summary = summary
	r.ComputedAt = r.ComputedAt.UTC()
	return &r, nil
}

// JoinCodeExists reports whether code is taken by any decision
func (s *Store) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	const op = "store.JoinCodeExists"

	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM decision_join_code WHERE code = $1)
	`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateJoinCode stores the join code of a decision
func (s *Store) CreateJoinCode(ctx context.Context, jc models.JoinCode) error {
	const op = "store.CreateJoinCode"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO decision_join_code (code, decision_id, expires_at)
		VALUES ($1, $2, $3)
	`, jc.Code, jc.DecisionID, jc.ExpiresAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetJoinCode looks up a join code
func (s *Store) GetJoinCode(ctx context.Context, code string) (*models.JoinCode, error) {
	const op = "store.GetJoinCode"
	return s.getJoinCode(ctx, op, `WHERE code = $1`, code)
}

// GetJoinCodeForDecision returns the join code issued for a decision
func (s *Store) GetJoinCodeForDecision(ctx context.Context, decisionID string) (*models.JoinCode, error) {
	const op = "store.GetJoinCodeForDecision"
	return s.getJoinCode(ctx, op, `WHERE decision_id = $1`, decisionID)
}

func (s *Store) getJoinCode(ctx context.Context, op, where string, arg string) (*models.JoinCode, error) {
	var jc models.JoinCode
	err := s.q.QueryRowContext(ctx, `
		SELECT code, decision_id, expires_at FROM decision_join_code `+where, arg,
	).Scan(&jc.Code, &jc.DecisionID, &jc.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	jc.ExpiresAt = jc.ExpiresAt.UTC()
	return &jc, nil
}

