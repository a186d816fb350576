// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/unanimy/models"
)

const decisionColumns = `d.id, d.decision_type, d.status, d.algorithm, d.allow_veto,
	d.opened_at, d.expires_at, d.closed_at, d.organizer_key_hash`

func scanDecision(row rowScanner, extra ...any) (*models.Decision, error) {
	var d models.Decision
	var expiresAt, closedAt sql.NullTime

	dest := []any{
		&d.ID, &d.DecisionType, &d.Status, &d.Algorithm, &d.AllowVeto,
		&d.OpenedAt, &expiresAt, &closedAt, &d.OrganizerKeyHash,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	d.OpenedAt = d.OpenedAt.UTC()
	d.ExpiresAt = timePtr(expiresAt)
	d.ClosedAt = timePtr(closedAt)
	return &d, nil
}

// CreateDecision inserts a new decision row
func (s *Store) CreateDecision(ctx context.Context, d models.Decision) error {
	const op = "store.CreateDecision"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO decision (id, decision_type, status, algorithm, allow_veto, opened_at, expires_at, closed_at, organizer_key_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.DecisionType, d.Status, d.Algorithm, d.AllowVeto, d.OpenedAt.UTC(),
		nullTime(d.ExpiresAt), nullTime(d.ClosedAt), d.OrganizerKeyHash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetDecision loads a decision by ID
func (s *Store) GetDecision(ctx context.Context, id string) (*models.Decision, error) {
	const op = "store.GetDecision"

	row := s.q.QueryRowContext(ctx, `SELECT `+decisionColumns+` FROM decision d WHERE d.id = $1`, id)
	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// TransitionStatus moves a decision from expected to next only if its
// current status is still expected. It reports whether this call performed
// the transition.
func (s *Store) TransitionStatus(ctx context.Context, id, expected, next string, closedAt time.Time) (bool, error) {
	const op = "store.TransitionStatus"

	res, err := s.q.ExecContext(ctx, `
		UPDATE decision
		SET status = $1, closed_at = $2
		WHERE id = $3 AND status = $4
	`, next, closedAt.UTC(), id, expected)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// DecisionFilter narrows the staff decision listing
type DecisionFilter struct {
	Status string // open, closed, or empty for all
	Query  string // decision ID prefix or exact join code
	Sort   string // opened_at, expires_at or closed_at
	Desc   bool
	Limit  int
}

// DecisionListRow is a decision with its join code, if any
type DecisionListRow struct {
	Decision models.Decision
	JoinCode *string
}

// likeEscaper makes user input match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var sortColumns = map[string]string{
	"opened_at":  "d.opened_at",
	"expires_at": "d.expires_at",
	"closed_at":  "d.closed_at",
}

// ListDecisions returns decisions for operator tooling
func (s *Store) ListDecisions(ctx context.Context, f DecisionFilter) ([]DecisionListRow, error) {
	const op = "store.ListDecisions"

	var where []string
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("d.status = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, likeEscaper.Replace(strings.ToLower(q))+"%")
		idArg := len(args)
		args = append(args, strings.ToUpper(q))
		where = append(where, fmt.Sprintf(`(d.id LIKE $%d ESCAPE '\' OR jc.code = $%d)`, idArg, len(args)))
	}

	col, ok := sortColumns[f.Sort]
	if !ok {
		col = sortColumns["opened_at"]
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}

	query := `SELECT ` + decisionColumns + `, jc.code
		FROM decision d
		LEFT JOIN decision_join_code jc ON jc.decision_id = d.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// Rows without a value for the sort column go last on both drivers
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY (%s IS NULL), %s %s, d.id LIMIT $%d", col, col, dir, len(args))

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []DecisionListRow
	for rows.Next() {
		var code sql.NullString
		d, err := scanDecision(rows, &code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		row := DecisionListRow{Decision: *d}
		if code.Valid {
			row.JoinCode = &code.String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
