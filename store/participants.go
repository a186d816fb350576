// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/unanimy/models"
)

// InsertOption adds an option to a decision
func (s *Store) InsertOption(ctx context.Context, o models.Option) error {
	const op = "store.InsertOption"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO decision_item (id, decision_id, display_order, snapshot)
		VALUES ($1, $2, $3, $4)
	`, o.ID, o.DecisionID, o.DisplayOrder, string(o.Snapshot))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListOptions returns a decision's options by display_order
func (s *Store) ListOptions(ctx context.Context, decisionID string) ([]models.Option, error) {
	const op = "store.ListOptions"

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, decision_id, display_order, snapshot
		FROM decision_item
		WHERE decision_id = $1
		ORDER BY display_order
	`, decisionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var o models.Option
		var snapshot []byte
		if err := rows.Scan(&o.ID, &o.DecisionID, &o.DisplayOrder, &snapshot); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		o.Snapshot = snapshot
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return options, nil
}

// OptionBelongs reports whether optionID is an option of decisionID
func (s *Store) OptionBelongs(ctx context.Context, decisionID, optionID string) (bool, error) {
	const op = "store.OptionBelongs"

	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM decision_item WHERE id = $1 AND decision_id = $2)
	`, optionID, decisionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateParticipant inserts an organizer or member
func (s *Store) CreateParticipant(ctx context.Context, p models.Participant) error {
	const op = "store.CreateParticipant"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO participant (id, decision_id, token, role, joined_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.DecisionID, p.Token, p.Role, p.JoinedAt.UTC(), nullTime(p.CompletedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetParticipantByToken finds the participant holding token in a decision
func (s *Store) GetParticipantByToken(ctx context.Context, decisionID, token string) (*models.Participant, error) {
	const op = "store.GetParticipantByToken"

	var p models.Participant
	var completedAt sql.NullTime
	err := s.q.QueryRowContext(ctx, `
		SELECT id, decision_id, token, role, joined_at, completed_at
		FROM participant
		WHERE decision_id = $1 AND token = $2
	`, decisionID, token).Scan(&p.ID, &p.DecisionID, &p.Token, &p.Role, &p.JoinedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.JoinedAt = p.JoinedAt.UTC()
	p.CompletedAt = timePtr(completedAt)
	return &p, nil
}

// MarkCompleted sets completed_at once. It reports whether the row changed.
func (s *Store) MarkCompleted(ctx context.Context, participantID string, at time.Time) (bool, error) {
	const op = "store.MarkCompleted"

	res, err := s.q.ExecContext(ctx, `
		UPDATE participant SET completed_at = $1
		WHERE id = $2 AND completed_at IS NULL
	`, at.UTC(), participantID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// CountParticipants returns total and completed participant counts
func (s *Store) CountParticipants(ctx context.Context, decisionID string) (models.Counts, error) {
	const op = "store.CountParticipants"

	var c models.Counts
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(completed_at)
		FROM participant
		WHERE decision_id = $1
	`, decisionID).Scan(&c.Participants, &c.Completed)
	if err != nil {
		return models.Counts{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// UpsertVote stores a participant's value for an option; the latest value wins
func (s *Store) UpsertVote(ctx context.Context, v models.Vote) error {
	const op = "store.UpsertVote"

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO vote (participant_id, decision_item_id, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id, decision_item_id)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, v.ParticipantID, v.DecisionItemID, v.Value, v.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListVotesByOption groups every vote value of a decision by option ID.
// Options without votes are absent from the map.
func (s *Store) ListVotesByOption(ctx context.Context, decisionID string) (map[string][]int, error) {
	const op = "store.ListVotesByOption"

	rows, err := s.q.QueryContext(ctx, `
		SELECT v.decision_item_id, v.value
		FROM vote v
		JOIN decision_item di ON di.id = v.decision_item_id
		WHERE di.decision_id = $1
	`, decisionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	votes := make(map[string][]int)
	for rows.Next() {
		var optionID string
		var value int
		if err := rows.Scan(&optionID, &value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		votes[optionID] = append(votes[optionID], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return votes, nil
}

// ListParticipantVotes returns a participant's votes keyed by option ID
func (s *Store) ListParticipantVotes(ctx context.Context, participantID string) (map[string]int, error) {
	const op = "store.ListParticipantVotes"

	rows, err := s.q.QueryContext(ctx, `
		SELECT decision_item_id, value FROM vote WHERE participant_id = $1
	`, participantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	votes := make(map[string]int)
	for rows.Next() {
		var optionID string
		var value int
		if err := rows.Scan(&optionID, &value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		votes[optionID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return votes, nil
}
