// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/unanimy/appconfig"
	"github.com/danielhkuo/unanimy/auth"
	"github.com/danielhkuo/unanimy/models"
	"github.com/danielhkuo/unanimy/scoring"
	"github.com/danielhkuo/unanimy/store"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service owns the decision lifecycle. It holds no mutable state of its
// own; every open -> closed transition goes through the store's
// conditional update.
type Service struct {
	store   *store.Store
	configs *appconfig.Cache
	salt    string
	clock   Clock
	logger  *slog.Logger

	// runs inside the closing transaction just before the status update
	beforeTransition func(ctx context.Context, tx *store.Store, id string) error
}

type Option func(*Service)

func WithClock(clock Clock) Option {
	return func(s *Service) { s.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(st *store.Store, configs *appconfig.Cache, organizerKeySalt string, opts ...Option) *Service {
	s := &Service{
		store:   st,
		configs: configs,
		salt:    organizerKeySalt,
		clock:   systemClock{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configs returns the config cache the service reads from
func (s *Service) Configs() *appconfig.Cache {
	return s.configs
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Service) getDecision(ctx context.Context, id string) (*models.Decision, error) {
	d, err := s.store.GetDecision(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("decision not found")
		}
		return nil, fmt.Errorf("failed to load decision: %w", err)
	}
	return d, nil
}

// EnsureNotExpired loads a decision and closes it if its expiry has passed.
// The returned decision reflects the status after that check.
func (s *Service) EnsureNotExpired(ctx context.Context, id string) (*models.Decision, error) {
	d, err := s.getDecision(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.StatusOpen || d.ExpiresAt == nil || s.now().Before(*d.ExpiresAt) {
		return d, nil
	}

	if _, err := s.closeDecision(ctx, id, "expired"); err != nil {
		if !errors.Is(err, ErrNoOptions) {
			return nil, err
		}

		// Nothing to score: close without a result
		closed, err := s.store.TransitionStatus(ctx, id, models.StatusOpen, models.StatusClosed, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to close expired decision: %w", err)
		}
		if closed {
			s.logger.Info("expired decision closed without result", "decision_id", id)
		}
	}

	return s.getDecision(ctx, id)
}

// closeDecision runs the full closing procedure in one transaction: score
// the stored votes, write the result once, then flip status open -> closed
// with a conditional update. It reports whether this call performed the
// transition; false means another closer got there first.
func (s *Service) closeDecision(ctx context.Context, id, reason string) (bool, error) {
	var won bool
	var winnerID string

	err := s.store.InTx(ctx, func(tx *store.Store) error {
		d, err := tx.GetDecision(ctx, id)
		if err != nil {
			return err
		}
		if d.Status != models.StatusOpen {
			return nil
		}

		options, err := tx.ListOptions(ctx, id)
		if err != nil {
			return err
		}
		votes, err := tx.ListVotesByOption(ctx, id)
		if err != nil {
			return err
		}

		input := make([]scoring.OptionVotes, len(options))
		for i, o := range options {
			input[i] = scoring.OptionVotes{OptionID: o.ID, Votes: votes[o.ID]}
		}
		result := scoring.Compute(d.Algorithm, d.AllowVeto, input)
		if result.WinnerOptionID == nil {
			return ErrNoOptions
		}
		winnerID = *result.WinnerOptionID

		counts, err := tx.CountParticipants(ctx, id)
		if err != nil {
			return err
		}

		var snapshot json.RawMessage
		for _, o := range options {
			if o.ID == winnerID {
				snapshot = o.Snapshot
				break
			}
		}
		summary, err := json.Marshal(models.ResultSummary{
			Winner:    models.WinnerSummary{DecisionItemID: winnerID, Snapshot: snapshot},
			Counts:    counts,
			Algorithm: d.Algorithm,
		})
		if err != nil {
			return err
		}

		now := s.now()
		if _, err := tx.UpsertResult(ctx, models.Result{
			DecisionID:            id,
			WinningDecisionItemID: winnerID,
			Summary:               summary,
			ComputedAt:            now,
		}); err != nil {
			return err
		}

		if s.beforeTransition != nil {
			if err := s.beforeTransition(ctx, tx, id); err != nil {
				return err
			}
		}

		won, err = tx.TransitionStatus(ctx, id, models.StatusOpen, models.StatusClosed, now)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoOptions):
			return false, err
		case errors.Is(err, store.ErrNotFound):
			return false, notFoundf("decision not found")
		}
		return false, fmt.Errorf("failed to close decision: %w", err)
	}

	if won {
		s.logger.Info("decision closed", "decision_id", id, "reason", reason, "winner", winnerID)
	} else {
		s.logger.Debug("decision already closed", "decision_id", id, "reason", reason)
	}
	return won, nil
}

// Close closes a decision on behalf of an organizer or staff operator.
// Closing a closed decision is not an error.
func (s *Service) Close(ctx context.Context, id, requestedBy string) (*models.CloseResponse, error) {
	d, err := s.EnsureNotExpired(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == models.StatusClosed {
		return &models.CloseResponse{OK: true, AlreadyClosed: true}, nil
	}

	won, err := s.closeDecision(ctx, id, "closed by "+requestedBy)
	if err != nil {
		return nil, err
	}
	return &models.CloseResponse{OK: true, AlreadyClosed: !won}, nil
}

// Complete marks a participant as done voting. When every participant is
// done the decision is closed.
func (s *Service) Complete(ctx context.Context, id string, p *models.Participant) (*models.CompleteResponse, error) {
	d, err := s.EnsureNotExpired(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.MarkCompleted(ctx, p.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to mark participant complete: %w", err)
	}
	if d.Status != models.StatusOpen {
		return &models.CompleteResponse{OK: true}, nil
	}

	counts, err := s.store.CountParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	allCompleted := counts.Participants > 0 && counts.Completed == counts.Participants
	if allCompleted {
		if _, err := s.closeDecision(ctx, id, "all participants completed"); err != nil {
			return nil, err
		}
	}

	return &models.CompleteResponse{OK: true, AutoClosed: allCompleted}, nil
}

// CastVote records a participant's value for an option. The latest value
// for a (participant, option) pair replaces any earlier one.
func (s *Service) CastVote(ctx context.Context, id string, p *models.Participant, optionID string, value int) error {
	if value < -2 || value > 2 {
		return invalidf("vote must be between -2 and 2")
	}
	optionID, err := auth.ParseID(optionID)
	if err != nil {
		return invalidf("invalid decisionItemId")
	}

	d, err := s.EnsureNotExpired(ctx, id)
	if err != nil {
		return err
	}
	if d.Status != models.StatusOpen {
		return ErrClosed
	}

	ok, err := s.store.OptionBelongs(ctx, id, optionID)
	if err != nil {
		return fmt.Errorf("failed to load decision item: %w", err)
	}
	if !ok {
		return notFoundf("decision item not found")
	}

	err = s.store.UpsertVote(ctx, models.Vote{
		ParticipantID:  p.ID,
		DecisionItemID: optionID,
		Value:          value,
		UpdatedAt:      s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

// GetResult returns the stored winner, counts and algorithm
func (s *Service) GetResult(ctx context.Context, id string) (*models.ResultResponse, error) {
	if _, err := s.EnsureNotExpired(ctx, id); err != nil {
		return nil, err
	}

	r, err := s.store.GetResult(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrResultNotReady
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	var summary models.ResultSummary
	if err := json.Unmarshal(r.Summary, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode result summary: %w", err)
	}

	winner := summary.Winner.Snapshot
	if len(winner) == 0 {
		winner = json.RawMessage("null")
	}
	return &models.ResultResponse{
		Winner:    winner,
		Counts:    summary.Counts,
		Algorithm: summary.Algorithm,
	}, nil
}

// AuthenticateParticipant resolves a participant token within a decision
func (s *Service) AuthenticateParticipant(ctx context.Context, id, token string) (*models.Participant, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing participant token", ErrUnauthenticated)
	}

	p, err := s.store.GetParticipantByToken(ctx, id, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid participant token for decision", ErrForbidden)
		}
		return nil, fmt.Errorf("failed to validate participant token: %w", err)
	}
	return p, nil
}

// AuthorizeOrganizer checks an organizer key against the stored hash
func (s *Service) AuthorizeOrganizer(ctx context.Context, id, key string) error {
	if key == "" {
		return fmt.Errorf("%w: missing organizer key", ErrUnauthenticated)
	}

	d, err := s.getDecision(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.ValidateOrganizerKey(key, d.OrganizerKeyHash, s.salt); err != nil {
		return fmt.Errorf("%w: invalid organizer key", ErrForbidden)
	}
	return nil
}
