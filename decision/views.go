// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/unanimy/models"
	"github.com/danielhkuo/unanimy/store"
)

// OrganizerView returns decision state for the organizer page. Call
// AuthorizeOrganizer first.
func (s *Service) OrganizerView(ctx context.Context, id string) (*models.OrganizerView, error) {
	d, err := s.EnsureNotExpired(ctx, id)
	if err != nil {
		return nil, err
	}

	joinCode, err := s.liveJoinCode(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	return &models.OrganizerView{Decision: *d, JoinCode: joinCode, Counts: counts}, nil
}

// ParticipantView returns decision state, options and the caller's own votes
func (s *Service) ParticipantView(ctx context.Context, id string, p *models.Participant) (*models.ParticipantView, error) {
	d, err := s.EnsureNotExpired(ctx, id)
	if err != nil {
		return nil, err
	}

	options, err := s.store.ListOptions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load decision options: %w", err)
	}
	myVotes, err := s.store.ListParticipantVotes(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant votes: %w", err)
	}
	joinCode, err := s.liveJoinCode(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	return &models.ParticipantView{
		Decision: *d,
		Options:  options,
		JoinCode: joinCode,
		MyVotes:  myVotes,
		Counts:   counts,
	}, nil
}

// liveJoinCode returns the decision's join code while it can still be used
func (s *Service) liveJoinCode(ctx context.Context, id string) (*string, error) {
	jc, err := s.store.GetJoinCodeForDecision(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load join code: %w", err)
	}
	if !s.now().Before(jc.ExpiresAt) {
		return nil, nil
	}
	return &jc.Code, nil
}
