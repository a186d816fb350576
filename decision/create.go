// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/unanimy/appconfig"
	"github.com/danielhkuo/unanimy/auth"
	"github.com/danielhkuo/unanimy/models"
	"github.com/danielhkuo/unanimy/store"
)

const (
	DefaultMaxOptions  = 8
	MinMaxOptions      = 2
	MaxOptionsLimit    = 20
	DefaultDecisionTTL = 2 * time.Hour
	JoinCodeTTL        = 30 * time.Minute

	joinCodeAttempts = 10
)

// Create opens a new decision with its organizer, options and join code in
// one transaction. The organizer key is returned here and never again.
func (s *Service) Create(ctx context.Context, req models.CreateDecisionRequest) (*models.CreateDecisionResponse, error) {
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = models.AlgorithmCollective
	}
	if algorithm != models.AlgorithmCollective && algorithm != models.AlgorithmMostSatisfied {
		return nil, invalidf("algorithm must be %q or %q", models.AlgorithmCollective, models.AlgorithmMostSatisfied)
	}

	allowVeto := true
	if req.AllowVeto != nil {
		allowVeto = *req.AllowVeto
	}

	maxOptions, err := s.maxOptions(ctx, req.MaxOptions)
	if err != nil {
		return nil, err
	}
	if len(req.Options) == 0 {
		return nil, invalidf("at least one option is required")
	}
	if len(req.Options) > maxOptions {
		return nil, invalidf("at most %d options are allowed", maxOptions)
	}
	for i, snapshot := range req.Options {
		trimmed := bytes.TrimSpace(snapshot)
		if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
			return nil, invalidf("option %d must be a JSON object", i)
		}
	}

	ttl, err := s.decisionTTL(ctx)
	if err != nil {
		return nil, err
	}

	organizerKey, err := auth.GenerateOrganizerKey()
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateParticipantToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	d := models.Decision{
		ID:               auth.NewID(),
		DecisionType:     models.DecisionTypeRestaurants,
		Status:           models.StatusOpen,
		Algorithm:        algorithm,
		AllowVeto:        allowVeto,
		OpenedAt:         now,
		ExpiresAt:        &expiresAt,
		OrganizerKeyHash: auth.HashOrganizerKey(organizerKey, s.salt),
	}

	options := make([]models.Option, len(req.Options))
	var joinCode string

	err = s.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateDecision(ctx, d); err != nil {
			return err
		}

		err := tx.CreateParticipant(ctx, models.Participant{
			ID:         auth.NewID(),
			DecisionID: d.ID,
			Token:      token,
			Role:       models.RoleOrganizer,
			JoinedAt:   now,
		})
		if err != nil {
			return err
		}

		for i, snapshot := range req.Options {
			options[i] = models.Option{
				ID:           auth.NewID(),
				DecisionID:   d.ID,
				DisplayOrder: i,
				Snapshot:     snapshot,
			}
			if err := tx.InsertOption(ctx, options[i]); err != nil {
				return err
			}
		}

		joinCode, err = issueJoinCode(ctx, tx, d.ID, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decision: %w", err)
	}

	s.logger.Info("decision created",
		"decision_id", d.ID,
		"algorithm", algorithm,
		"allow_veto", allowVeto,
		"options", len(options),
		"expires_at", expiresAt,
	)

	return &models.CreateDecisionResponse{
		DecisionID:       d.ID,
		JoinCode:         joinCode,
		ParticipantToken: token,
		OrganizerKey:     organizerKey,
		AdminURL:         fmt.Sprintf("/admin/d/%s?k=%s", d.ID, organizerKey),
		ExpiresAt:        expiresAt,
		Options:          options,
	}, nil
}

func issueJoinCode(ctx context.Context, tx *store.Store, decisionID string, now time.Time) (string, error) {
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := auth.GenerateJoinCode()
		if err != nil {
			return "", err
		}

		taken, err := tx.JoinCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		err = tx.CreateJoinCode(ctx, models.JoinCode{
			DecisionID: decisionID,
			Code:       code,
			ExpiresAt:  now.Add(JoinCodeTTL),
		})
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", errors.New("no free join code after retries")
}

// maxOptions resolves the option limit: request, then config, then default
func (s *Service) maxOptions(ctx context.Context, requested *int) (int, error) {
	if requested != nil {
		if *requested < MinMaxOptions || *requested > MaxOptionsLimit {
			return 0, invalidf("maxOptions must be between %d and %d", MinMaxOptions, MaxOptionsLimit)
		}
		return *requested, nil
	}

	var defaults appconfig.DecisionDefaults
	found, err := s.configGet(ctx, appconfig.KeyDecisionDefaults, &defaults)
	if err != nil {
		return 0, err
	}
	if found && defaults.MaxOptions >= MinMaxOptions && defaults.MaxOptions <= MaxOptionsLimit {
		return defaults.MaxOptions, nil
	}
	return DefaultMaxOptions, nil
}

func (s *Service) decisionTTL(ctx context.Context) (time.Duration, error) {
	var ttl appconfig.DecisionTTL
	if _, err := s.configGet(ctx, appconfig.KeyDecisionTTL, &ttl); err != nil {
		return 0, err
	}
	return ttl.For(models.DecisionTypeRestaurants, DefaultDecisionTTL), nil
}

// configGet reads a config key, treating a value of the wrong shape as unset
func (s *Service) configGet(ctx context.Context, key string, v any) (bool, error) {
	found, err := s.configs.Get(ctx, key, v)
	if errors.Is(err, appconfig.ErrMalformed) {
		s.logger.Warn("ignoring malformed config value", "key", key, "error", err)
		return false, nil
	}
	return found, err
}

// Join adds a member to the decision behind a join code
func (s *Service) Join(ctx context.Context, rawCode string) (*models.JoinResponse, error) {
	code := auth.NormalizeJoinCode(rawCode)
	if !auth.ValidJoinCodeFormat(code) {
		return nil, invalidf("code must be a 5-character alphanumeric string")
	}

	jc, err := s.store.GetJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundf("join code not found")
		}
		return nil, fmt.Errorf("failed to load join code: %w", err)
	}
	if s.now().After(jc.ExpiresAt) {
		return nil, ErrJoinCodeExpired
	}

	d, err := s.EnsureNotExpired(ctx, jc.DecisionID)
	if err != nil {
		return nil, err
	}
	if d.Status != models.StatusOpen {
		return nil, ErrClosed
	}

	token, err := auth.GenerateParticipantToken()
	if err != nil {
		return nil, err
	}
	p := models.Participant{
		ID:         auth.NewID(),
		DecisionID: d.ID,
		Token:      token,
		Role:       models.RoleMember,
		JoinedAt:   s.now(),
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to join decision: %w", err)
	}

	s.logger.Info("participant joined", "decision_id", d.ID, "participant_id", p.ID)
	return &models.JoinResponse{DecisionID: d.ID, ParticipantToken: token}, nil
}
