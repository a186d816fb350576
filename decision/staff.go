// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/unanimy/appconfig"
	"github.com/danielhkuo/unanimy/auth"
	"github.com/danielhkuo/unanimy/models"
	"github.com/danielhkuo/unanimy/store"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListQuery is the operator listing filter as received from the caller
type ListQuery struct {
	Status string // open, closed, all
	Query  string
	Sort   string // opened_at, expires_at, closed_at
	Order  string // asc, desc
	Limit  int
}

// ListDecisions returns decisions for staff tooling, newest first by default
func (s *Service) ListDecisions(ctx context.Context, q ListQuery) ([]store.DecisionListRow, error) {
	f := store.DecisionFilter{Query: q.Query, Sort: q.Sort, Limit: q.Limit}

	switch q.Status {
	case "", "all":
	case models.StatusOpen, models.StatusClosed:
		f.Status = q.Status
	default:
		return nil, invalidf("status must be open, closed or all")
	}

	switch q.Sort {
	case "":
		f.Sort = "opened_at"
	case "opened_at", "expires_at", "closed_at":
	default:
		return nil, invalidf("sort must be opened_at, expires_at or closed_at")
	}

	switch q.Order {
	case "", "desc":
		f.Desc = true
	case "asc":
	default:
		return nil, invalidf("order must be asc or desc")
	}

	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}

	rows, err := s.store.ListDecisions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return rows, nil
}

// ListConfig returns every runtime config row
func (s *Service) ListConfig(ctx context.Context) ([]models.ConfigRow, error) {
	rows, err := s.store.ListConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}
	return rows, nil
}

// PutConfig stores a config value and drops it from the cache
func (s *Service) PutConfig(ctx context.Context, key string, value json.RawMessage, updatedBy string) (*models.ConfigRow, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalidf("key is required")
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, invalidf("value_json must be valid JSON")
	}
	if err := checkKnownConfig(key, value); err != nil {
		return nil, err
	}

	row, err := s.store.PutConfig(ctx, key, value, updatedBy, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	s.configs.Invalidate(key)

	s.logger.Info("config updated", "key", key, "updated_by", updatedBy)
	return row, nil
}

// checkKnownConfig rejects values for keys the service reads that it could
// not use. Other keys are stored as given.
func checkKnownConfig(key string, value json.RawMessage) error {
	switch key {
	case appconfig.KeyDecisionTTL:
		var ttl appconfig.DecisionTTL
		if err := json.Unmarshal(value, &ttl); err != nil {
			return invalidf("%s must map decision types to whole seconds", key)
		}
		for decisionType, secs := range ttl {
			if secs <= 0 {
				return invalidf("%s[%q] must be positive", key, decisionType)
			}
		}
	case appconfig.KeyDecisionDefaults:
		var defaults appconfig.DecisionDefaults
		if err := json.Unmarshal(value, &defaults); err != nil {
			return invalidf("%s must be an object", key)
		}
		if defaults.MaxOptions != 0 && (defaults.MaxOptions < MinMaxOptions || defaults.MaxOptions > MaxOptionsLimit) {
			return invalidf("%s.maxOptions must be between %d and %d", key, MinMaxOptions, MaxOptionsLimit)
		}
	}
	return nil
}

// AuthenticateStaff checks a staff email and password
func (s *Service) AuthenticateStaff(ctx context.Context, email, password string) (*models.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalidf("email and password are required")
	}

	u, err := s.store.GetStaffUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, auth.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load staff user: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return u, nil
}

// EnsureStaffUser creates or updates a staff account
func (s *Service) EnsureStaffUser(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.UpsertStaffUser(ctx, models.StaffUser{ID: auth.NewID(), Email: email, PasswordHash: hash}, s.now()); err != nil {
		return fmt.Errorf("failed to save staff user: %w", err)
	}
	return nil
}
