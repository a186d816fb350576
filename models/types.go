// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Decision status constants
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Scoring algorithm constants
const (
	AlgorithmCollective    = "collective"
	AlgorithmMostSatisfied = "most_satisfied"
)

// Participant roles
const (
	RoleOrganizer = "organizer"
	RoleMember    = "member"
)

// DecisionTypeRestaurants is the only decision type the service creates.
const DecisionTypeRestaurants = "restaurants"

// Request types

// Each entry in Options is an opaque display snapshot (e.g. place details).
type CreateDecisionRequest struct {
	Algorithm  string            `json:"algorithm"`
	AllowVeto  *bool             `json:"allowVeto"`
	MaxOptions *int              `json:"maxOptions"`
	Options    []json.RawMessage `json:"options"`
}

type JoinRequest struct {
	Code string `json:"code"`
}

// Vote is either a number in [-2, 2] or one of the vote labels.
type CastVoteRequest struct {
	DecisionItemID string          `json:"decisionItemId"`
	Vote           json.RawMessage `json:"vote"`
}

type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PutConfigRequest struct {
	Key       string          `json:"key"`
	ValueJSON json.RawMessage `json:"value_json"`
}

// Response types

type CreateDecisionResponse struct {
	DecisionID       string    `json:"decisionId"`
	JoinCode         string    `json:"joinCode"`
	ParticipantToken string    `json:"participantToken"`
	OrganizerKey     string    `json:"organizerKey"`
	AdminURL         string    `json:"adminUrl"`
	ExpiresAt        time.Time `json:"expiresAt"`
	Options          []Option  `json:"options"`
}

type JoinResponse struct {
	DecisionID       string `json:"decisionId"`
	ParticipantToken string `json:"participantToken"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type CloseResponse struct {
	OK            bool `json:"ok"`
	AlreadyClosed bool `json:"alreadyClosed"`
}

type CompleteResponse struct {
	OK         bool `json:"ok"`
	AutoClosed bool `json:"autoClosed"`
}

type ResultResponse struct {
	Winner    json.RawMessage `json:"winner"`
	Counts    Counts          `json:"counts"`
	Algorithm string          `json:"algorithm"`
}

type OrganizerView struct {
	Decision Decision `json:"decision"`
	JoinCode *string  `json:"joinCode"`
	Counts   Counts   `json:"counts"`
}

type ParticipantView struct {
	Decision Decision       `json:"decision"`
	Options  []Option       `json:"options"`
	JoinCode *string        `json:"joinCode"`
	MyVotes  map[string]int `json:"myVotes"`
	Counts   Counts         `json:"counts"`
}

type StaffDecisionRow struct {
	Decision
	JoinCode  *string `json:"join_code"`
	ExpiresIn string  `json:"expires_in,omitempty"`
}

type StaffDecisionsResponse struct {
	Rows []StaffDecisionRow `json:"rows"`
}

type ConfigRowsResponse struct {
	Rows []ConfigRow `json:"rows"`
}

type ConfigRowResponse struct {
	Row ConfigRow `json:"row"`
}

// Domain types

type Decision struct {
	ID               string     `json:"id"`
	DecisionType     string     `json:"decision_type"`
	Status           string     `json:"status"`
	Algorithm        string     `json:"algorithm"`
	AllowVeto        bool       `json:"allow_veto"`
	OpenedAt         time.Time  `json:"opened_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	ClosedAt         *time.Time `json:"closed_at"`
	OrganizerKeyHash string     `json:"-"` // Never expose in JSON
}

// Option is a decision item. Snapshot is stored and returned unchanged.
type Option struct {
	ID           string          `json:"id"`
	DecisionID   string          `json:"decision_id"`
	DisplayOrder int             `json:"display_order"`
	Snapshot     json.RawMessage `json:"snapshot"`
}

type Participant struct {
	ID          string     `json:"id"`
	DecisionID  string     `json:"decision_id"`
	Token       string     `json:"-"` // Never expose in JSON
	Role        string     `json:"role"`
	JoinedAt    time.Time  `json:"joined_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Vote struct {
	ParticipantID  string    `json:"participant_id"`
	DecisionItemID string    `json:"decision_item_id"`
	Value          int       `json:"value"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Counts struct {
	Participants int `json:"participants"`
	Completed    int `json:"completed"`
}

// Result is written once when a decision closes. Summary is opaque JSON.
type Result struct {
	DecisionID            string          `json:"decision_id"`
	WinningDecisionItemID string          `json:"winning_decision_item_id"`
	Summary               json.RawMessage `json:"summary"`
	ComputedAt            time.Time       `json:"computed_at"`
}

// ResultSummary is the shape written into Result.Summary.
type ResultSummary struct {
	Winner    WinnerSummary `json:"winner"`
	Counts    Counts        `json:"counts"`
	Algorithm string        `json:"algorithm"`
}

type WinnerSummary struct {
	DecisionItemID string          `json:"decisionItemId"`
	Snapshot       json.RawMessage `json:"snapshot"`
}

type JoinCode struct {
	DecisionID string    `json:"decision_id"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type ConfigRow struct {
	Key       string          `json:"key"`
	ValueJSON json.RawMessage `json:"value_json"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy *string         `json:"updated_by"`
}

type StaffUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
