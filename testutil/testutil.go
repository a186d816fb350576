// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/unanimy/appconfig"
	"github.com/danielhkuo/unanimy/auth"
	"github.com/danielhkuo/unanimy/cliparse"
	"github.com/danielhkuo/unanimy/db"
	"github.com/danielhkuo/unanimy/decision"
	"github.com/danielhkuo/unanimy/models"
	"github.com/danielhkuo/unanimy/store"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The pool is limited to one connection so transactions serialize.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "file:test.db",
		DatabaseType:     "sqlite",
		OrganizerKeySalt: "test-organizer-salt",
		StaffJWTSecret:   "test-staff-secret",
		StaffSessionTTL:  time.Hour,
		CORSOrigins:      []string{"*"},
		LogFormat:        "text",
	}
}

// NewTestService wires a decision service over st with a discarding logger
func NewTestService(st *store.Store, cfg cliparse.Config, opts ...decision.Option) *decision.Service {
	opts = append([]decision.Option{decision.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return decision.NewService(st, appconfig.New(st), cfg.OrganizerKeySalt, opts...)
}

// TestDecision holds the credentials of a fixture decision
type TestDecision struct {
	ID             string
	OrganizerKey   string
	OrganizerID    string
	OrganizerToken string
	JoinCode       string
	OptionIDs      []string
}

// DecisionOpts configures CreateTestDecision
type DecisionOpts struct {
	Algorithm string
	AllowVeto bool
	Options   int
	ExpiresAt *time.Time
	Status    string

	// Defaults to 30 minutes from now
	JoinCodeExpiresAt *time.Time
}

// CreateTestDecision inserts a decision with an organizer, options and a join code
func CreateTestDecision(t *testing.T, st *store.Store, cfg cliparse.Config, opts DecisionOpts) TestDecision {
	t.Helper()
	ctx := context.Background()

	if opts.Algorithm == "" {
		opts.Algorithm = models.AlgorithmCollective
	}
	if opts.Status == "" {
		opts.Status = models.StatusOpen
	}

	now := time.Now().UTC()
	td := TestDecision{ID: auth.NewID()}
	td.OrganizerKey, _ = auth.GenerateOrganizerKey()

	var closedAt *time.Time
	if opts.Status == models.StatusClosed {
		closedAt = &now
	}

	err := st.CreateDecision(ctx, models.Decision{
		ID:               td.ID,
		DecisionType:     models.DecisionTypeRestaurants,
		Status:           opts.Status,
		Algorithm:        opts.Algorithm,
		AllowVeto:        opts.AllowVeto,
		OpenedAt:         now,
		ExpiresAt:        opts.ExpiresAt,
		ClosedAt:         closedAt,
		OrganizerKeyHash: auth.HashOrganizerKey(td.OrganizerKey, cfg.OrganizerKeySalt),
	})
	if err != nil {
		t.Fatalf("Failed to create test decision: %v", err)
	}

	td.OrganizerID, td.OrganizerToken = addParticipant(t, st, td.ID, models.RoleOrganizer)

	for i := 0; i < opts.Options; i++ {
		td.OptionIDs = append(td.OptionIDs, AddTestOption(t, st, td.ID, i, fmt.Sprintf("Place %d", i+1)))
	}

	codeExpiry := now.Add(30 * time.Minute)
	if opts.JoinCodeExpiresAt != nil {
		codeExpiry = *opts.JoinCodeExpiresAt
	}
	td.JoinCode, _ = auth.GenerateJoinCode()
	err = st.CreateJoinCode(ctx, models.JoinCode{
		DecisionID: td.ID,
		Code:       td.JoinCode,
		ExpiresAt:  codeExpiry,
	})
	if err != nil {
		t.Fatalf("Failed to create test join code: %v", err)
	}

	return td
}

// AddTestOption adds an option with a {"name": ...} snapshot and returns its ID
func AddTestOption(t *testing.T, st *store.Store, decisionID string, order int, name string) string {
	t.Helper()

	snapshot, _ := json.Marshal(map[string]string{"name": name})
	optionID := auth.NewID()
	err := st.InsertOption(context.Background(), models.Option{
		ID:           optionID,
		DecisionID:   decisionID,
		DisplayOrder: order,
		Snapshot:     snapshot,
	})
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// AddTestMember joins a member to a decision and returns its ID and token
func AddTestMember(t *testing.T, st *store.Store, decisionID string) (participantID, token string) {
	t.Helper()
	return addParticipant(t, st, decisionID, models.RoleMember)
}

func addParticipant(t *testing.T, st *store.Store, decisionID, role string) (string, string) {
	t.Helper()

	id := auth.NewID()
	token, _ := auth.GenerateParticipantToken()
	err := st.CreateParticipant(context.Background(), models.Participant{
		ID:         id,
		DecisionID: decisionID,
		Token:      token,
		Role:       role,
		JoinedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return id, token
}

// CastTestVote stores a vote directly, bypassing lifecycle checks
func CastTestVote(t *testing.T, st *store.Store, participantID, optionID string, value int) {
	t.Helper()

	err := st.UpsertVote(context.Background(), models.Vote{
		ParticipantID:  participantID,
		DecisionItemID: optionID,
		Value:          value,
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// CreateTestStaffUser creates a staff account and returns its ID
func CreateTestStaffUser(t *testing.T, st *store.Store, email, password string) string {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	id := auth.NewID()
	err = st.UpsertStaffUser(context.Background(), models.StaffUser{ID: id, Email: email, PasswordHash: hash}, time.Now())
	if err != nil {
		t.Fatalf("Failed to create staff user: %v", err)
	}

	return id
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
