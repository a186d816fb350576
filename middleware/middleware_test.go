// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/unanimy/auth"
	"github.com/danielhkuo/unanimy/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"decisionId":"123"}`},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"Gone", http.StatusGone, "gone"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/decisions", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if !called {
				t.Fatal("Expected handler to be called")
			}
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.Write([]byte("body"))
	if rec.status != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.status)
	}

	rec.WriteHeader(http.StatusConflict)
	if rec.status != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rec.status)
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "close response",
			statusCode: http.StatusOK,
			data:       models.CloseResponse{OK: true, AlreadyClosed: true},
			expected:   `{"ok":true,"alreadyClosed":true}`,
		},
		{
			name:       "join response",
			statusCode: http.StatusCreated,
			data:       models.JoinResponse{DecisionID: "d1", ParticipantToken: "tok"},
			expected:   `{"decisionId":"d1","participantToken":"tok"}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", ct)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tc.expected {
				t.Errorf("Expected body %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode    int
		expectedError string
	}{
		{http.StatusBadRequest, "Bad Request"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusForbidden, "Forbidden"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusConflict, "Conflict"},
		{http.StatusGone, "Gone"},
	}

	for _, tc := range testCases {
		t.Run(tc.expectedError, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(w, tc.statusCode, "details")

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != "details" {
				t.Errorf("Expected message 'details', got '%s'", resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/join", strings.NewReader(`{"code":"ab3cd"}`))
		var body models.JoinRequest
		if err := ParseJSONBody(req, &body); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if body.Code != "ab3cd" {
			t.Errorf("Expected code 'ab3cd', got '%s'", body.Code)
		}
	})

	t.Run("raw vote kept as JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/decisions/x/votes", strings.NewReader(`{"decisionItemId":"o1","vote":"NoWay"}`))
		var body models.CastVoteRequest
		if err := ParseJSONBody(req, &body); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if string(body.Vote) != `"NoWay"` {
			t.Errorf("Expected raw vote, got %s", body.Vote)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/join", strings.NewReader(`{"code":`))
		var body models.JoinRequest
		if err := ParseJSONBody(req, &body); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		huge := `{"code":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		req := httptest.NewRequest("POST", "/join", bytes.NewBufferString(huge))
		var body models.JoinRequest
		if err := ParseJSONBody(req, &body); err == nil {
			t.Error("Expected error for body over the limit")
		}
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("json", &buf).Info("decision closed", "decision_id", "d1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q", buf.String())
	}
	if entry["decision_id"] != "d1" {
		t.Errorf("Expected decision_id attr, got %v", entry)
	}

	buf.Reset()
	NewLogger("text", &buf).Info("decision closed", "decision_id", "d1")
	if !strings.Contains(buf.String(), "decision_id=d1") {
		t.Errorf("Expected text log line, got %q", buf.String())
	}
}

func TestCORS(t *testing.T) {
	const origin = "http://localhost:5173"
	called := false
	handler := CORS([]string{origin})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/decisions/x", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if !called {
			t.Error("Expected handler to be called")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != origin {
			t.Errorf("Expected allow origin %s, got %q", origin, got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Expected credentials allowed, got %q", got)
		}
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/decisions/x", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected no allow origin, got %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("OPTIONS", "/decisions/x/votes", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", HeaderParticipantToken)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if called {
			t.Error("Preflight should not reach the handler")
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != origin {
			t.Errorf("Expected allow origin %s, got %q", origin, got)
		}
	})
}

func TestRequireStaff(t *testing.T) {
	const secret = "test-staff-secret"

	var gotEmail string
	handler := RequireStaff(secret, func(w http.ResponseWriter, r *http.Request, claims *auth.StaffClaims) {
		gotEmail = claims.Email
		w.WriteHeader(http.StatusOK)
	})

	valid, err := auth.IssueStaffToken("u1", "ops@example.com", secret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	expired, _ := auth.IssueStaffToken("u1", "ops@example.com", secret, time.Hour, time.Now().Add(-2*time.Hour))
	forged, _ := auth.IssueStaffToken("u1", "ops@example.com", "other-secret", time.Hour, time.Now())

	testCases := []struct {
		name   string
		cookie string
		status int
	}{
		{"valid session", valid, http.StatusOK},
		{"no cookie", "", http.StatusUnauthorized},
		{"expired session", expired, http.StatusUnauthorized},
		{"wrong secret", forged, http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotEmail = ""
			req := httptest.NewRequest("GET", "/staff/decisions", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.StaffSessionCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
			if tc.status == http.StatusOK && gotEmail != "ops@example.com" {
				t.Errorf("Expected claims to reach handler, got email %q", gotEmail)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"X-Forwarded-For single IP", map[string]string{"X-Forwarded-For": "192.168.1.100"}, "10.0.0.1:1234", "192.168.1.100"},
		{"X-Forwarded-For chain", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "10.0.0.1:1234", "203.0.113.195"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:1234", "203.0.113.50"},
		{"X-Forwarded-For wins over X-Real-IP", map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"}, "10.0.0.1:1234", "192.168.1.100"},
		{"RemoteAddr with port", nil, "192.168.1.1:54321", "192.168.1.1"},
		{"RemoteAddr without port", nil, "192.168.1.1", "192.168.1.1"},
		{"IPv6 RemoteAddr", nil, "[::1]:8080", "::1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
