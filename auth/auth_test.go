// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestNewIDAndParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id)
	if err != nil {
		t.Fatalf("ParseID(%q) error = %v", id, err)
	}
	if parsed != id {
		t.Errorf("ParseID() = %q, want %q", parsed, id)
	}

	// Canonical form is lower case
	upper := strings.ToUpper(id)
	parsed, err = ParseID(" " + upper + " ")
	if err != nil {
		t.Fatalf("ParseID(%q) error = %v", upper, err)
	}
	if parsed != id {
		t.Errorf("ParseID() = %q, want %q", parsed, id)
	}

	if NewID() == NewID() {
		t.Error("NewID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestParseIDRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "not-a-uuid-at-all-really", "12345678-1234-1234-1234-12345678901z"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseID(raw)
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("ParseID(%q) error = %v, want %v", raw, err, ErrInvalidID)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		gen     func() (string, error)
		minLen  int
		samples int
	}{
		{"participant token", GenerateParticipantToken, 30, 100},
		{"organizer key", GenerateOrganizerKey, 40, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[string]bool)
			for i := 0; i < tt.samples; i++ {
				token, err := tt.gen()
				if err != nil {
					t.Fatalf("error on iteration %d: %v", i, err)
				}
				// Should be URL-safe (no padding)
				if strings.ContainsAny(token, "=+/") {
					t.Errorf("token %q is not URL-safe", token)
				}
				if len(token) < tt.minLen {
					t.Errorf("token too short: %d chars", len(token))
				}
				if seen[token] {
					t.Errorf("duplicate token: %s", token)
				}
				seen[token] = true
			}
		})
	}
}

func TestValidateOrganizerKey(t *testing.T) {
	salt := "test-salt"
	key, err := GenerateOrganizerKey()
	if err != nil {
		t.Fatal(err)
	}
	hash := HashOrganizerKey(key, salt)

	tests := []struct {
		name    string
		key     string
		hash    string
		salt    string
		wantErr bool
	}{
		{"valid key", key, hash, salt, false},
		{"wrong key", "wrong-key", hash, salt, true},
		{"wrong salt", key, hash, "different-salt", true},
		{"empty key", "", hash, salt, true},
		{"no stored hash", key, "", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrganizerKey(tt.key, tt.hash, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrganizerKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidOrganizerKey {
				t.Errorf("ValidateOrganizerKey() error = %v, want %v", err, ErrInvalidOrganizerKey)
			}
		})
	}

	// The stored hash must not reveal the key
	if strings.Contains(hash, key) {
		t.Error("HashOrganizerKey() leaks the key")
	}
}

func TestGenerateJoinCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateJoinCode()
		if err != nil {
			t.Fatalf("GenerateJoinCode() error = %v", err)
		}
		if len(code) != JoinCodeLength {
			t.Fatalf("GenerateJoinCode() length = %d, want %d", len(code), JoinCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(JoinCodeAlphabet, c) {
				t.Errorf("GenerateJoinCode() contains char outside alphabet: %c", c)
			}
		}
		if !ValidJoinCodeFormat(code) {
			t.Errorf("generated code %q fails format check", code)
		}
	}
}

func TestJoinCodeFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"ABC23", true},
		{" abc23 ", true},
		{"AB12", false},
		{"ABC234", false},
		{"AB-12", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ValidJoinCodeFormat(NormalizeJoinCode(tt.raw)); got != tt.want {
				t.Errorf("ValidJoinCodeFormat(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// Benchmark tests
func BenchmarkHashOrganizerKey(b *testing.B) {
	key := "organizer-key"
	salt := "test-salt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		HashOrganizerKey(key, salt)
	}
}

func BenchmarkGenerateParticipantToken(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateParticipantToken()
	}
}
