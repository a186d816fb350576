// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidOrganizerKey = errors.New("invalid organizer key")
	ErrInvalidID           = errors.New("invalid id")
)

// JoinCodeAlphabet omits characters that are easy to misread (0/O, 1/I)
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the number of characters in a join code
const JoinCodeLength = 5

// NewID returns a random UUID for database records
func NewID() string {
	return uuid.NewString()
}

// ParseID validates a UUID path parameter and returns its canonical form
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id.String(), nil
}

// GenerateToken creates a random URL-safe secret of byteLen bytes.
// Used for participant tokens and organizer keys.
func GenerateToken(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateParticipantToken creates a 192-bit participant credential
func GenerateParticipantToken() (string, error) {
	return GenerateToken(24)
}

// GenerateOrganizerKey creates a 256-bit organizer credential.
// Only its hash is stored.
func GenerateOrganizerKey() (string, error) {
	return GenerateToken(32)
}

// HashOrganizerKey returns the HMAC-SHA256 of the key, hex encoded
func HashOrganizerKey(key, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateOrganizerKey checks the provided key against the stored hash
func ValidateOrganizerKey(key, storedHash, salt string) error {
	if key == "" || storedHash == "" {
		return ErrInvalidOrganizerKey
	}
	expected := HashOrganizerKey(key, salt)
	if !hmac.Equal([]byte(expected), []byte(storedHash)) {
		return ErrInvalidOrganizerKey
	}
	return nil
}

// GenerateJoinCode creates a short code participants type in to join
func GenerateJoinCode() (string, error) {
	b := make([]byte, JoinCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}

	code := make([]byte, JoinCodeLength)
	for i, v := range b {
		// 256 is a multiple of 32, so the modulo keeps the distribution uniform
		code[i] = JoinCodeAlphabet[int(v)%len(JoinCodeAlphabet)]
	}
	return string(code), nil
}

// NormalizeJoinCode trims and upper-cases user input
func NormalizeJoinCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidJoinCodeFormat reports whether code is 5 ASCII letters or digits
func ValidJoinCodeFormat(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
