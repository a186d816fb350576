// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and identifier utilities.

# Identifiers

Decisions, options and participants use random UUIDs:

	id := auth.NewID()
	id, err := auth.ParseID(r.PathValue("id"))

# Organizer Keys

The organizer key is a random 32-byte secret returned once at creation.
Only its HMAC-SHA256 (keyed by the configured salt) is stored:

	key, err := auth.GenerateOrganizerKey()
	hash := auth.HashOrganizerKey(key, salt)
	err = auth.ValidateOrganizerKey(key, hash, salt)

# Participant Tokens

Random 24-byte (192-bit) secrets, URL-safe base64 without padding:

	token, err := auth.GenerateParticipantToken()

# Join Codes

Five characters from an alphabet without look-alike characters:

	code, err := auth.GenerateJoinCode()

# Staff Sessions

Staff operators log in with email and password (bcrypt). The session is an
HS256 JWT with the "staff" audience, stored in the staff_session cookie:

	token, err := auth.IssueStaffToken(userID, email, secret, ttl, time.Now())
	claims, err := auth.ParseStaffToken(token, secret, time.Now())
*/
package auth
