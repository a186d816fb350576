// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateDecisionRequest: algorithm, allowVeto, maxOptions, options
  - JoinRequest: code
  - CastVoteRequest: decisionItemId, vote (number or label)
  - StaffLoginRequest: email, password
  - PutConfigRequest: key, value_json

# Response Types

  - CreateDecisionResponse: decisionId, joinCode, participantToken, organizerKey
  - CloseResponse: ok, alreadyClosed
  - CompleteResponse: ok, autoClosed
  - ResultResponse: winner snapshot, counts, algorithm
  - OrganizerView / ParticipantView: decision read models
  - ErrorResponse: error, message

# Domain Types

  - Decision: lifecycle state (open → closed) and scoring settings
  - Option: decision item with an opaque snapshot payload
  - Participant: organizer or member, with completion timestamp
  - Vote: one value in [-2, 2] per (participant, option)
  - Result: winner and opaque summary, written once on close

Snapshots and summaries are json.RawMessage: the service stores and returns
them without interpreting the provider's schema.

# Constants

	StatusOpen   = "open"
	StatusClosed = "closed"

	AlgorithmCollective    = "collective"
	AlgorithmMostSatisfied = "most_satisfied"

	RoleOrganizer = "organizer"
	RoleMember    = "member"
*/
package models
