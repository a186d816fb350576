// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the unanimy API.

# Handler Types

Each handler is a struct over the decision service:

  - DecisionHandler: create, view, vote, complete, close, result
  - JoinHandler: join by code
  - StaffHandler: staff sessions, decision listing, staff close, runtime config

	decisionHandler := handlers.NewDecisionHandler(svc)
	staffHandler := handlers.NewStaffHandler(svc, cfg)

# Credentials

Participant routes read X-Participant-Token; organizer routes read
X-Organizer-Key. Credentials are checked before anything else touches the
decision. Staff handlers run behind middleware.RequireStaff and receive the
verified claims.

# Votes

A vote is a number in -2..2 or a label:

	Preferred  2
	Agree      1
	Neutral    0
	PreferNot -1
	NoWay     -2

# Errors

Service failures map to statuses by category: validation 400, missing
credentials 401, wrong credentials 403, not found 404, closed 409, expired
join code 410. Anything else is logged and returned as 500.
*/
package handlers
