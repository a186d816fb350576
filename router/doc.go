// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the unanimy API.

NewRouter returns the ServeMux wrapped in CORS:

	handler := router.NewRouter(svc, cfg)

# Endpoints

Decisions (X-Organizer-Key or X-Participant-Token):

	POST /decisions                - Create decision
	GET  /decisions/{id}           - Organizer or participant view
	POST /decisions/{id}/votes     - Cast vote
	POST /decisions/{id}/complete  - Mark caller complete
	POST /decisions/{id}/close     - Organizer close
	GET  /decisions/{id}/result    - Stored result
	POST /join                     - Join by code

Staff (staff_session cookie, except the session routes):

	POST   /staff/session
	DELETE /staff/session
	GET    /staff/decisions
	POST   /staff/decisions/{id}/close
	GET    /staff/config
	PUT    /staff/config

Health:

	GET /health
*/
package router
