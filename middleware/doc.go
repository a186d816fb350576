// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /decisions/{id}", middleware.WithLogging(handler))

Logs method, path, status, client IP and duration_ms once the handler returns.
NewLogger builds the process logger for LOG_FORMAT (text or json).

# CORS

	handler := middleware.CORS(cfg.CORSOrigins)(mux)

Backed by github.com/rs/cors. Credentials are allowed and the credential
headers X-Participant-Token and X-Organizer-Key may be sent cross-origin.

# Staff Sessions

RequireStaff checks the staff_session cookie and passes the verified claims
on:

	mux.HandleFunc("GET /staff/decisions",
		middleware.WithLogging(middleware.RequireStaff(secret, h.ListDecisions)))

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

ParseJSONBody reads at most MaxBodyBytes.
*/
package middleware
