// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/unanimy/auth"
	"github.com/danielhkuo/unanimy/decision"
	"github.com/danielhkuo/unanimy/middleware"
)

// writeServiceError maps a decision service failure onto an HTTP status.
// Internal failures are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch decision.CategoryOf(err) {
	case decision.CategoryValidation:
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case decision.CategoryAuth:
		if errors.Is(err, decision.ErrUnauthenticated) {
			middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case decision.CategoryNotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case decision.CategoryConflict:
		if errors.Is(err, decision.ErrJoinCodeExpired) {
			middleware.ErrorResponse(w, http.StatusGone, err.Error())
			return
		}
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Unexpected server error")
	}
}

// decisionID reads and validates the {id} path value
func decisionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := auth.ParseID(r.PathValue("id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid decision id")
		return "", false
	}
	return id, true
}
