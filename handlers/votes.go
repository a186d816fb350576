// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielhkuo/unanimy/middleware"
	"github.com/danielhkuo/unanimy/models"
)

// voteLabels are the names the voting UI sends instead of numbers
var voteLabels = map[string]int{
	"Preferred": 2,
	"Agree":     1,
	"Neutral":   0,
	"PreferNot": -1,
	"NoWay":     -2,
}

var errInvalidVote = errors.New("vote must be an integer in -2..2 or one of Preferred, Agree, Neutral, PreferNot, NoWay")

// parseVote accepts a JSON integer or a vote label
func parseVote(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errInvalidVote
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < -2 || n > 2 {
			return 0, errInvalidVote
		}
		return n, nil
	}

	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		if v, ok := voteLabels[label]; ok {
			return v, nil
		}
	}
	return 0, errInvalidVote
}

// CastVote handles POST /decisions/{id}/votes
func (h *DecisionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := decisionID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.AuthenticateParticipant(r.Context(), id, r.Header.Get(middleware.HeaderParticipantToken))
	if err != nil {
		writeServiceError(w, err, "authenticate participant")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.DecisionItemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "decisionItemId is required")
		return
	}
	value, err := parseVote(req.Vote)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.CastVote(r.Context(), id, p, req.DecisionItemID, value); err != nil {
		writeServiceError(w, err, "cast vote")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// Complete handles POST /decisions/{id}/complete
func (h *DecisionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := decisionID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.AuthenticateParticipant(r.Context(), id, r.Header.Get(middleware.HeaderParticipantToken))
	if err != nil {
		writeServiceError(w, err, "authenticate participant")
		return
	}

	resp, err := h.svc.Complete(r.Context(), id, p)
	if err != nil {
		writeServiceError(w, err, "complete participant")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
