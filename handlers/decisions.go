// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/unanimy/decision"
	"github.com/danielhkuo/unanimy/middleware"
	"github.com/danielhkuo/unanimy/models"
)

type DecisionHandler struct {
	svc *decision.Service
}

func NewDecisionHandler(svc *decision.Service) *DecisionHandler {
	return &DecisionHandler{svc: svc}
}

// Create handles POST /decisions
func (h *DecisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "create decision")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Get handles GET /decisions/{id}
// An X-Organizer-Key header selects the organizer view; otherwise the caller
// must present a participant token.
func (h *DecisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := decisionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if key := r.Header.Get(middleware.HeaderOrganizerKey); key != "" {
		if err := h.svc.AuthorizeOrganizer(ctx, id, key); err != nil {
			writeServiceError(w, err, "authorize organizer")
			return
		}
		view, err := h.svc.OrganizerView(ctx, id)
		if err != nil {
			writeServiceError(w, err, "organizer view")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, view)
		return
	}

	p, err := h.svc.AuthenticateParticipant(ctx, id, r.Header.Get(middleware.HeaderParticipantToken))
	if err != nil {
		writeServiceError(w, err, "authenticate participant")
		return
	}
	view, err := h.svc.ParticipantView(ctx, id, p)
	if err != nil {
		writeServiceError(w, err, "participant view")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Close handles POST /decisions/{id}/close
func (h *DecisionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := decisionID(w, r)
	if !ok {
		return
	}

	if err := h.svc.AuthorizeOrganizer(r.Context(), id, r.Header.Get(middleware.HeaderOrganizerKey)); err != nil {
		writeServiceError(w, err, "authorize organizer")
		return
	}

	resp, err := h.svc.Close(r.Context(), id, models.RoleOrganizer)
	if err != nil {
		writeServiceError(w, err, "close decision")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Result handles GET /decisions/{id}/result
func (h *DecisionHandler) Result(w http.ResponseWriter, r *http.Request) {
	id, ok := decisionID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.AuthenticateParticipant(r.Context(), id, r.Header.Get(middleware.HeaderParticipantToken)); err != nil {
		writeServiceError(w, err, "authenticate participant")
		return
	}

	resp, err := h.svc.GetResult(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get result")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

type JoinHandler struct {
	svc *decision.Service
}

func NewJoinHandler(svc *decision.Service) *JoinHandler {
	return &JoinHandler{svc: svc}
}

// Join handles POST /join
func (h *JoinHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.svc.Join(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, err, "join decision")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
