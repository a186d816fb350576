// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/unanimy/auth"
	"github.com/danielhkuo/unanimy/cliparse"
	"github.com/danielhkuo/unanimy/decision"
	"github.com/danielhkuo/unanimy/middleware"
	"github.com/danielhkuo/unanimy/models"
)

type StaffHandler struct {
	svc *decision.Service
	cfg cliparse.Config
}

func NewStaffHandler(svc *decision.Service, cfg cliparse.Config) *StaffHandler {
	return &StaffHandler{svc: svc, cfg: cfg}
}

// Login handles POST /staff/session
func (h *StaffHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.StaffLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.svc.AuthenticateStaff(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("staff login rejected", "email", req.Email, "remote", middleware.GetClientIP(r))
		writeServiceError(w, err, "staff login")
		return
	}

	token, err := auth.IssueStaffToken(user.ID, user.Email, h.cfg.StaffJWTSecret, h.cfg.StaffSessionTTL, time.Now())
	if err != nil {
		slog.Error("failed to issue staff token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.StaffSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.StaffSessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("staff session started", "staff_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// Logout handles DELETE /staff/session
func (h *StaffHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.StaffSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// ListDecisions handles GET /staff/decisions
// Query: status (open|closed|all, default open), q, sort, order, limit
func (h *StaffHandler) ListDecisions(w http.ResponseWriter, r *http.Request, _ *auth.StaffClaims) {
	query := r.URL.Query()

	q := decision.ListQuery{
		Status: models.StatusOpen,
		Query:  query.Get("q"),
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
	}
	if query.Has("status") {
		q.Status = query.Get("status")
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		q.Limit = limit
	}

	rows, err := h.svc.ListDecisions(r.Context(), q)
	if err != nil {
		writeServiceError(w, err, "list decisions")
		return
	}

	resp := models.StaffDecisionsResponse{Rows: make([]models.StaffDecisionRow, 0, len(rows))}
	for _, row := range rows {
		out := models.StaffDecisionRow{Decision: row.Decision, JoinCode: row.JoinCode}
		if row.Decision.Status == models.StatusOpen && row.Decision.ExpiresAt != nil {
			out.ExpiresIn = humanize.Time(*row.Decision.ExpiresAt)
		}
		resp.Rows = append(resp.Rows, out)
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CloseDecision handles POST /staff/decisions/{id}/close
func (h *StaffHandler) CloseDecision(w http.ResponseWriter, r *http.Request, claims *auth.StaffClaims) {
	id, ok := decisionID(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.Close(r.Context(), id, "staff "+claims.Email)
	if err != nil {
		writeServiceError(w, err, "staff close decision")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetConfig handles GET /staff/config
func (h *StaffHandler) GetConfig(w http.ResponseWriter, r *http.Request, _ *auth.StaffClaims) {
	rows, err := h.svc.ListConfig(r.Context())
	if err != nil {
		writeServiceError(w, err, "list config")
		return
	}
	if rows == nil {
		rows = []models.ConfigRow{}
	}
	middleware.JSONResponse(w, http.StatusOK, models.ConfigRowsResponse{Rows: rows})
}

// PutConfig handles PUT /staff/config
func (h *StaffHandler) PutConfig(w http.ResponseWriter, r *http.Request, claims *auth.StaffClaims) {
	var req models.PutConfigRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	row, err := h.svc.PutConfig(r.Context(), req.Key, req.ValueJSON, claims.Subject)
	if err != nil {
		writeServiceError(w, err, "put config")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ConfigRowResponse{Row: *row})
}
