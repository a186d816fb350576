// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/unanimy/cliparse"
	"github.com/danielhkuo/unanimy/decision"
	"github.com/danielhkuo/unanimy/handlers"
	"github.com/danielhkuo/unanimy/middleware"
)

func NewRouter(svc *decision.Service, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	decisionHandler := handlers.NewDecisionHandler(svc)
	joinHandler := handlers.NewJoinHandler(svc)
	staffHandler := handlers.NewStaffHandler(svc, cfg)

	staff := func(next middleware.StaffHandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireStaff(cfg.StaffJWTSecret, next))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Decisions (organizer key or participant token)
	mux.HandleFunc("POST /decisions", middleware.WithLogging(decisionHandler.Create))
	mux.HandleFunc("GET /decisions/{id}", middleware.WithLogging(decisionHandler.Get))
	mux.HandleFunc("POST /decisions/{id}/votes", middleware.WithLogging(decisionHandler.CastVote))
	mux.HandleFunc("POST /decisions/{id}/complete", middleware.WithLogging(decisionHandler.Complete))
	mux.HandleFunc("POST /decisions/{id}/close", middleware.WithLogging(decisionHandler.Close))
	mux.HandleFunc("GET /decisions/{id}/result", middleware.WithLogging(decisionHandler.Result))

	mux.HandleFunc("POST /join", middleware.WithLogging(joinHandler.Join))

	// Staff tooling (staff_session cookie)
	mux.HandleFunc("POST /staff/session", middleware.WithLogging(staffHandler.Login))
	mux.HandleFunc("DELETE /staff/session", middleware.WithLogging(staffHandler.Logout))
	mux.HandleFunc("GET /staff/decisions", staff(staffHandler.ListDecisions))
	mux.HandleFunc("POST /staff/decisions/{id}/close", staff(staffHandler.CloseDecision))
	mux.HandleFunc("GET /staff/config", staff(staffHandler.GetConfig))
	mux.HandleFunc("PUT /staff/config", staff(staffHandler.PutConfig))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("unanimy API v1"))
	})

	return middleware.CORS(cfg.CORSOrigins)(mux)
}
