// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/unanimy/appconfig"
	"github.com/danielhkuo/unanimy/cliparse"
	"github.com/danielhkuo/unanimy/db"
	"github.com/danielhkuo/unanimy/decision"
	"github.com/danielhkuo/unanimy/middleware"
	"github.com/danielhkuo/unanimy/router"
	"github.com/danielhkuo/unanimy/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	// Connect to the database
	dbConn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "driver", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	if cfg.DatabaseType == "sqlite" {
		// SQLite allows a single writer
		dbConn.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready", "driver", cfg.DatabaseType)

	st := store.New(dbConn)
	svc := decision.NewService(st, appconfig.New(st), cfg.OrganizerKeySalt, decision.WithLogger(logger))

	if cfg.StaffEmail != "" && cfg.StaffPassword != "" {
		if err := svc.EnsureStaffUser(context.Background(), cfg.StaffEmail, cfg.StaffPassword); err != nil {
			slog.Error("staff bootstrap failed", "error", err)
			os.Exit(1)
		}
		slog.Info("staff user ready", "email", cfg.StaffEmail)
	}

	server := http.Server{
		Handler: router.NewRouter(svc, cfg),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Shutdown(context.Background())
	}()

	slog.Info("listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("server closed", "error", err)
	} else {
		slog.Info("server closed")
	}
}
