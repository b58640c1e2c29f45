// Command reconcile rebuilds every question rating, answer rating, and user
// profile from the vote ledger. Run it after bulk imports or to repair
// drift.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/logging"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.New(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	agg := voting.NewAggregator(db.GetDB())

	slog.Info("reconciling ratings and profiles")
	if err := agg.ReconcileAll(context.Background()); err != nil {
		slog.Error("reconciliation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("reconciliation complete")
}
