// Command reset runs the habit reset sweep once and exits. It is the manual
// and cron-friendly counterpart of the in-server daily scheduler.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hexagonhq/hexagon/internal/config"
	"github.com/hexagonhq/hexagon/internal/db"
	"github.com/hexagonhq/hexagon/internal/logger"
	"github.com/hexagonhq/hexagon/internal/repository"
	"github.com/hexagonhq/hexagon/internal/service"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	database, err := db.Init(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeErr := db.Close(database)
		if closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	resetService := service.NewResetService(repository.NewHabitRepository(database))

	count, err := resetService.ResetAll(context.Background())
	if err != nil {
		slog.Error("habit reset failed", "error", err)
		os.Exit(1)
	}

	slog.Info("habit reset finished", "reset", count)
}
