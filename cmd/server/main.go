package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hexagonhq/hexagon/internal/app"
	"github.com/hexagonhq/hexagon/internal/config"
	"github.com/hexagonhq/hexagon/internal/logger"
	"github.com/hexagonhq/hexagon/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	// Daily reset sweep runs for the lifetime of the server
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Scheduler.Run(ctx)

	handler := routes.SetupRoutes(app)
	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)

	err = http.ListenAndServe(":"+cfg.Port, handler)
	if err != nil {
		slog.Error("server failed", "error", err)
		panic(err)
	}
}
