package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/hexagonhq/hexagon/internal/auth"
	"github.com/hexagonhq/hexagon/internal/clerk"
	"github.com/hexagonhq/hexagon/internal/config"
	"github.com/hexagonhq/hexagon/internal/db"
	"github.com/hexagonhq/hexagon/internal/repository"
	"github.com/hexagonhq/hexagon/internal/scheduler"
	"github.com/hexagonhq/hexagon/internal/service"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	Verifier     *auth.Verifier
	UserService  *service.UserService
	HabitService *service.HabitService
	ResetService *service.ResetService
	Scheduler    *scheduler.Scheduler
}

func New(cfg *config.Config) (*App, error) {
	err := cfg.ValidateServer()
	if err != nil {
		return nil, err
	}

	// Initialize database
	database, err := db.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	habitRepository := repository.NewHabitRepository(database)

	// External collaborators
	verifier := auth.NewVerifier(cfg.JWKSURL, cfg.JWTIssuer, cfg.JWKSCacheTTL)
	profileProvider := clerk.NewClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey)

	// Services
	userService := service.NewUserService(userRepository, profileProvider)
	habitService := service.NewHabitService(habitRepository)
	resetService := service.NewResetService(habitRepository)

	return &App{
		Cfg:          cfg,
		DB:           database,
		Verifier:     verifier,
		UserService:  userService,
		HabitService: habitService,
		ResetService: resetService,
		Scheduler:    scheduler.New(resetService, cfg.ResetHourUTC),
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
