package routes

import (
	"net/http"

	"github.com/hexagonhq/hexagon/internal/app"
	"github.com/hexagonhq/hexagon/internal/handler"
	"github.com/hexagonhq/hexagon/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.Cfg.AppName)
	habit := handler.NewHabitHandler(app.HabitService)
	profile := handler.NewProfileHandler()
	admin := handler.NewAdminHandler(app.ResetService)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /{$}", health.Root)
	mux.HandleFunc("GET /health", health.Health)

	// Habits (bearer token required)
	mux.HandleFunc("POST /habits", middleware.RequireAuth(habit.Create))
	mux.HandleFunc("GET /habits", middleware.RequireAuth(habit.List))
	mux.HandleFunc("GET /habits/{id}", middleware.RequireAuth(habit.Get))
	mux.HandleFunc("PATCH /habits/{id}/status", middleware.RequireAuth(habit.UpdateStatus))
	mux.HandleFunc("PATCH /habits/{id}/toggle-active", middleware.RequireAuth(habit.ToggleActive))
	mux.HandleFunc("PUT /habits/{id}", middleware.RequireAuth(habit.Update))
	mux.HandleFunc("DELETE /habits/{id}", middleware.RequireAuth(habit.Delete))

	// Profile
	mux.HandleFunc("GET /profile", middleware.RequireAuth(profile.Get))

	// Maintenance (admin token, rate limited)
	requireAdmin := middleware.RequireAdmin(app.Cfg.AdminToken)
	mux.HandleFunc("POST /admin/habits/reset", requireAdmin(admin.ResetHabits))

	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.Verifier, app.UserService),
	)
}
