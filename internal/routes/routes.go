package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules"
)

// Handlers are the core (non-module) endpoints.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.UserHandler
	Logs   *handlers.LogHandler
	Health *handlers.HealthHandler
}

func Setup(
	app *fiber.App,
	h Handlers,
	deps *modules.Deps,
	mods []modules.Module,
	gatherer prometheus.Gatherer,
) {
	app.Use(deps.Metrics.Middleware())
	app.Get("/metrics", metrics.Handler(gatherer))

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(middleware.RateLimit(120, time.Minute))

	api.Get("/health", h.Health.Check)

	// Auth: 10 req/min per IP on top of the general limit
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(10, time.Minute))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/verify", h.Auth.Verify)
	auth.Post("/login", h.Auth.Login)

	g := deps.Guards
	api.Get("/users/profile", g.Protected, h.Users.GetProfile)
	api.Put("/users/profile", g.Protected, h.Users.UpdateProfile)

	api.Get("/logs", g.Protected, g.Admin, h.Logs.List)

	for _, m := range mods {
		m.RegisterRoutes(api, deps)
	}
}
