// Package modules defines the contract storefront features implement to be
// mounted by the server.
package modules

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/metrics"
)

// Guards are the auth middlewares modules attach per route.
type Guards struct {
	// Protected requires a valid bearer token.
	Protected fiber.Handler
	// Optional resolves the user when a token is present.
	Optional fiber.Handler
	// Admin must follow Protected.
	Admin fiber.Handler
}

// Deps is what the server hands every module.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Activity activity.Recorder
	Mailer   mailer.Sender
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Guards   Guards
}

// Module defines the interface every storefront feature must implement.
type Module interface {
	// ID returns the unique module identifier, used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts module routes on the /api group. Guards are
	// applied per route by the module.
	RegisterRoutes(router fiber.Router, deps *Deps)
}

// Shutdowner is implemented by modules that run background work and need to
// drain it before the process exits.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownAll drains every module that supports it and returns the first error.
func ShutdownAll(ctx context.Context, mods []Module) error {
	var first error
	for _, m := range mods {
		s, ok := m.(Shutdowner)
		if !ok {
			continue
		}
		if err := s.Shutdown(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
