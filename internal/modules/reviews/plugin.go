package reviews

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/catalog"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

type Module struct {
	svc *ReviewService
}

func New() *Module {
	return &Module{}
}

func (m *Module) ID() string { return "reviews" }

func (m *Module) Models() []interface{} {
	return []interface{}{&Review{}}
}

func (m *Module) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	m.svc = NewReviewService(
		NewGormStore(deps.DB),
		catalog.NewGormStore(deps.DB),
		services.NewContentFilter(),
		deps.Activity,
		deps.Events,
	)
	Mount(router, NewReviewHandler(m.svc), deps.Guards)
}

// Shutdown waits for pending review events.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.svc == nil {
		return nil
	}
	return m.svc.Wait(ctx)
}

func Mount(router fiber.Router, h *ReviewHandler, g modules.Guards) {
	router.Get("/products/:id/reviews", h.List)
	router.Post("/products/:id/reviews", g.Protected, h.Create)
}
