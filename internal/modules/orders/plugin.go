package orders

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/catalog"
)

type Module struct {
	svc *OrderService
}

func New() *Module {
	return &Module{}
}

func (m *Module) ID() string { return "orders" }

func (m *Module) Models() []interface{} {
	return []interface{}{&Order{}, &OrderItem{}}
}

func (m *Module) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	m.svc = NewOrderService(
		NewGormStore(deps.DB),
		catalog.NewGormStore(deps.DB),
		deps.Activity,
		deps.Mailer,
		deps.Events,
		deps.Metrics,
	)
	Mount(router, NewOrderHandler(m.svc), deps.Guards)
}

// Shutdown waits for pending confirmation emails and events.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.svc == nil {
		return nil
	}
	return m.svc.Wait(ctx)
}

// Mount wires the order routes. Static paths are registered before any
// parameterized sibling.
func Mount(router fiber.Router, h *OrderHandler, g modules.Guards) {
	router.Post("/orders", g.Protected, h.Place)
	router.Get("/orders/myorders", g.Protected, h.MyOrders)
	router.Get("/orders/admin/stats", g.Protected, g.Admin, h.Stats)
}
