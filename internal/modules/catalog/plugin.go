package catalog

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules"
)

type Module struct {
	seed bool
}

// New returns the catalog module. With seed set, an empty catalog is filled
// with demo products on startup.
func New(seed bool) *Module {
	return &Module{seed: seed}
}

func (m *Module) ID() string { return "catalog" }

func (m *Module) Models() []interface{} {
	return []interface{}{&Product{}}
}

func (m *Module) RegisterRoutes(router fiber.Router, deps *modules.Deps) {
	store := NewGormStore(deps.DB)
	svc := NewCatalogService(store, deps.Activity)
	h := NewProductHandler(svc)

	if m.seed {
		if err := SeedProducts(context.Background(), svc, store); err != nil {
			slog.Error("failed to seed catalog", "module", m.ID(), "error", err)
		}
	}

	Mount(router, h, deps.Guards)
}

// Mount wires the product routes. Writes are admin only.
func Mount(router fiber.Router, h *ProductHandler, g modules.Guards) {
	router.Get("/products", h.List)
	router.Get("/products/:id", g.Optional, h.Get)
	router.Post("/products", g.Protected, g.Admin, h.Create)
	router.Put("/products/:id", g.Protected, g.Admin, h.Update)
	router.Delete("/products/:id", g.Protected, g.Admin, h.Delete)
}
