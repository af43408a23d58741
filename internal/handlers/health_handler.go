package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
)

type HealthHandler struct {
	ping    func(ctx context.Context) error
	modules int
}

func NewHealthHandler(ping func(ctx context.Context) error, modules int) *HealthHandler {
	return &HealthHandler{ping: ping, modules: modules}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
		Modules:   h.modules,
	}
	if err := h.ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.DB = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
