package orders

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

type OrderHandler struct {
	orders *OrderService
}

func NewOrderHandler(orders *OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(dto.CodeMissingToken, "Not authorized"))
	}

	var in PlaceOrderInput
	if err := c.BodyParser(&in); err != nil {
		return handlers.InvalidBody(c)
	}

	order, err := h.orders.Place(c.UserContext(), user, in)
	if errors.Is(err, services.ErrValidation) {
		return handlers.ValidationFailed(c, err)
	}
	if err != nil {
		return handlers.ServerError(c, "failed to place order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(dto.CodeMissingToken, "Not authorized"))
	}
	orders, err := h.orders.ListMine(c.UserContext(), uid)
	if err != nil {
		return handlers.ServerError(c, "failed to list orders", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.orders.Stats(c.UserContext())
	if err != nil {
		return handlers.ServerError(c, "failed to compute order stats", err)
	}
	return c.JSON(stats)
}
