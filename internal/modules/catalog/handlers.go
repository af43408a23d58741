package catalog

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

type ProductHandler struct {
	catalog *CatalogService
}

func NewProductHandler(catalog *CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, err := h.catalog.List(c.UserContext(),
		c.Query("keyword"),
		c.QueryInt("pageNumber", 1),
		c.QueryInt("pageSize", DefaultPageSize),
	)
	if err != nil {
		return handlers.ServerError(c, "failed to list products", err)
	}
	return c.JSON(page)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.NotFound(c, "Product not found")
	}

	var viewer *uuid.UUID
	if uid, ok := middleware.CurrentUserID(c); ok {
		viewer = &uid
	}

	p, err := h.catalog.View(c.UserContext(), id, viewer)
	if errors.Is(err, ErrProductNotFound) {
		return handlers.NotFound(c, "Product not found")
	}
	if err != nil {
		return handlers.ServerError(c, "failed to load product", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in ProductInput
	if err := c.BodyParser(&in); err != nil {
		return handlers.InvalidBody(c)
	}
	p, err := h.catalog.Create(c.UserContext(), in)
	if errors.Is(err, services.ErrValidation) {
		return handlers.ValidationFailed(c, err)
	}
	if err != nil {
		return handlers.ServerError(c, "failed to create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.NotFound(c, "Product not found")
	}
	var patch ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return handlers.InvalidBody(c)
	}

	p, err := h.catalog.Update(c.UserContext(), id, patch)
	switch {
	case err == nil:
		return c.JSON(p)
	case errors.Is(err, ErrProductNotFound):
		return handlers.NotFound(c, "Product not found")
	case errors.Is(err, services.ErrValidation):
		return handlers.ValidationFailed(c, err)
	default:
		return handlers.ServerError(c, "failed to update product", err)
	}
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.NotFound(c, "Product not found")
	}
	err = h.catalog.Delete(c.UserContext(), id)
	if errors.Is(err, ErrProductNotFound) {
		return handlers.NotFound(c, "Product not found")
	}
	if err != nil {
		return handlers.ServerError(c, "failed to delete product", err)
	}
	return c.JSON(dto.MessageResponse{Msg: "Product removed"})
}
