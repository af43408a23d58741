package reviews

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/catalog"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

type ReviewHandler struct {
	reviews *ReviewService
}

func NewReviewHandler(reviews *ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(dto.CodeMissingToken, "Not authorized"))
	}
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.NotFound(c, "Product not found")
	}
	var in ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return handlers.InvalidBody(c)
	}

	review, err := h.reviews.Create(c.UserContext(), user, productID, in)
	var rejection *services.ContentRejection
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(NewReviewResponse(review))
	case errors.Is(err, catalog.ErrProductNotFound):
		return handlers.NotFound(c, "Product not found")
	case errors.As(err, &rejection):
		return handlers.BadRequest(c, dto.CodeValidation, rejection.Message())
	case errors.Is(err, services.ErrValidation):
		return handlers.ValidationFailed(c, err)
	case errors.Is(err, ErrAlreadyReviewed):
		return handlers.BadRequest(c, dto.CodeConflict, "Product already reviewed")
	default:
		return handlers.ServerError(c, "failed to create review", err)
	}
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.NotFound(c, "Product not found")
	}
	out, err := h.reviews.List(c.UserContext(), productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return handlers.NotFound(c, "Product not found")
	}
	if err != nil {
		return handlers.ServerError(c, "failed to list reviews", err)
	}
	return c.JSON(out)
}
