package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	// JWTProtected already loaded the record.
	u := middleware.CurrentUser(c)
	return c.JSON(dto.NewProfileResponse(u))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return InvalidBody(c)
	}

	userID, _ := middleware.CurrentUserID(c)
	u, err := h.userService.UpdateProfile(c.UserContext(), userID, req.Name, req.Addresses)
	switch {
	case err == nil:
		return c.JSON(dto.NewProfileResponse(u))
	case errors.Is(err, services.ErrValidation):
		return ValidationFailed(c, err)
	case errors.Is(err, services.ErrUserNotFound):
		return NotFound(c, "User not found")
	default:
		return ServerError(c, "profile update failed", err)
	}
}
