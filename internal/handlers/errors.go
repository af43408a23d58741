package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

func BadRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.NewError(code, msg))
}

func InvalidBody(c *fiber.Ctx) error {
	return BadRequest(c, dto.CodeValidation, "Invalid request body")
}

// ValidationFailed reports err's client-facing message when it is a
// services.ValidationError.
func ValidationFailed(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return BadRequest(c, dto.CodeValidation, ve.Msg)
	}
	return BadRequest(c, dto.CodeValidation, "Invalid request")
}

// ServerError logs err and answers with a generic 500. Internals never reach
// the client.
func ServerError(c *fiber.Ctx, msg string, err error) error {
	slog.Error(msg, "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError(dto.CodeServerError, "Server error"))
}

func NotFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.NewError(dto.CodeNotFound, msg))
}
