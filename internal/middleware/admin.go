package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
)

// AdminRequired must run after JWTProtected. The role comes from the stored
// user record, never from token claims.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(
				dto.CodeMissingToken, "Not authorized, no token"))
		}
		if !u.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.NewError(
				dto.CodeForbidden, "Admin access required"))
		}
		return c.Next()
	}
}
