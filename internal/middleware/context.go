package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

const currentUserKey = "currentUser"

// CurrentUser returns the user resolved by JWTProtected or OptionalUser, or
// nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(currentUserKey).(*models.User)
	return u
}

func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	if u := CurrentUser(c); u != nil {
		return u.ID, true
	}
	return uuid.Nil, false
}

func SetCurrentUser(c *fiber.Ctx, u *models.User) {
	c.Locals(currentUserKey, u)
}
