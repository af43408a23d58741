package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/security"
)

type UserLookup interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// JWTProtected requires a valid bearer token and resolves its subject to a
// user record, available through CurrentUser.
func JWTProtected(tokens *security.TokenIssuer, users UserLookup) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwt.SigningMethodHS256.Alg(),
			Key:    tokens.SigningKey(),
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(
					dto.CodeMissingToken, "Not authorized, no token"))
			}
			return invalidToken(c)
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok || token == nil {
				return invalidToken(c)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return invalidToken(c)
			}
			if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
				return invalidToken(c)
			}
			sub, err := claims.GetSubject()
			if err != nil {
				return invalidToken(c)
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return invalidToken(c)
			}
			return resolveUser(c, users, userID)
		},
	})
}

// OptionalUser attaches the user when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalUser(tokens *security.TokenIssuer, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			return c.Next()
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return c.Next()
		}
		if u, err := users.ByID(c.UserContext(), userID); err == nil && u.IsVerified {
			SetCurrentUser(c, u)
		}
		return c.Next()
	}
}

func resolveUser(c *fiber.Ctx, users UserLookup, id uuid.UUID) error {
	u, err := users.ByID(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return invalidToken(c)
	}
	if err != nil {
		slog.Error("failed to resolve token subject", "user_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError(
			dto.CodeServerError, "Server error"))
	}
	if !u.IsVerified {
		return invalidToken(c)
	}
	SetCurrentUser(c, u)
	return c.Next()
}

func invalidToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(
		dto.CodeInvalidToken, "Not authorized, token failed"))
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
