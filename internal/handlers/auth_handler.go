package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return InvalidBody(c)
	}

	err := h.authService.Register(c.UserContext(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(dto.MessageResponse{Msg: "Verification code sent, please check your email"})
	case errors.Is(err, services.ErrValidation):
		return ValidationFailed(c, err)
	case errors.Is(err, services.ErrDuplicateAccount):
		return BadRequest(c, dto.CodeDuplicateAccount, "User already exists")
	case errors.Is(err, services.ErrNotificationFailure):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError(
			dto.CodeNotificationFailure,
			"Failed to send verification code, please check the email address and try again"))
	default:
		return ServerError(c, "registration failed", err)
	}
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return InvalidBody(c)
	}

	res, err := h.authService.Verify(c.UserContext(), req.Email, req.Code)
	switch {
	case err == nil:
		return c.JSON(dto.AuthResponse{
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
			User:      dto.NewUserResponse(res.User),
			Msg:       "Email verified",
		})
	case errors.Is(err, services.ErrValidation):
		return ValidationFailed(c, err)
	case errors.Is(err, services.ErrInvalidOrExpiredCode):
		return BadRequest(c, dto.CodeInvalidOrExpiredCode, "Invalid or expired verification code")
	default:
		return ServerError(c, "verification failed", err)
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return InvalidBody(c)
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(dto.AuthResponse{
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
			User:      dto.NewUserResponse(res.User),
		})
	case errors.Is(err, services.ErrValidation):
		return ValidationFailed(c, err)
	case errors.Is(err, services.ErrNoSuchAccount):
		return BadRequest(c, dto.CodeNoSuchAccount, "User does not exist")
	case errors.Is(err, services.ErrEmailNotVerified):
		return BadRequest(c, dto.CodeEmailNotVerified, "Email not verified, please complete registration first")
	case errors.Is(err, services.ErrInvalidCredentials):
		return BadRequest(c, dto.CodeInvalidCredentials, "Invalid password")
	default:
		return ServerError(c, "login failed", err)
	}
}
