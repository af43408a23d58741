package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

type ProfileResponse struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Role       string           `json:"role"`
	Addresses  []models.Address `json:"addresses"`
	IsVerified bool             `json:"is_verified"`
	CreatedAt  time.Time        `json:"created_at"`
}

func NewProfileResponse(u *models.User) ProfileResponse {
	addrs := []models.Address(u.Addresses)
	if addrs == nil {
		addrs = []models.Address{}
	}
	return ProfileResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Addresses:  addrs,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// UpdateProfileRequest fields are optional. Addresses, when present, replace
// the whole saved list.
type UpdateProfileRequest struct {
	Name      *string           `json:"name"`
	Addresses *[]models.Address `json:"addresses"`
}
