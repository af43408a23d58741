package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return u, nil
}

// UpdateProfile replaces the name when a non-blank one is given and the whole
// address list when addresses is non-nil.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name *string, addresses *[]models.Address) (*models.User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	// A blank name is treated as not sent.
	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			if len(trimmed) > 100 {
				return nil, invalid("name must be at most 100 characters")
			}
			u.Name = trimmed
		}
	}
	if addresses != nil {
		normalized, err := normalizeAddresses(*addresses)
		if err != nil {
			return nil, err
		}
		u.Addresses = normalized
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// normalizeAddresses trims fields and keeps at most one default address: the
// first one flagged.
func normalizeAddresses(in []models.Address) ([]models.Address, error) {
	out := make([]models.Address, 0, len(in))
	seenDefault := false
	for i, a := range in {
		a.Detail = strings.TrimSpace(a.Detail)
		a.City = strings.TrimSpace(a.City)
		a.Country = strings.TrimSpace(a.Country)
		if a.Detail == "" || a.City == "" || a.Country == "" {
			return nil, invalid(fmt.Sprintf("address %d: detail, city and country are required", i+1))
		}
		if a.IsDefault {
			if seenDefault {
				a.IsDefault = false
			}
			seenDefault = true
		}
		out = append(out, a)
	}
	return out, nil
}
