package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

// SavePending is a single INSERT ... ON CONFLICT (email) DO UPDATE ... WHERE
// users.is_verified = false, so a concurrent verification can never be
// overwritten by a late re-registration. Pending rows are last-writer-wins.
func (r *UserRepo) SavePending(ctx context.Context, u *models.User) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "password", "verification_code", "verification_expires", "updated_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "users", Name: "is_verified"}, Value: false},
		}},
	}).Create(u)
	if result.Error != nil {
		return fmt.Errorf("failed to save pending user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyVerified
	}
	return nil
}

func (r *UserRepo) MarkVerified(ctx context.Context, id uuid.UUID, code string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_verified = ? AND verification_code = ? AND verification_expires > ?", id, false, code, now).
		Updates(map[string]interface{}{
			"is_verified":          true,
			"verification_code":    nil,
			"verification_expires": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark user verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	result := r.db.WithContext(ctx).Model(u).Select("name", "addresses").Updates(u)
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
