package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyVerified = errors.New("account already verified")
)

// UserRepository is the credential store.
type UserRepository interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// SavePending creates the pending record for u.Email or overwrites an
	// existing unverified one. It returns ErrAlreadyVerified when the email
	// belongs to a verified account.
	SavePending(ctx context.Context, u *models.User) error
	// MarkVerified flips the account to verified only while code is still the
	// live code and has not expired at now. Returns ErrNotFound otherwise.
	MarkVerified(ctx context.Context, id uuid.UUID, code string, now time.Time) error
	UpdateProfile(ctx context.Context, u *models.User) error
}

// ActivityRepository is the append-only activity log store.
type ActivityRepository interface {
	CreateBatch(ctx context.Context, entries []models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}
