package reviews

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAlreadyReviewed = errors.New("product already reviewed")

type Store interface {
	// Create fails with ErrAlreadyReviewed when the user already reviewed the product.
	Create(ctx context.Context, r *Review) error
	Exists(ctx context.Context, productID, userID uuid.UUID) (bool, error)
	// ListByProduct returns reviews newest first with the reviewer loaded.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, r *Review) error {
	err := s.db.WithContext(ctx).Omit("User").Create(r).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyReviewed
	}
	return err
}

func (s *GormStore) Exists(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	out := make([]Review, 0)
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// MemoryStore is an in-process Store that enforces the same uniqueness rule.
type MemoryStore struct {
	mu      sync.Mutex
	reviews []Review
	Err     error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return ErrAlreadyReviewed
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.reviews = append(s.reviews, *r)
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, productID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, r := range s.reviews {
		if r.ProductID == productID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListByProduct(_ context.Context, productID uuid.UUID) ([]Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Review, 0)
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
