package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/database"
)

var ErrProductNotFound = errors.New("product not found")

type Store interface {
	List(ctx context.Context, keyword string, page, size int) ([]Product, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) List(ctx context.Context, keyword string, page, size int) ([]Product, int64, error) {
	var total int64
	query := s.db.WithContext(ctx).Model(&Product{}).Scopes(database.NameContains(keyword))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := make([]Product, 0, size)
	err := s.db.WithContext(ctx).
		Scopes(database.NameContains(keyword), database.Paginate(page, size)).
		Order("created_at DESC, id").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GormStore) Update(ctx context.Context, p *Product) error {
	result := s.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", p.ID).
		Select("name", "description", "price", "stock", "image_url", "updated_at").
		Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Product{}).Count(&n).Error
	return n, err
}

// MemoryStore is an in-process Store, newest first like GormStore.
type MemoryStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]Product
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[uuid.UUID]Product)}
}

func (s *MemoryStore) List(_ context.Context, keyword string, page, size int) ([]Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	kw := strings.ToLower(keyword)
	matched := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if kw == "" || strings.Contains(strings.ToLower(p.Name), kw) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * size
	if start >= len(matched) {
		return []Product{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Create(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) Update(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	p.UpdatedAt = time.Now()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.products)), s.Err
}
