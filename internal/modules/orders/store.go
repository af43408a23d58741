package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store interface {
	// Create persists the order and its items atomically.
	Create(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	Totals(ctx context.Context) (count, paid int64, sales decimal.Decimal, err error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, o *Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

func (s *GormStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders := make([]Order, 0)
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *GormStore) Totals(ctx context.Context) (int64, int64, decimal.Decimal, error) {
	var count, paid int64
	sales := decimal.Zero

	db := s.db.WithContext(ctx)
	if err := db.Model(&Order{}).Count(&count).Error; err != nil {
		return 0, 0, sales, err
	}
	if err := db.Model(&Order{}).Where("is_paid = ?", true).Count(&paid).Error; err != nil {
		return 0, 0, sales, err
	}
	if err := db.Model(&Order{}).Select("COALESCE(SUM(total_price), 0)").Row().Scan(&sales); err != nil {
		return 0, 0, sales, err
	}
	return count, paid, sales, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	orders []Order
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	s.orders = append(s.orders, cp)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Totals(context.Context) (int64, int64, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, 0, decimal.Zero, s.Err
	}
	var paid int64
	sales := decimal.Zero
	for _, o := range s.orders {
		sales = sales.Add(o.TotalPrice)
		if o.IsPaid {
			paid++
		}
	}
	return int64(len(s.orders)), paid, sales, nil
}
