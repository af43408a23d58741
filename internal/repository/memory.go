package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

// MemoryUserRepo is an in-process UserRepository with the same conditional
// semantics as UserRepo. Used by tests and local tooling.
type MemoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[string]*models.User)}
}

func (r *MemoryUserRepo) ByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) ByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) SavePending(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	now := time.Now()
	existing, ok := r.byEmail[u.Email]
	if !ok {
		cp := *u
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		if cp.Role == "" {
			cp.Role = models.RoleCustomer
		}
		cp.CreatedAt, cp.UpdatedAt = now, now
		r.byEmail[u.Email] = &cp
		u.ID = cp.ID
		return nil
	}
	if existing.IsVerified {
		return ErrAlreadyVerified
	}
	existing.Name = u.Name
	existing.Password = u.Password
	existing.VerificationCode = u.VerificationCode
	existing.VerificationExpires = u.VerificationExpires
	existing.UpdatedAt = now
	u.ID = existing.ID
	return nil
}

func (r *MemoryUserRepo) MarkVerified(_ context.Context, id uuid.UUID, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, u := range r.byEmail {
		if u.ID != id {
			continue
		}
		if u.IsVerified || u.VerificationCode == nil || *u.VerificationCode != code ||
			u.VerificationExpires == nil || !u.VerificationExpires.After(now) {
			return ErrNotFound
		}
		u.IsVerified = true
		u.VerificationCode = nil
		u.VerificationExpires = nil
		return nil
	}
	return ErrNotFound
}

func (r *MemoryUserRepo) UpdateProfile(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.byEmail {
		if existing.ID == u.ID {
			existing.Name = u.Name
			existing.Addresses = u.Addresses
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

// Put stores u as-is, overwriting any record with the same email.
func (r *MemoryUserRepo) Put(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byEmail[u.Email] = &cp
}

// MemoryActivityRepo keeps activity entries in insertion order.
type MemoryActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	Users   UserRepository
	// Err, when set, fails CreateBatch.
	Err error
}

func NewMemoryActivityRepo() *MemoryActivityRepo {
	return &MemoryActivityRepo{}
}

func (r *MemoryActivityRepo) CreateBatch(_ context.Context, entries []models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *MemoryActivityRepo) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	r.mu.Lock()
	out := make([]models.ActivityLog, len(r.entries))
	copy(out, r.entries)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if r.Users != nil {
		for i := range out {
			if out[i].UserID == nil {
				continue
			}
			if u, err := r.Users.ByID(ctx, *out[i].UserID); err == nil {
				out[i].User = &models.User{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}
	}
	return out, nil
}

// Entries returns a snapshot of everything written so far.
func (r *MemoryActivityRepo) Entries() []models.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ActivityLog, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *MemoryActivityRepo) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}
