package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

const (
	DefaultPageSize = 8
	MaxPageSize     = 100
)

type CatalogService struct {
	store    Store
	activity activity.Recorder
}

func NewCatalogService(store Store, recorder activity.Recorder) *CatalogService {
	return &CatalogService{store: store, activity: recorder}
}

// List pages through products whose name contains keyword. Out-of-range page
// numbers and sizes fall back to the defaults.
func (s *CatalogService) List(ctx context.Context, keyword string, page, size int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	products, total, err := s.store.List(ctx, strings.TrimSpace(keyword), page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &Page{
		Products: products,
		Page:     page,
		Pages:    int((total + int64(size) - 1) / int64(size)),
		Total:    total,
	}, nil
}

// View returns the product and records the view. viewer is nil for anonymous
// visitors.
func (s *CatalogService) View(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.activity.Record(activity.Event{
		UserID:   viewer,
		Action:   models.ActionViewProduct,
		TargetID: &p.ID,
		Details: map[string]interface{}{
			"product_name": p.Name,
			"anonymous":    viewer == nil,
		},
	})
	return p, nil
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.store.Get(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	p := &Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// Update applies the fields present in patch.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func validate(p *Product) error {
	switch {
	case p.Name == "" || p.Description == "" || p.ImageURL == "":
		return &services.ValidationError{Msg: "name, description and image_url are required"}
	case len(p.Name) > 200:
		return &services.ValidationError{Msg: "name must be at most 200 characters"}
	case p.Price.IsNegative():
		return &services.ValidationError{Msg: "price cannot be negative"}
	case p.Stock < 0:
		return &services.ValidationError{Msg: "stock cannot be negative"}
	}
	p.Price = p.Price.Round(2)
	return nil
}
