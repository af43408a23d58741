package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/catalog"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

const (
	maxCommentLength = 2000
	publishTimeout   = 10 * time.Second
)

type ProductLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type ReviewService struct {
	store     Store
	products  ProductLookup
	filter    *services.ContentFilter
	activity  activity.Recorder
	publisher events.Publisher

	pending sync.WaitGroup
}

func NewReviewService(store Store, products ProductLookup, filter *services.ContentFilter, recorder activity.Recorder, publisher events.Publisher) *ReviewService {
	return &ReviewService{
		store:     store,
		products:  products,
		filter:    filter,
		activity:  recorder,
		publisher: publisher,
	}
}

// Create stores author's review of a product. Errors are
// catalog.ErrProductNotFound, services.ErrValidation,
// services.ErrContentRejected or ErrAlreadyReviewed.
func (s *ReviewService) Create(ctx context.Context, author *models.User, productID uuid.UUID, in ReviewInput) (*Review, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(in.Comment)
	if in.Rating < 1 || in.Rating > 5 {
		return nil, &services.ValidationError{Msg: "rating must be between 1 and 5"}
	}
	if comment == "" {
		return nil, &services.ValidationError{Msg: "comment is required"}
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, &services.ValidationError{Msg: fmt.Sprintf("comment must be at most %d characters", maxCommentLength)}
	}
	if err := s.filter.Check(comment); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, productID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &Review{
		ProductID: productID,
		UserID:    author.ID,
		User:      author,
		Rating:    in.Rating,
		Comment:   comment,
	}
	// The unique index still settles two concurrent submissions.
	if err := s.store.Create(ctx, review); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.activity.Record(activity.Event{
		UserID:   &author.ID,
		Action:   models.ActionCreateReview,
		TargetID: &review.ID,
		Details: map[string]interface{}{
			"product_name": product.Name,
			"rating":       review.Rating,
		},
	})
	s.publishCreated(*review)
	return review, nil
}

// publishCreated emits review.created in the background so a slow broker never
// holds up the request.
func (s *ReviewService) publishCreated(r Review) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("review event panicked", "review_id", r.ID, "error", fmt.Sprint(rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, events.KeyReviewCreated, map[string]interface{}{
			"review_id":  r.ID,
			"product_id": r.ProductID,
			"user_id":    r.UserID,
			"rating":     r.Rating,
		}); err != nil {
			slog.Error("failed to publish review event", "review_id", r.ID, "error", err)
		}
	}()
}

// Wait blocks until in-flight events are published or ctx is done.
func (s *ReviewService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns the product's reviews newest first. The average is rounded to
// one decimal and is zero without reviews.
func (s *ReviewService) List(ctx context.Context, productID uuid.UUID) (*ProductReviews, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := &ProductReviews{
		Reviews:      make([]ReviewResponse, 0, len(rows)),
		TotalReviews: len(rows),
	}
	sum := 0
	for i := range rows {
		out.Reviews = append(out.Reviews, NewReviewResponse(&rows[i]))
		sum += rows[i].Rating
	}
	if len(rows) > 0 {
		avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(rows)))).Round(1)
		out.AverageRating = avg.InexactFloat64()
	}
	return out, nil
}
