package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

// Review is unique per (product, user).
type Review struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user,priority:1"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user,priority:2"`
	User      *models.User `gorm:"foreignKey:UserID"`
	Rating    int          `gorm:"not null"`
	Comment   string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"index"`
	UpdatedAt time.Time
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type Reviewer struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReviewResponse exposes the reviewer's name but never their email.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	Product   uuid.UUID `json:"product"`
	User      Reviewer  `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReviewResponse(r *Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		Product:   r.ProductID,
		User:      Reviewer{ID: r.UserID},
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		resp.User.Name = r.User.Name
	}
	return resp
}

type ProductReviews struct {
	Reviews       []ReviewResponse `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
}
