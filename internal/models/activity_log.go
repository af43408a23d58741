package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionViewProduct  = "VIEW_PRODUCT"
	ActionPlaceOrder   = "PLACE_ORDER"
	ActionCreateReview = "CREATE_REVIEW"
	ActionLogin        = "LOGIN"
	ActionVerifyEmail  = "VERIFY_EMAIL"
)

// ActivityLog is an append-only record of a user action. UserID is nil for
// anonymous visitors. Rows are never updated or deleted by the application.
type ActivityLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action    string         `gorm:"size:50;not null;index" json:"action"`
	TargetID  *uuid.UUID     `gorm:"type:uuid" json:"target_id"`
	Details   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}
