package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is a saved shipping address. Stored inline on the user as jsonb.
type Address struct {
	Detail    string `json:"detail"`
	City      string `json:"city"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

// User is the credential record. Unverified rows are pending registrations and
// are overwritten by repeat sign-ups for the same email.
type User struct {
	ID                  uuid.UUID                    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email               string                       `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name                string                       `gorm:"not null;size:100" json:"name"`
	Password            string                       `gorm:"not null" json:"-"`
	Role                string                       `gorm:"size:20;not null;default:'customer'" json:"role"`
	Addresses           datatypes.JSONSlice[Address] `gorm:"type:jsonb;not null;default:'[]'" json:"addresses"`
	IsVerified          bool                         `gorm:"not null;default:false" json:"is_verified"`
	VerificationCode    *string                      `gorm:"size:6" json:"-"`
	VerificationExpires *time.Time                   `json:"-"`
	CreatedAt           time.Time                    `json:"created_at"`
	UpdatedAt           time.Time                    `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
