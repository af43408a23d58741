package services

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateAccount     = errors.New("account already exists")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrNoSuchAccount        = errors.New("no account for this email")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotificationFailure  = errors.New("notification could not be sent")
	ErrUserNotFound         = errors.New("user not found")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
