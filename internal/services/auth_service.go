package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/security"
)

// VerificationCodeTTL is how long a registration code stays consumable.
const VerificationCodeTTL = 10 * time.Minute

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService struct {
	users      repository.UserRepository
	mailer     mailer.Sender
	tokens     *security.TokenIssuer
	activity   activity.Recorder
	metrics    *metrics.Metrics
	bcryptCost int

	now     func() time.Time
	newCode func() (string, error)
}

type AuthOption func(*AuthService)

func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func WithCodeGenerator(gen func() (string, error)) AuthOption {
	return func(s *AuthService) { s.newCode = gen }
}

func WithMetrics(m *metrics.Metrics) AuthOption {
	return func(s *AuthService) { s.metrics = m }
}

func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

func NewAuthService(
	users repository.UserRepository,
	sender mailer.Sender,
	tokens *security.TokenIssuer,
	recorder activity.Recorder,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:      users,
		mailer:     sender,
		tokens:     tokens,
		activity:   recorder,
		bcryptCost: 10,
		now:        time.Now,
		newCode:    security.GenerateVerificationCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// canonicalEmail normalizes email and accepts only a bare addr-spec. Display
// names and angle-bracket forms would otherwise key a second account to the
// same mailbox.
func canonicalEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", invalid("email address is not valid")
	}
	return addr.Address, nil
}

// Register creates or refreshes the pending account for email and mails a
// fresh verification code. A verified email is never touched. If the mail
// cannot be sent the pending record stays in place, so the caller may retry.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email, err := canonicalEmail(email)
	if err != nil {
		return err
	}
	if name == "" || email == "" || password == "" {
		return invalid("name, email and password are required")
	}

	existing, err := s.users.ByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		s.metrics.AuthOutcome("register", "duplicate")
		return ErrDuplicateAccount
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	hash, err := security.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	expires := s.now().Add(VerificationCodeTTL)

	pending := &models.User{
		Email:               email,
		Name:                name,
		Password:            hash,
		Role:                models.RoleCustomer,
		VerificationCode:    &code,
		VerificationExpires: &expires,
	}
	if err := s.users.SavePending(ctx, pending); err != nil {
		if errors.Is(err, repository.ErrAlreadyVerified) {
			s.metrics.AuthOutcome("register", "duplicate")
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to save pending user: %w", err)
	}

	msg := mailer.VerificationMessage(email, code, int(VerificationCodeTTL/time.Minute))
	err = s.mailer.Send(ctx, msg)
	s.metrics.EmailSent("verification", err)
	if err != nil {
		slog.Error("failed to send verification email", "user_id", pending.ID, "error", err)
		s.metrics.AuthOutcome("register", "mail_failed")
		return fmt.Errorf("%w: %w", ErrNotificationFailure, err)
	}

	s.metrics.AuthOutcome("register", "pending")
	slog.Info("verification code sent", "user_id", pending.ID)
	return nil
}

// Verify consumes the live code for email. Wrong, stale and replaced codes all
// fail the same way and leave the record untouched.
func (s *AuthService) Verify(ctx context.Context, email, code string) (*AuthResult, error) {
	email, err := canonicalEmail(email)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, invalid("email and code are required")
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.AuthOutcome("verify", "rejected")
		return nil, ErrInvalidOrExpiredCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := s.now()
	if user.IsVerified || user.VerificationCode == nil || user.VerificationExpires == nil ||
		!security.CodesEqual(code, *user.VerificationCode) || !now.Before(*user.VerificationExpires) {
		s.metrics.AuthOutcome("verify", "rejected")
		return nil, ErrInvalidOrExpiredCode
	}

	// The conditional update lets exactly one of several racing submissions win.
	if err := s.users.MarkVerified(ctx, user.ID, code, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthOutcome("verify", "rejected")
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, fmt.Errorf("failed to mark user verified: %w", err)
	}
	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpires = nil

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(activity.Event{
		UserID:  &user.ID,
		Action:  models.ActionVerifyEmail,
		Details: map[string]interface{}{"email": user.Email},
	})
	s.metrics.AuthOutcome("verify", "verified")
	return result, nil
}

// Login checks, in order: account exists, account verified, password matches.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := canonicalEmail(email)
	if err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.AuthOutcome("login", "no_account")
		return nil, ErrNoSuchAccount
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsVerified {
		s.metrics.AuthOutcome("login", "unverified")
		return nil, ErrEmailNotVerified
	}
	if err := security.ComparePassword(user.Password, password); err != nil {
		s.metrics.AuthOutcome("login", "bad_password")
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(activity.Event{UserID: &user.ID, Action: models.ActionLogin})
	s.metrics.AuthOutcome("login", "ok")
	return result, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
