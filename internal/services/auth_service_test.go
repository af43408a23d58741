package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/security"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []activity.Event
}

func (r *recordedEvents) Record(ev activity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordedEvents) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type authFixture struct {
	svc    *AuthService
	users  *repository.MemoryUserRepo
	outbox *mailer.Outbox
	events *recordedEvents
	clock  *clock
	tokens *security.TokenIssuer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  repository.NewMemoryUserRepo(),
		outbox: &mailer.Outbox{},
		events: &recordedEvents{},
		clock:  &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.tokens = security.NewTokenIssuer("test-secret").WithClock(f.clock.Now)

	codes := []string{"111111", "222222", "333333", "444444"}
	next := 0
	gen := func() (string, error) {
		code := codes[next%len(codes)]
		next++
		return code, nil
	}
	f.svc = NewAuthService(f.users, f.outbox, f.tokens, f.events,
		WithClock(f.clock.Now),
		WithCodeGenerator(gen),
		WithBcryptCost(4),
	)
	return f
}

// lastCode extracts the code from the most recent verification email.
func (f *authFixture) lastCode(t *testing.T) string {
	t.Helper()
	msg, ok := f.outbox.Last()
	if !ok {
		t.Fatal("no email sent")
	}
	for _, field := range strings.Fields(msg.Text) {
		if len(field) == 6 && strings.Trim(field, "0123456789") == "" {
			return field
		}
	}
	t.Fatalf("no code in email %q", msg.Text)
	return ""
}

func TestAuthFlow_RegisterVerifyLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.Register(ctx, "Alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pending, err := f.users.ByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if pending.IsVerified {
		t.Fatal("new registration should be pending")
	}
	if got := len(f.outbox.Messages()); got != 1 {
		t.Fatalf("emails sent = %d, want 1", got)
	}
	code := f.lastCode(t)

	if _, err := f.svc.Verify(ctx, "a@x.com", "999999"); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("Verify wrong code err = %v, want ErrInvalidOrExpiredCode", err)
	}
	if u, _ := f.users.ByEmail(ctx, "a@x.com"); u.IsVerified {
		t.Fatal("wrong code must leave account unverified")
	}

	f.clock.Advance(5 * time.Minute)
	res, err := f.svc.Verify(ctx, "a@x.com", code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Token == "" {
		t.Fatal("Verify returned empty token")
	}
	if u, _ := f.users.ByEmail(ctx, "a@x.com"); !u.IsVerified || u.VerificationCode != nil {
		t.Fatalf("after verify: verified=%v code=%v", u.IsVerified, u.VerificationCode)
	}

	login, err := f.svc.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.Name != "Alice" || login.User.Email != "a@x.com" {
		t.Errorf("login user = %+v", login.User)
	}
	claims, err := f.tokens.Parse(login.Token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != login.User.ID.String() {
		t.Errorf("sub = %q, want %q", claims.Subject, login.User.ID)
	}

	want := []string{models.ActionVerifyEmail, models.ActionLogin}
	if got := f.events.actions(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("activity = %v, want %v", got, want)
	}
}

func TestRegister_VerifiedEmailIsDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.Put(&models.User{Email: "a@x.com", Name: "Alice", IsVerified: true})

	err := f.svc.Register(ctx, "Mallory", "A@X.com ", "pw2")
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("Register err = %v, want ErrDuplicateAccount", err)
	}
	if len(f.outbox.Messages()) != 0 {
		t.Error("no email should be sent for a duplicate account")
	}
	if u, _ := f.users.ByEmail(ctx, "a@x.com"); u.Name != "Alice" {
		t.Errorf("verified record was overwritten: name = %q", u.Name)
	}
}

func TestRegister_DisplayNameFormCannotClaimVerifiedMailbox(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.Register(ctx, "Alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := f.svc.Verify(ctx, "a@x.com", f.lastCode(t)); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	sent := len(f.outbox.Messages())

	for _, email := range []string{"Mallory <a@x.com>", "<a@x.com>", `"a" <a@x.com>`} {
		err := f.svc.Register(ctx, "Mallory", email, "pw2")
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Register(%q) err = %v, want ErrValidation", email, err)
		}
		if _, err := f.svc.Login(ctx, email, "pw1"); !errors.Is(err, ErrValidation) {
			t.Errorf("Login(%q) err = %v, want ErrValidation", email, err)
		}
		if _, err := f.svc.Verify(ctx, email, "111111"); !errors.Is(err, ErrValidation) {
			t.Errorf("Verify(%q) err = %v, want ErrValidation", email, err)
		}
	}
	if got := len(f.outbox.Messages()); got != sent {
		t.Errorf("emails sent = %d, want %d", got, sent)
	}
	if _, err := f.users.ByEmail(ctx, "mallory <a@x.com>"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("a second account was stored: err = %v", err)
	}
}

func TestRegister_RepeatInvalidatesPriorCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.Register(ctx, "Alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	first := f.lastCode(t)
	firstUser, _ := f.users.ByEmail(ctx, "a@x.com")

	if err := f.svc.Register(ctx, "Alicia", "a@x.com", "pw2"); err != nil {
		t.Fatalf("second Register: %v", err)
	}
	second := f.lastCode(t)
	if first == second {
		t.Fatalf("codes should differ, both %q", first)
	}

	u, _ := f.users.ByEmail(ctx, "a@x.com")
	if u.ID != firstUser.ID {
		t.Error("re-registration must overwrite, not duplicate")
	}
	if u.Name != "Alicia" {
		t.Errorf("name = %q, want overwritten Alicia", u.Name)
	}

	if _, err := f.svc.Verify(ctx, "a@x.com", first); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("old code err = %v, want ErrInvalidOrExpiredCode", err)
	}
	if _, err := f.svc.Verify(ctx, "a@x.com", second); err != nil {
		t.Fatalf("new code: %v", err)
	}
	if _, err := f.svc.Login(ctx, "a@x.com", "pw2"); err != nil {
		t.Errorf("login with overwritten password: %v", err)
	}
}

func TestVerify_ExpiredCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if err := f.svc.Register(ctx, "Alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	code := f.lastCode(t)

	f.clock.Advance(VerificationCodeTTL)
	if _, err := f.svc.Verify(ctx, "a@x.com", code); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("Verify at expiry err = %v, want ErrInvalidOrExpiredCode", err)
	}
	if u, _ := f.users.ByEmail(ctx, "a@x.com"); u.IsVerified || u.VerificationCode == nil {
		t.Error("expired attempt must leave the pending record untouched")
	}
}

func TestVerify_UnknownEmailAndReuse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Verify(ctx, "ghost@x.com", "123456"); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("unknown email err = %v", err)
	}

	_ = f.svc.Register(ctx, "Alice", "a@x.com", "pw1")
	code := f.lastCode(t)
	if _, err := f.svc.Verify(ctx, "a@x.com", code); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, err := f.svc.Verify(ctx, "a@x.com", code); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("reused code err = %v, want ErrInvalidOrExpiredCode", err)
	}
}

func TestVerify_ConcurrentSubmissionsVerifyOnce(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_ = f.svc.Register(ctx, "Alice", "a@x.com", "pw1")
	code := f.lastCode(t)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Verify(ctx, "a@x.com", code); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("successful verifications = %d, want 1", winners)
	}
}

func TestRegister_MailFailureKeepsPendingRecord(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.outbox.SetErr(mailer.ErrRelayUnreachable)

	err := f.svc.Register(ctx, "Alice", "a@x.com", "pw1")
	if !errors.Is(err, ErrNotificationFailure) {
		t.Fatalf("Register err = %v, want ErrNotificationFailure", err)
	}
	if !errors.Is(err, mailer.ErrRelayUnreachable) {
		t.Errorf("Register err = %v, should wrap the relay error", err)
	}
	u, err := f.users.ByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("pending record missing after mail failure: %v", err)
	}
	if u.IsVerified {
		t.Error("record should stay pending")
	}

	f.outbox.SetErr(nil)
	if err := f.svc.Register(ctx, "Alice", "a@x.com", "pw1"); err != nil {
		t.Fatalf("retry Register: %v", err)
	}
	if got, _ := f.users.ByEmail(ctx, "a@x.com"); got.ID != u.ID {
		t.Error("retry should overwrite the same pending record")
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	cases := []struct{ name, email, password string }{
		{"", "a@x.com", "pw"},
		{"Alice", "", "pw"},
		{"Alice", "a@x.com", ""},
		{"Alice", "not-an-email", "pw"},
		{"Alice", "Alice <a@x.com>", "pw"},
	}
	for _, c := range cases {
		err := f.svc.Register(ctx, c.name, c.email, c.password)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Register(%q, %q, %q) err = %v, want ErrValidation", c.name, c.email, c.password, err)
		}
	}
	if len(f.outbox.Messages()) != 0 {
		t.Error("invalid registrations must not send email")
	}
}

func TestLogin_ErrorOrder(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, "nobody@x.com", "pw"); !errors.Is(err, ErrNoSuchAccount) {
		t.Errorf("unknown email err = %v, want ErrNoSuchAccount", err)
	}

	_ = f.svc.Register(ctx, "Bob", "b@x.com", "right")
	for _, pw := range []string{"right", "wrong"} {
		if _, err := f.svc.Login(ctx, "b@x.com", pw); !errors.Is(err, ErrEmailNotVerified) {
			t.Errorf("unverified login(%q) err = %v, want ErrEmailNotVerified", pw, err)
		}
	}

	code := f.lastCode(t)
	if _, err := f.svc.Verify(ctx, "b@x.com", code); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, err := f.svc.Login(ctx, "b@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_TokenValidForFiveDays(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_ = f.svc.Register(ctx, "Alice", "a@x.com", "pw1")
	if _, err := f.svc.Verify(ctx, "a@x.com", f.lastCode(t)); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	issuedAt := f.clock.Now()
	res, err := f.svc.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := res.ExpiresAt.Sub(issuedAt); got != 5*24*time.Hour {
		t.Errorf("token lifetime = %v, want 120h", got)
	}

	f.clock.Advance(5*24*time.Hour - time.Second)
	if _, err := f.tokens.Parse(res.Token); err != nil {
		t.Errorf("token rejected before expiry: %v", err)
	}
	f.clock.Advance(2 * time.Second)
	if _, err := f.tokens.Parse(res.Token); err == nil {
		t.Error("token accepted after expiry")
	}
}

func TestLogin_ActivityStoreOutageDoesNotFailLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	store := repository.NewMemoryActivityRepo()
	store.SetErr(errors.New("activity store down"))
	rec := activity.NewAsyncRecorder(store, activity.Options{BatchSize: 1, FlushInterval: time.Millisecond})
	defer rec.Stop()
	f.svc.activity = rec

	_ = f.svc.Register(ctx, "Alice", "a@x.com", "pw1")
	if _, err := f.svc.Verify(ctx, "a@x.com", f.lastCode(t)); err != nil {
		t.Fatalf("Verify with failing activity store: %v", err)
	}
	if _, err := f.svc.Login(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("Login with failing activity store: %v", err)
	}
}
