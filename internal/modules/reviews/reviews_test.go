package reviews

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/catalog"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/security"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

type recorder struct {
	mu     sync.Mutex
	events []activity.Event
}

func (r *recorder) Record(ev activity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []activity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]activity.Event(nil), r.events...)
}

type fixture struct {
	svc     *ReviewService
	store   *MemoryStore
	rec     *recorder
	bus     *events.MemoryPublisher
	product catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := catalog.NewMemoryStore()
	p := catalog.Product{Name: "Kettle", Description: "d", Price: decimal.NewFromInt(20), ImageURL: "/k.jpg"}
	if err := products.Create(context.Background(), &p); err != nil {
		t.Fatalf("Create product: %v", err)
	}
	f := &fixture{store: NewMemoryStore(), rec: &recorder{}, bus: &events.MemoryPublisher{}, product: p}
	f.svc = NewReviewService(f.store, products, services.NewContentFilter(), f.rec, f.bus)
	return f
}

func (f *fixture) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.svc.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func user(name string) *models.User {
	return &models.User{ID: uuid.New(), Name: name, Email: name + "@x.com", Role: models.RoleCustomer, IsVerified: true}
}

func TestCreate_RecordsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ada := user("ada")

	review, err := f.svc.Create(context.Background(), ada, f.product.ID, ReviewInput{Rating: 4, Comment: "  Boils fast.  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if review.Comment != "Boils fast." || review.UserID != ada.ID {
		t.Errorf("review = %+v", review)
	}

	recorded := f.rec.all()
	if len(recorded) != 1 || recorded[0].Action != models.ActionCreateReview || *recorded[0].TargetID != review.ID {
		t.Fatalf("activity = %+v", recorded)
	}
	if recorded[0].Details["product_name"] != "Kettle" || recorded[0].Details["rating"] != 4 {
		t.Errorf("details = %v", recorded[0].Details)
	}

	f.wait(t)
	published := f.bus.Events()
	if len(published) != 1 || published[0].Key != events.KeyReviewCreated {
		t.Errorf("events = %+v", published)
	}
}

func TestCreate_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := user("ada")

	if _, err := f.svc.Create(ctx, ada, uuid.New(), ReviewInput{Rating: 5, Comment: "ok"}); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Errorf("unknown product err = %v", err)
	}
	for _, rating := range []int{0, 6, -1} {
		if _, err := f.svc.Create(ctx, ada, f.product.ID, ReviewInput{Rating: rating, Comment: "ok"}); !errors.Is(err, services.ErrValidation) {
			t.Errorf("rating %d err = %v, want ErrValidation", rating, err)
		}
	}
	if _, err := f.svc.Create(ctx, ada, f.product.ID, ReviewInput{Rating: 3, Comment: "   "}); !errors.Is(err, services.ErrValidation) {
		t.Errorf("blank comment err = %v", err)
	}
	if _, err := f.svc.Create(ctx, ada, f.product.ID, ReviewInput{Rating: 3, Comment: "see www.cheap-kettles.com now"}); !errors.Is(err, services.ErrContentRejected) {
		t.Errorf("link err = %v, want ErrContentRejected", err)
	}

	if _, err := f.svc.Create(ctx, ada, f.product.ID, ReviewInput{Rating: 3, Comment: "fine"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, ada, f.product.ID, ReviewInput{Rating: 1, Comment: "changed my mind"}); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("second review err = %v, want ErrAlreadyReviewed", err)
	}
	if len(f.rec.all()) != 1 {
		t.Errorf("only the accepted review should be logged, got %d", len(f.rec.all()))
	}
}

func TestCreate_PublishFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.bus.Err = errors.New("broker gone")
	if _, err := f.svc.Create(context.Background(), user("ada"), f.product.ID, ReviewInput{Rating: 5, Comment: "great"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.wait(t)
}

// stalledPublisher blocks every Publish until release is closed.
type stalledPublisher struct {
	release chan struct{}
}

func (p *stalledPublisher) Publish(ctx context.Context, _ string, _ any) error {
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *stalledPublisher) Close() error { return nil }

func TestCreate_StalledBrokerDoesNotDelayRequest(t *testing.T) {
	f := newFixture(t)
	broker := &stalledPublisher{release: make(chan struct{})}
	f.svc.publisher = broker

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Create(context.Background(), user("ada"), f.product.ID, ReviewInput{Rating: 5, Comment: "great"})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Create waited on the broker")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := f.svc.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait with stalled broker err = %v, want DeadlineExceeded", err)
	}

	close(broker.release)
	f.wait(t)
}

func TestList_AverageAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.List(ctx, f.product.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if empty.TotalReviews != 0 || empty.AverageRating != 0 || empty.Reviews == nil {
		t.Errorf("empty = %+v", empty)
	}

	for i, rating := range []int{5, 4, 4} {
		if _, err := f.svc.Create(ctx, user(string(rune('a'+i))), f.product.ID, ReviewInput{Rating: rating, Comment: "ok"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	got, err := f.svc.List(ctx, f.product.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.TotalReviews != 3 || got.AverageRating != 4.3 {
		t.Errorf("total=%d average=%v, want 3/4.3", got.TotalReviews, got.AverageRating)
	}
	if got.Reviews[0].User.Name != "c" || got.Reviews[2].User.Name != "a" {
		t.Errorf("reviews not newest first: %+v", got.Reviews)
	}

	if _, err := f.svc.List(ctx, uuid.New()); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Errorf("unknown product err = %v", err)
	}
}

func TestReviewRoutes(t *testing.T) {
	f := newFixture(t)
	users := repository.NewMemoryUserRepo()
	tokens := security.NewTokenIssuer("reviews-secret")
	ada := user("ada")
	users.Put(ada)
	token, _, _ := tokens.Issue(ada)

	app := fiber.New()
	Mount(app.Group("/api"), NewReviewHandler(f.svc), modules.Guards{
		Protected: middleware.JWTProtected(tokens, users),
		Optional:  middleware.OptionalUser(tokens, users),
		Admin:     middleware.AdminRequired(),
	})

	do := func(method, path, token string, body any) (int, []byte) {
		t.Helper()
		var rd io.Reader
		if body != nil {
			b, _ := json.Marshal(body)
			rd = bytes.NewReader(b)
		}
		req := httptest.NewRequest(method, path, rd)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()
		out, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, out
	}

	path := "/api/products/" + f.product.ID.String() + "/reviews"
	body := map[string]any{"rating": 5, "comment": "Lovely"}

	if status, _ := do("POST", path, "", body); status != fiber.StatusUnauthorized {
		t.Errorf("anonymous review = %d, want 401", status)
	}
	if status, _ := do("POST", "/api/products/"+uuid.NewString()+"/reviews", token, body); status != fiber.StatusNotFound {
		t.Errorf("unknown product = %d, want 404", status)
	}
	status, out := do("POST", path, token, map[string]any{"rating": 5, "comment": "call me 555-123-4567"})
	if status != fiber.StatusBadRequest || !bytes.Contains(out, []byte("Contact information")) {
		t.Errorf("contact info = %d %s", status, out)
	}
	if status, out := do("POST", path, token, body); status != fiber.StatusCreated {
		t.Fatalf("create = %d %s", status, out)
	}
	status, out = do("POST", path, token, body)
	if status != fiber.StatusBadRequest || !bytes.Contains(out, []byte("already reviewed")) {
		t.Errorf("duplicate = %d %s", status, out)
	}

	status, out = do("GET", path, "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("list = %d", status)
	}
	var listed ProductReviews
	if err := json.Unmarshal(out, &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listed.TotalReviews != 1 || listed.AverageRating != 5 || listed.Reviews[0].User.Name != "ada" {
		t.Errorf("listed = %+v", listed)
	}
	if bytes.Contains(out, []byte("ada@x.com")) {
		t.Error("reviewer email leaked")
	}
}
