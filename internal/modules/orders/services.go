package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/catalog"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

const (
	maxLines       = 100
	maxQuantity    = 1000
	notifyTimeout  = 30 * time.Second
	paymentDefault = "simulated"
)

// ProductLookup resolves order lines against the catalog.
type ProductLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type OrderService struct {
	store     Store
	products  ProductLookup
	activity  activity.Recorder
	mailer    mailer.Sender
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time

	notifications sync.WaitGroup
}

func NewOrderService(
	store Store,
	products ProductLookup,
	recorder activity.Recorder,
	sender mailer.Sender,
	publisher events.Publisher,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		store:     store,
		products:  products,
		activity:  recorder,
		mailer:    sender,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// Place records a paid order for buyer. Prices and names come from the
// catalog at placement time; the total is their sum. Stock is neither checked
// nor decremented, so concurrent buyers can oversell a product.
func (s *OrderService) Place(ctx context.Context, buyer *models.User, in PlaceOrderInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, &services.ValidationError{Msg: "No order items"}
	}
	if len(in.Items) > maxLines {
		return nil, &services.ValidationError{Msg: fmt.Sprintf("at most %d order lines are allowed", maxLines)}
	}
	addr := ShippingAddress{
		Address: strings.TrimSpace(in.ShippingAddress.Address),
		City:    strings.TrimSpace(in.ShippingAddress.City),
		Country: strings.TrimSpace(in.ShippingAddress.Country),
	}
	if addr.Address == "" || addr.City == "" || addr.Country == "" {
		return nil, &services.ValidationError{Msg: "shipping address, city and country are required"}
	}
	payment := strings.TrimSpace(in.PaymentMethod)
	if payment == "" {
		payment = paymentDefault
	}

	items := make([]OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for i, line := range in.Items {
		if line.Quantity < 1 || line.Quantity > maxQuantity {
			return nil, &services.ValidationError{Msg: fmt.Sprintf("line %d: quantity must be between 1 and %d", i+1, maxQuantity)}
		}
		p, err := s.products.Get(ctx, line.Product)
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, &services.ValidationError{Msg: fmt.Sprintf("line %d: product %s does not exist", i+1, line.Product)}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		items = append(items, OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Image:     p.ImageURL,
			Price:     p.Price,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	paidAt := s.now().UTC()
	order := &Order{
		UserID:          buyer.ID,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   payment,
		TotalPrice:      total.Round(2),
		IsPaid:          true,
		PaidAt:          &paidAt,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.activity.Record(activity.Event{
		UserID:   &buyer.ID,
		Action:   models.ActionPlaceOrder,
		TargetID: &order.ID,
		Details: map[string]interface{}{
			"total_price": order.TotalPrice.StringFixed(2),
			"item_count":  len(order.Items),
		},
	})
	s.metrics.OrderPlaced()
	s.notify(*order, buyer.Name, buyer.Email)
	return order, nil
}

// notify publishes order.placed and mails the confirmation in the background.
// Both are best-effort; failures are logged and counted.
func (s *OrderService) notify(order Order, name, email string) {
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("order notification panicked", "order_id", order.ID, "error", fmt.Sprint(r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, events.KeyOrderPlaced, orderPlacedEvent(order)); err != nil {
			slog.Error("failed to publish order event", "order_id", order.ID, "error", err)
		}

		lines := make([]mailer.OrderLine, 0, len(order.Items))
		for _, it := range order.Items {
			lines = append(lines, mailer.OrderLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price.StringFixed(2)})
		}
		msg := mailer.OrderConfirmationMessage(email, name, order.ID.String(), order.TotalPrice.StringFixed(2), lines)
		err := s.mailer.Send(ctx, msg)
		s.metrics.EmailSent("order_confirmation", err)
		if err != nil {
			slog.Error("failed to send order confirmation", "order_id", order.ID, "error", err)
		}
	}()
}

type orderPlacedPayload struct {
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	TotalPrice string    `json:"total_price"`
	ItemCount  int       `json:"item_count"`
	PlacedAt   time.Time `json:"placed_at"`
}

func orderPlacedEvent(o Order) orderPlacedPayload {
	return orderPlacedPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice.StringFixed(2),
		ItemCount:  len(o.Items),
		PlacedAt:   o.CreatedAt,
	}
}

func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Stats summarizes all orders. The average is rounded to two decimals and is
// zero when there are no orders.
func (s *OrderService) Stats(ctx context.Context) (*Stats, error) {
	count, paid, sales, err := s.store.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	avg := decimal.Zero
	if count > 0 {
		avg = sales.Div(decimal.NewFromInt(count))
	}
	return &Stats{
		TotalOrders:       count,
		TotalSales:        sales.StringFixed(2),
		PaidOrders:        paid,
		AverageOrderValue: avg.StringFixed(2),
	}, nil
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (s *OrderService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
