// Package services – OrderService
//
// OrderService owns order placement and the order status state machine. Every
// committed write is handed to the event dispatcher as an OrderChange so the
// reactive handlers (kitchen monitor, notifier) can run after the fact.
//
// Placement honours the current kitchen policy: the estimate comes from the
// restaurant's KitchenStatus and complex items are refused while it blocks
// them. An Idempotency-Key makes placement safe to retry.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
)

const (
	maxOrderItems  = 100
	maxNoteRunes   = 1000
	defaultPayment = "card"
)

// OrderInput is the caller-supplied part of a new order.
type OrderInput struct {
	Items         []domain.OrderItem
	Source        string
	PaymentMethod string
	ChangeFor     *decimal.Decimal
	Note          string
}

// IdempotencyRef identifies a retry-safe request: the route it was sent to
// and the client's Idempotency-Key. A zero value disables replay.
type IdempotencyRef struct {
	Scope string
	Key   string
}

func (r IdempotencyRef) enabled() bool { return r.Scope != "" && r.Key != "" }

// OrderService coordinates order persistence and change events.
type OrderService struct {
	DB             *gorm.DB
	Events         *events.Dispatcher
	Kitchen        *KitchenMonitor
	IdempotencyTTL time.Duration
}

// Create validates in and places a new CREATED order for restaurantID.
// It returns replay=true when idem matched a previous placement, in which
// case the stored order is returned and nothing is written.
func (s *OrderService) Create(ctx context.Context, restaurantID string, in OrderInput, idem IdempotencyRef) (order *domain.Order, replay bool, err error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("restaurant.id", restaurantID),
			attribute.Int("items", len(in.Items)),
		),
	)
	defer span.End()

	if restaurantID == "" {
		return nil, false, ErrUnauthenticated
	}

	if idem.enabled() {
		if prev, err := s.replay(ctx, restaurantID, idem); err != nil || prev != nil {
			return prev, prev != nil, err
		}
	}

	o, err := buildOrder(restaurantID, in)
	if err != nil {
		return nil, false, err
	}

	if s.Kitchen != nil {
		ks, err := s.Kitchen.Status(ctx, restaurantID)
		if err != nil {
			return nil, false, err
		}
		if ks.BlockComplexItems && hasComplexItem(o.Items) {
			return nil, false, ErrComplexItemsBlocked
		}
		o.EstimatedMinutes = ks.EstimatedDeliveryTime
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateOrder(ctx, tx, o); err != nil {
			return err
		}
		if idem.enabled() {
			if _, err := repo.CreateIdempotency(ctx, tx, restaurantID, idem.Scope, idem.Key, o.ID, 201, s.ttl()); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent retry won the race; serve its order.
		prev, rerr := s.replay(ctx, restaurantID, idem)
		if rerr != nil {
			return nil, false, rerr
		}
		if prev != nil {
			return prev, true, nil
		}
	}
	if err != nil {
		return nil, false, err
	}

	after := *o
	s.Events.Emit(ctx, events.OrderChange{After: &after})
	span.SetAttributes(attribute.String("order.id", o.ID))
	return o, false, nil
}

// UpdateStatus moves an order along the status graph.
func (s *OrderService) UpdateStatus(ctx context.Context, restaurantID, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.String("restaurant.id", restaurantID),
			attribute.String("order.id", orderID),
			attribute.String("order.status", string(status)),
		),
	)
	defer span.End()

	if restaurantID == "" {
		return nil, ErrUnauthenticated
	}
	if !status.Valid() {
		return nil, invalid(fmt.Sprintf("unknown status %q", status))
	}
	// OUT_FOR_DELIVERY carries a driver, which only route acceptance assigns.
	if status == domain.OrderOutForDelivery {
		return nil, ErrDispatchByRouteOnly
	}

	before, err := s.get(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(before.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, before.Status, status)
	}

	if err := repo.UpdateOrderStatus(ctx, s.DB, orderID, before.Status, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: order changed concurrently", ErrConflict)
		}
		return nil, err
	}

	after, err := s.get(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	s.Events.Emit(ctx, events.OrderChange{Before: before, After: cloneOrder(after)})
	return after, nil
}

// UpdateNote replaces the order's free-text note. The status is untouched,
// so the emitted change does not trigger a kitchen recompute.
func (s *OrderService) UpdateNote(ctx context.Context, restaurantID, orderID, note string) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "UpdateNote",
		trace.WithAttributes(
			attribute.String("restaurant.id", restaurantID),
			attribute.String("order.id", orderID),
		),
	)
	defer span.End()

	if restaurantID == "" {
		return nil, ErrUnauthenticated
	}
	note = strings.TrimSpace(note)
	if len([]rune(note)) > maxNoteRunes {
		return nil, invalid("note too long")
	}

	before, err := s.get(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateOrderNote(ctx, s.DB, orderID, restaurantID, note); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	after, err := s.get(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	s.Events.Emit(ctx, events.OrderChange{Before: before, After: cloneOrder(after)})
	return after, nil
}

// Get returns one of the restaurant's orders.
func (s *OrderService) Get(ctx context.Context, restaurantID, orderID string) (*domain.Order, error) {
	if restaurantID == "" {
		return nil, ErrUnauthenticated
	}
	return s.get(ctx, restaurantID, orderID)
}

// ListPage returns a page of the restaurant's orders, newest first, and the
// total count. status filters when non-empty.
func (s *OrderService) ListPage(ctx context.Context, restaurantID string, status domain.OrderStatus, page, pageSize int) ([]domain.Order, int64, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("restaurant.id", restaurantID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if restaurantID == "" {
		return nil, 0, ErrUnauthenticated
	}
	if status != "" && !status.Valid() {
		return nil, 0, invalid(fmt.Sprintf("unknown status %q", status))
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountOrders(ctx, s.DB, restaurantID, status)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}
	items, err := repo.ListOrdersPage(ctx, s.DB, restaurantID, status, offset, pageSize)
	return items, total, err
}

func (s *OrderService) get(ctx context.Context, restaurantID, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, invalid("order id is required")
	}
	o, err := repo.GetRestaurantOrder(ctx, s.DB, orderID, restaurantID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) replay(ctx context.Context, restaurantID string, idem IdempotencyRef) (*domain.Order, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, restaurantID, idem.Scope, idem.Key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o, err := repo.GetOrder(ctx, s.DB, rec.ResourceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return o, err
}

func (s *OrderService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

func buildOrder(restaurantID string, in OrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, invalid("at least one item is required")
	}
	if len(in.Items) > maxOrderItems {
		return nil, invalid("too many items")
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for i, it := range in.Items {
		it.Name = strings.TrimSpace(it.Name)
		switch {
		case it.Name == "":
			return nil, invalid(fmt.Sprintf("item %d: name is required", i))
		case it.Quantity < 1:
			return nil, invalid(fmt.Sprintf("item %d: quantity must be at least 1", i))
		case it.Price.IsNegative():
			return nil, invalid(fmt.Sprintf("item %d: price must not be negative", i))
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, it)
	}

	payment := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if payment == "" {
		payment = defaultPayment
	}

	o := &domain.Order{
		RestaurantID:  restaurantID,
		Status:        domain.OrderCreated,
		Items:         items,
		Total:         total.Round(2),
		Source:        strings.TrimSpace(in.Source),
		PaymentMethod: payment,
		Note:          strings.TrimSpace(in.Note),
	}
	if in.ChangeFor != nil {
		if in.ChangeFor.IsNegative() {
			return nil, invalid("change_for must not be negative")
		}
		o.ChangeFor = decimal.NewNullDecimal(in.ChangeFor.Round(2))
	}
	return o, nil
}

func hasComplexItem(items []domain.OrderItem) bool {
	for _, it := range items {
		if it.Complex {
			return true
		}
	}
	return false
}

func cloneOrder(o *domain.Order) *domain.Order {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}
