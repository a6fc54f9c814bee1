package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

func TestCreateGetOrder_RoundTrip(t *testing.T) {
	db := newTestDB(t, &domain.Order{})
	ctx := context.Background()

	o := &domain.Order{
		RestaurantID:  "r1",
		Status:        domain.OrderCreated,
		Items:         []domain.OrderItem{{Name: "Pizza", Quantity: 2, Price: decimal.RequireFromString("20.00")}},
		Total:         decimal.RequireFromString("40.00"),
		PaymentMethod: domain.PaymentCash,
		ChangeFor:     decimal.NewNullDecimal(decimal.RequireFromString("50.00")),
	}
	if err := CreateOrder(ctx, db, o); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.ID == "" || o.CreatedAt.IsZero() || !o.UpdatedAt.Equal(o.CreatedAt) {
		t.Fatalf("expected id and timestamps, got %+v", o)
	}

	got, err := GetOrder(ctx, db, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 || !got.Total.Equal(o.Total) {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got.ChangeFor.Valid || !got.ChangeFor.Decimal.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("change_for lost: %+v", got.ChangeFor)
	}

	if _, err := GetRestaurantOrder(ctx, db, o.ID, "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign restaurant, got %v", err)
	}
	if _, err := GetOrder(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCountActiveOrders_OnlyPreparingAndReady(t *testing.T) {
	db := newTestDB(t, &domain.Order{})
	ctx := context.Background()

	statuses := []domain.OrderStatus{
		domain.OrderCreated, domain.OrderPreparing, domain.OrderPreparing,
		domain.OrderReadyForPickup, domain.OrderOutForDelivery, domain.OrderDelivered, domain.OrderCancelled,
	}
	for _, st := range statuses {
		if err := CreateOrder(ctx, db, &domain.Order{RestaurantID: "r1", Status: st, PaymentMethod: "card"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := CreateOrder(ctx, db, &domain.Order{RestaurantID: "r2", Status: domain.OrderPreparing, PaymentMethod: "card"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := CountActiveOrders(ctx, db, "r1")
	if err != nil || n != 3 {
		t.Fatalf("CountActiveOrders = (%d, %v); want (3, nil)", n, err)
	}
}

func TestUpdateOrderStatus_CompareAndSet(t *testing.T) {
	db := newTestDB(t, &domain.Order{})
	ctx := context.Background()

	o := &domain.Order{RestaurantID: "r1", Status: domain.OrderCreated, PaymentMethod: "card"}
	if err := CreateOrder(ctx, db, o); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := UpdateOrderStatus(ctx, db, o.ID, domain.OrderCreated, domain.OrderPreparing); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	// stale "from" no longer matches
	if err := UpdateOrderStatus(ctx, db, o.ID, domain.OrderCreated, domain.OrderCancelled); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on stale status, got %v", err)
	}
	got, _ := GetOrder(ctx, db, o.ID)
	if got.Status != domain.OrderPreparing {
		t.Fatalf("status = %s; want PREPARING", got.Status)
	}
}

func TestListOrdersPage_NewestFirstAndFilter(t *testing.T) {
	db := newTestDB(t, &domain.Order{})
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		st := domain.OrderCreated
		if i%2 == 0 {
			st = domain.OrderPreparing
		}
		o := &domain.Order{RestaurantID: "r1", Status: st, PaymentMethod: "card", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := CreateOrder(ctx, db, o); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, err := ListOrdersPage(ctx, db, "r1", "", 0, 2)
	if err != nil || len(page) != 2 {
		t.Fatalf("ListOrdersPage = (%d, %v)", len(page), err)
	}
	if !page[0].CreatedAt.After(page[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}

	prep, err := ListOrdersPage(ctx, db, "r1", domain.OrderPreparing, 0, 10)
	if err != nil || len(prep) != 3 {
		t.Fatalf("filtered = (%d, %v); want 3", len(prep), err)
	}
	n, err := CountOrders(ctx, db, "r1", domain.OrderPreparing)
	if err != nil || n != 3 {
		t.Fatalf("CountOrders = (%d, %v); want 3", n, err)
	}
}

func TestUpdateOrderNote_And_Dispatch(t *testing.T) {
	db := newTestDB(t, &domain.Order{})
	ctx := context.Background()

	a := &domain.Order{RestaurantID: "r1", Status: domain.OrderReadyForPickup, PaymentMethod: "card"}
	b := &domain.Order{RestaurantID: "r1", Status: domain.OrderReadyForPickup, PaymentMethod: "card"}
	for _, o := range []*domain.Order{a, b} {
		if err := CreateOrder(ctx, db, o); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := UpdateOrderNote(ctx, db, a.ID, "r1", "no onions"); err != nil {
		t.Fatalf("UpdateOrderNote: %v", err)
	}
	if err := UpdateOrderNote(ctx, db, a.ID, "r2", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign restaurant, got %v", err)
	}

	at := time.Now().UTC()
	n, err := DispatchOrders(ctx, db, []string{a.ID, b.ID}, "d1", at)
	if err != nil || n != 2 {
		t.Fatalf("DispatchOrders = (%d, %v)", n, err)
	}
	got, err := GetOrdersByIDs(ctx, db, []string{a.ID, b.ID})
	if err != nil || len(got) != 2 {
		t.Fatalf("GetOrdersByIDs = (%d, %v)", len(got), err)
	}
	for _, o := range got {
		if o.Status != domain.OrderOutForDelivery || o.DriverID == nil || *o.DriverID != "d1" || o.DispatchedAt == nil {
			t.Fatalf("order not dispatched: %+v", o)
		}
	}
	if got[0].ID == a.ID && got[0].Note != "no onions" {
		t.Fatalf("note lost: %+v", got[0])
	}

	empty, err := GetOrdersByIDs(ctx, db, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetOrdersByIDs(nil) = (%v, %v)", empty, err)
	}
}

func TestDispatchOrders_SkipsOrdersNotReady(t *testing.T) {
	db := newTestDB(t, &domain.Order{})
	ctx := context.Background()

	ready := &domain.Order{RestaurantID: "r1", Status: domain.OrderReadyForPickup, PaymentMethod: "card"}
	cancelled := &domain.Order{RestaurantID: "r1", Status: domain.OrderCancelled, PaymentMethod: "card"}
	delivered := &domain.Order{RestaurantID: "r1", Status: domain.OrderDelivered, PaymentMethod: "card"}
	for _, o := range []*domain.Order{ready, cancelled, delivered} {
		if err := CreateOrder(ctx, db, o); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, err := DispatchOrders(ctx, db, []string{ready.ID, cancelled.ID, delivered.ID}, "d1", time.Now().UTC())
	if err != nil || n != 1 {
		t.Fatalf("DispatchOrders = (%d, %v); want 1 row", n, err)
	}
	for _, o := range []*domain.Order{cancelled, delivered} {
		got, _ := GetOrder(ctx, db, o.ID)
		if got.Status != o.Status || got.DriverID != nil {
			t.Fatalf("terminal order %s touched: %+v", o.ID, got)
		}
	}
}
