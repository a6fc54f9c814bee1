package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
)

func cashOrder(id, total, changeFor string) *domain.Order {
	o := &domain.Order{
		ID:            id,
		RestaurantID:  "r1",
		Status:        domain.OrderCreated,
		Items:         []domain.OrderItem{item("pizza", 1, total)},
		Total:         decimal.RequireFromString(total),
		PaymentMethod: domain.PaymentCash,
	}
	if changeFor != "" {
		o.ChangeFor = decimal.NewNullDecimal(decimal.RequireFromString(changeFor))
	}
	return o
}

func TestCashChange(t *testing.T) {
	cases := []struct {
		name   string
		order  *domain.Order
		change string
		due    bool
	}{
		{"change due", cashOrder("a", "47.50", "50.00"), "2.50", true},
		{"exact amount", cashOrder("b", "47.50", "47.50"), "0", false},
		{"short", cashOrder("c", "47.50", "40.00"), "-7.5", false},
		{"no change_for", cashOrder("d", "47.50", ""), "0", false},
		{"card", func() *domain.Order { o := cashOrder("e", "10", "20"); o.PaymentMethod = "card"; return o }(), "0", false},
		{"nil", nil, "0", false},
	}
	for _, tc := range cases {
		got, due := CashChange(tc.order)
		if due != tc.due || !got.Equal(decimal.RequireFromString(tc.change)) {
			t.Errorf("%s: CashChange = (%s, %v), want (%s, %v)", tc.name, got, due, tc.change, tc.due)
		}
	}
}

func TestOrderNotifier_CashChangeReminder(t *testing.T) {
	db := newServiceDB(t)
	n := NewOrderNotifier(&NotificationService{DB: db}, "pt-BR", "brl")

	n.HandleOrderChange(context.Background(), events.OrderChange{After: cashOrder("o1", "47.50", "50.00")})

	if got := len(notificationsOf(t, db, "r1", domain.NotificationNewOrder)); got != 1 {
		t.Fatalf("NEW_ORDER = %d, want 1", got)
	}
	cc := notificationsOf(t, db, "r1", domain.NotificationCashChange)
	if len(cc) != 1 {
		t.Fatalf("CASH_CHANGE = %d, want 1", len(cc))
	}
	if cc[0].Data["change"] != "2.50" || cc[0].Data["order_id"] != "o1" {
		t.Fatalf("data = %v", cc[0].Data)
	}
	if cc[0].Body == "" {
		t.Fatal("body must be rendered")
	}
}

func TestOrderNotifier_NoReminderForExactCash(t *testing.T) {
	db := newServiceDB(t)
	n := NewOrderNotifier(&NotificationService{DB: db}, "en-US", "USD")

	n.HandleOrderChange(context.Background(), events.OrderChange{After: cashOrder("o1", "47.50", "47.50")})

	if got := len(notificationsOf(t, db, "r1", domain.NotificationCashChange)); got != 0 {
		t.Fatalf("CASH_CHANGE = %d, want 0", got)
	}
	newOrders := notificationsOf(t, db, "r1", domain.NotificationNewOrder)
	if len(newOrders) != 1 || newOrders[0].Data["total"] != "47.50" {
		t.Fatalf("NEW_ORDER = %+v", newOrders)
	}
}

func TestOrderNotifier_IgnoresUpdates(t *testing.T) {
	db := newServiceDB(t)
	n := NewOrderNotifier(&NotificationService{DB: db}, "", "")

	o := cashOrder("o1", "10", "20")
	n.HandleOrderChange(context.Background(), events.OrderChange{Before: o, After: o})

	var count int64
	db.Model(&domain.Notification{}).Count(&count)
	if count != 0 {
		t.Fatalf("updates must not notify, got %d", count)
	}
}

func TestOrderNotifier_NoRestaurantIsNoOp(t *testing.T) {
	db := newServiceDB(t)
	n := NewOrderNotifier(&NotificationService{DB: db}, "en-US", "USD")

	o := cashOrder("o1", "10", "20")
	o.RestaurantID = ""
	n.HandleOrderChange(context.Background(), events.OrderChange{After: o})

	var count int64
	db.Model(&domain.Notification{}).Count(&count)
	if count != 0 {
		t.Fatalf("order without restaurant must not notify, got %d", count)
	}
}

func TestOrderNotifier_StoreErrorIsLoggedAndSwallowed(t *testing.T) {
	db := newServiceDB(t)
	n := NewOrderNotifier(&NotificationService{DB: db}, "en-US", "USD")
	logs := captureLog(t)
	failTable(t, db, "create", "notifications", errors.New("database is locked"))

	n.HandleOrderChange(context.Background(), events.OrderChange{After: cashOrder("o1", "47.50", "50.00")})

	out := logs.String()
	for _, msg := range []string{"new order notification failed", "cash change notification failed"} {
		if !strings.Contains(out, msg) {
			t.Fatalf("missing %q in logs: %s", msg, out)
		}
	}
	var count int64
	if err := db.Model(&domain.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("notifications = %d; want 0", count)
	}
}

func TestNewOrderNotifier_Fallbacks(t *testing.T) {
	n := NewOrderNotifier(nil, "not a locale!!", "???")
	if n.Currency.String() != "USD" || n.Printer == nil {
		t.Fatalf("fallbacks not applied: %+v", n)
	}
}
