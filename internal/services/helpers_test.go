package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
)

// newServiceDB opens a private in-memory database with the full schema.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// captureLog redirects the global logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

// failTable makes every statement of kind on table fail with err until the
// test ends.
func failTable(t *testing.T, db *gorm.DB, kind, table string, err error) {
	t.Helper()
	name := "test:fail_" + kind + "_" + table
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	}
	var regErr error
	switch kind {
	case "query":
		regErr = db.Callback().Query().Before("gorm:query").Register(name, fail)
		t.Cleanup(func() { _ = db.Callback().Query().Remove(name) })
	case "create":
		regErr = db.Callback().Create().Before("gorm:create").Register(name, fail)
		t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
	default:
		t.Fatalf("failTable: unknown kind %q", kind)
	}
	if regErr != nil {
		t.Fatalf("register callback: %v", regErr)
	}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func item(name string, qty int, price string) domain.OrderItem {
	return domain.OrderItem{Name: name, Quantity: qty, Price: decimal.RequireFromString(price)}
}

// seedOrders inserts n orders for rid in the given status.
func seedOrders(t *testing.T, db *gorm.DB, rid string, status domain.OrderStatus, n int) []*domain.Order {
	t.Helper()
	out := make([]*domain.Order, 0, n)
	for i := 0; i < n; i++ {
		o := &domain.Order{
			RestaurantID:  rid,
			Status:        status,
			Items:         []domain.OrderItem{item("pizza", 1, "10.00")},
			Total:         decimal.RequireFromString("10.00"),
			PaymentMethod: "card",
		}
		if err := repo.CreateOrder(context.Background(), db, o); err != nil {
			t.Fatalf("seed order: %v", err)
		}
		out = append(out, o)
	}
	return out
}

// recordingPublisher captures published messages.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []events.Message
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, m events.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Type
	}
	return out
}

func notificationsOf(t *testing.T, db *gorm.DB, target string, typ domain.NotificationType) []domain.Notification {
	t.Helper()
	var ns []domain.Notification
	if err := db.Where("target_id = ? AND type = ?", target, typ).Find(&ns).Error; err != nil {
		t.Fatalf("query notifications: %v", err)
	}
	return ns
}
