// Package services – KitchenMonitor
//
// KitchenMonitor is the kitchen load control loop. It reacts to committed
// order status changes, counts the restaurant's active orders and writes back
// a derived operating policy (KitchenStatus). The snapshot is a pure function
// of the active-order count and the restaurant's settings; it is always
// written as a whole row.
//
// The monitor runs off the write path: failures are logged and never reach
// the order mutation that triggered them.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/config"
	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
	"github.com/tbourn/go-restaurant-ops/internal/observability"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
)

// KitchenSettings are the thresholds and delivery estimates used to classify
// kitchen load.
type KitchenSettings struct {
	MaxPreparingOrders    int
	ThrottledDeliveryTime int
	BusyDeliveryTime      int
	NormalDeliveryTime    int
}

// KitchenSettingsFromConfig returns the service-wide defaults.
func KitchenSettingsFromConfig(c config.KitchenConfig) KitchenSettings {
	return KitchenSettings{
		MaxPreparingOrders:    c.MaxPreparingOrders,
		ThrottledDeliveryTime: c.ThrottledDeliveryTime,
		BusyDeliveryTime:      c.BusyDeliveryTime,
		NormalDeliveryTime:    c.NormalDeliveryTime,
	}
}

// forRestaurant applies the restaurant's non-zero overrides.
func (s KitchenSettings) forRestaurant(u *domain.User) KitchenSettings {
	if u == nil {
		return s
	}
	if u.MaxPreparingOrders > 0 {
		s.MaxPreparingOrders = u.MaxPreparingOrders
	}
	if u.ThrottledDeliveryTime > 0 {
		s.ThrottledDeliveryTime = u.ThrottledDeliveryTime
	}
	if u.NormalDeliveryTime > 0 {
		s.NormalDeliveryTime = u.NormalDeliveryTime
	}
	return s
}

func (s KitchenSettings) withDefaults() KitchenSettings {
	if s.MaxPreparingOrders <= 0 {
		s.MaxPreparingOrders = 15
	}
	if s.ThrottledDeliveryTime <= 0 {
		s.ThrottledDeliveryTime = 70
	}
	if s.BusyDeliveryTime <= 0 {
		s.BusyDeliveryTime = 55
	}
	if s.NormalDeliveryTime <= 0 {
		s.NormalDeliveryTime = 40
	}
	return s
}

// Classification is the policy derived from an active-order count.
type Classification struct {
	Level                 domain.ThrottleLevel
	EstimatedDeliveryTime int
	BlockComplexItems     bool
}

// Classify maps an active-order count to a load level:
//
//	count >= max           -> OVERLOADED (throttled estimate, complex items blocked)
//	count >= floor(0.7*max) -> BUSY (intermediate estimate)
//	otherwise              -> NORMAL (normal estimate)
//
// With max = 15 the boundaries are 10 and 15.
func Classify(count int, s KitchenSettings) Classification {
	s = s.withDefaults()
	busyAt := s.MaxPreparingOrders * 7 / 10
	switch {
	case count >= s.MaxPreparingOrders:
		return Classification{Level: domain.ThrottleOverloaded, EstimatedDeliveryTime: s.ThrottledDeliveryTime, BlockComplexItems: true}
	case count >= busyAt:
		return Classification{Level: domain.ThrottleBusy, EstimatedDeliveryTime: s.BusyDeliveryTime}
	default:
		return Classification{Level: domain.ThrottleNormal, EstimatedDeliveryTime: s.NormalDeliveryTime}
	}
}

// KitchenMonitor recomputes KitchenStatus on order status changes.
type KitchenMonitor struct {
	DB            *gorm.DB
	Notifications *NotificationService
	Publisher     events.Publisher
	Settings      KitchenSettings
	Printer       *message.Printer
	Now           func() time.Time

	// locks serializes recomputation per restaurant so the previous level
	// read for edge detection is the one this run replaces.
	locks sync.Map
}

// HandleOrderChange implements events.OrderHandler. Writes that leave the
// status unchanged, or carry no restaurant id, are ignored.
func (m *KitchenMonitor) HandleOrderChange(ctx context.Context, change events.OrderChange) {
	if !change.StatusChanged() {
		return
	}
	rid := change.RestaurantID()
	if rid == "" {
		return
	}
	if _, err := m.Recompute(ctx, rid); err != nil {
		log.Error().Err(err).Str("restaurant_id", rid).Msg("kitchen status recompute failed")
	}
}

// Recompute counts the restaurant's active orders, overwrites its snapshot
// and, when the level has just become OVERLOADED, emits one advisory.
func (m *KitchenMonitor) Recompute(ctx context.Context, restaurantID string) (*domain.KitchenStatus, error) {
	tr := otel.Tracer("services/KitchenMonitor")
	ctx, span := tr.Start(ctx, "Recompute",
		trace.WithAttributes(attribute.String("restaurant.id", restaurantID)),
	)
	defer span.End()

	mu := m.lockFor(restaurantID)
	mu.Lock()
	defer mu.Unlock()

	settings, err := m.settingsFor(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	count, err := repo.CountActiveOrders(ctx, m.DB, restaurantID)
	if err != nil {
		return nil, err
	}
	prev, err := repo.GetKitchenStatus(ctx, m.DB, restaurantID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	cl := Classify(int(count), settings)
	ks := &domain.KitchenStatus{
		RestaurantID:          restaurantID,
		ActiveOrders:          int(count),
		IsThrottled:           cl.Level != domain.ThrottleNormal,
		ThrottleLevel:         cl.Level,
		EstimatedDeliveryTime: cl.EstimatedDeliveryTime,
		BlockComplexItems:     cl.BlockComplexItems,
		LastUpdated:           m.now(),
	}
	if err := repo.PutKitchenStatus(ctx, m.DB, ks); err != nil {
		return nil, err
	}
	observability.KitchenRecomputations.WithLabelValues(string(cl.Level)).Inc()
	span.SetAttributes(
		attribute.Int("kitchen.active_orders", ks.ActiveOrders),
		attribute.String("kitchen.level", string(ks.ThrottleLevel)),
	)

	enteredOverload := cl.Level == domain.ThrottleOverloaded &&
		(prev == nil || prev.ThrottleLevel != domain.ThrottleOverloaded)
	if enteredOverload {
		m.notifyOverload(ctx, ks)
	}
	m.publish(ctx, ks)
	return ks, nil
}

// Status returns the stored snapshot, or the NORMAL snapshot a restaurant
// with no active orders would have.
func (m *KitchenMonitor) Status(ctx context.Context, restaurantID string) (*domain.KitchenStatus, error) {
	if restaurantID == "" {
		return nil, ErrUnauthenticated
	}
	ks, err := repo.GetKitchenStatus(ctx, m.DB, restaurantID)
	if err == nil {
		return ks, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	settings, err := m.settingsFor(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	cl := Classify(0, settings)
	return &domain.KitchenStatus{
		RestaurantID:          restaurantID,
		ThrottleLevel:         cl.Level,
		EstimatedDeliveryTime: cl.EstimatedDeliveryTime,
	}, nil
}

func (m *KitchenMonitor) settingsFor(ctx context.Context, restaurantID string) (KitchenSettings, error) {
	u, err := repo.GetUser(ctx, m.DB, restaurantID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return m.Settings, nil
	case err != nil:
		return KitchenSettings{}, err
	}
	return m.Settings.forRestaurant(u), nil
}

func (m *KitchenMonitor) notifyOverload(ctx context.Context, ks *domain.KitchenStatus) {
	if m.Notifications == nil {
		return
	}
	p := m.Printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	n := &domain.Notification{
		TargetID: ks.RestaurantID,
		Type:     domain.NotificationKitchenOverload,
		Title:    "Kitchen overloaded",
		Body: p.Sprintf("%d orders in progress. Delivery estimate raised to %d minutes and complex items paused.",
			ks.ActiveOrders, ks.EstimatedDeliveryTime),
		Data: map[string]any{
			"active_orders":           ks.ActiveOrders,
			"estimated_delivery_time": ks.EstimatedDeliveryTime,
		},
	}
	if err := m.Notifications.Emit(ctx, n); err != nil {
		log.Error().Err(err).Str("restaurant_id", ks.RestaurantID).Msg("overload notification failed")
	}
}

func (m *KitchenMonitor) publish(ctx context.Context, ks *domain.KitchenStatus) {
	if m.Publisher == nil {
		return
	}
	msg := events.Message{
		Type:       events.TypeKitchenStatus,
		Key:        ks.RestaurantID,
		OccurredAt: ks.LastUpdated,
		Payload:    ks,
	}
	if err := m.Publisher.Publish(ctx, msg); err != nil {
		log.Warn().Err(err).Str("restaurant_id", ks.RestaurantID).Msg("publish kitchen status failed")
	}
}

func (m *KitchenMonitor) lockFor(restaurantID string) *sync.Mutex {
	v, _ := m.locks.LoadOrStore(restaurantID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (m *KitchenMonitor) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}
