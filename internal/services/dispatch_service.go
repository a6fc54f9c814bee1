// Package services – DispatchService
//
// DispatchService assigns delivery routes to drivers. Accepting a route is a
// single transaction over the route and all of its member orders: the route
// is claimed with a compare-and-set on its status, then every member order
// is marked OUT_FOR_DELIVERY for the same driver. Any failure rolls the whole
// transaction back, so two drivers racing for one route end with exactly one
// winner and no order carries a driver that does not own the route. Only
// READY_FOR_PICKUP orders can be dispatched; a cancelled or delivered member
// aborts the accept with a conflict.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
	"github.com/tbourn/go-restaurant-ops/internal/observability"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
)

// AvailableRoutesLimit caps ListAvailableRoutes.
const AvailableRoutesLimit = 20

// DispatchService coordinates route acceptance.
type DispatchService struct {
	DB     *gorm.DB
	Events *events.Dispatcher
	Now    func() time.Time
}

// AcceptRoute binds the PENDING_DRIVER route batchID to driverID and
// dispatches its orders, all or nothing.
func (s *DispatchService) AcceptRoute(ctx context.Context, driverID, batchID string) (*domain.DeliveryRoute, error) {
	tr := otel.Tracer("services/DispatchService")
	ctx, span := tr.Start(ctx, "AcceptRoute",
		trace.WithAttributes(
			attribute.String("driver.id", driverID),
			attribute.String("route.id", batchID),
		),
	)
	defer span.End()

	if driverID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(batchID) == "" {
		return nil, invalid("batch id is required")
	}

	now := s.now()
	var (
		route  *domain.DeliveryRoute
		before []domain.Order
		after  []domain.Order
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := repo.ClaimRoute(ctx, tx, batchID, driverID, now)
		if err != nil {
			return err
		}
		if !claimed {
			if _, err := repo.GetRoute(ctx, tx, batchID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return ErrRouteNotFound
				}
				return err
			}
			return ErrRouteAlreadyAccepted
		}

		route, err = repo.GetRoute(ctx, tx, batchID)
		if err != nil {
			return err
		}
		ids := []string(route.OrderIDs)
		before, err = repo.GetOrdersByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		want := len(uniqueIDs(ids))
		if len(before) != want {
			return fmt.Errorf("route %s references %d orders, found %d", batchID, want, len(before))
		}
		for _, o := range before {
			if !domain.CanTransition(o.Status, domain.OrderOutForDelivery) {
				return fmt.Errorf("%w: order %s is %s", ErrOrderNotDispatchable, o.ID, o.Status)
			}
		}
		n, err := repo.DispatchOrders(ctx, tx, ids, driverID, now)
		if err != nil {
			return err
		}
		// An order cancelled between the read and the write is left behind by
		// the status guard in DispatchOrders.
		if n != int64(want) {
			return fmt.Errorf("%w: %d of %d orders on route %s changed", ErrOrderNotDispatchable, int64(want)-n, want, batchID)
		}
		after, err = repo.GetOrdersByIDs(ctx, tx, ids)
		return err
	})
	if err != nil {
		observability.RoutesAccepted.WithLabelValues(acceptResult(err)).Inc()
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "accept route failed")
		}
		return nil, err
	}
	observability.RoutesAccepted.WithLabelValues("accepted").Inc()

	log.Info().
		Str("route_id", route.ID).
		Str("driver_id", driverID).
		Int("orders", len(after)).
		Msg("route accepted")

	prev := make(map[string]domain.Order, len(before))
	for _, o := range before {
		prev[o.ID] = o
	}
	for i := range after {
		b := prev[after[i].ID]
		s.Events.Emit(ctx, events.OrderChange{Before: &b, After: &after[i]})
	}
	return route, nil
}

// ListAvailableRoutes returns up to AvailableRoutesLimit routes waiting for a
// driver, newest first.
func (s *DispatchService) ListAvailableRoutes(ctx context.Context) ([]domain.DeliveryRoute, error) {
	tr := otel.Tracer("services/DispatchService")
	ctx, span := tr.Start(ctx, "ListAvailableRoutes")
	defer span.End()

	return repo.ListPendingRoutes(ctx, s.DB, AvailableRoutesLimit)
}

func (s *DispatchService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func acceptResult(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func uniqueIDs(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
