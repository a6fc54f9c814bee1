// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order model.
//
// Functions follow the thin-repository approach used across this package: no
// business rules, only persistence and query composition. Status transitions
// are validated by the service layer; UpdateOrderStatus only performs a
// compare-and-set on the current value.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// CreateOrder inserts o, assigning an ID and UTC timestamps when unset.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = o.CreatedAt
	return db.WithContext(ctx).Create(o).Error
}

// GetOrder fetches an order by ID, or ErrNotFound.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetRestaurantOrder fetches an order by ID scoped to its restaurant, or
// ErrNotFound.
func GetRestaurantOrder(ctx context.Context, db *gorm.DB, id, restaurantID string) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrdersByIDs loads the given orders in any order.
func GetOrdersByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Order, error) {
	var out []domain.Order
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// CountOrders returns the number of orders for a restaurant, optionally
// filtered by status.
func CountOrders(ctx context.Context, db *gorm.DB, restaurantID string, status domain.OrderStatus) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.Order{}).Where("restaurant_id = ?", restaurantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

// ListOrdersPage returns orders of a restaurant, newest first.
func ListOrdersPage(ctx context.Context, db *gorm.DB, restaurantID string, status domain.OrderStatus, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	q := db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// CountActiveOrders counts orders of a restaurant that load the kitchen.
func CountActiveOrders(ctx context.Context, db *gorm.DB, restaurantID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Order{}).
		Where("restaurant_id = ? AND status IN ?", restaurantID, domain.ActiveOrderStatuses).
		Count(&n).Error
	return n, err
}

// UpdateOrderStatus moves an order from one status to another. It returns
// ErrNotFound when no row matched (missing order or status already changed).
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.OrderStatus) error {
	res := db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DispatchOrders marks the given READY_FOR_PICKUP orders OUT_FOR_DELIVERY
// for driverID and returns the number of rows touched. Orders in any other
// status are left alone.
func DispatchOrders(ctx context.Context, db *gorm.DB, ids []string, driverID string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.Order{}).
		Where("id IN ? AND status = ?", ids, domain.OrderReadyForPickup).
		Updates(map[string]any{
			"status":        domain.OrderOutForDelivery,
			"driver_id":     driverID,
			"dispatched_at": at,
			"updated_at":    at,
		})
	return res.RowsAffected, res.Error
}

// UpdateOrderNote replaces the free-text note of a restaurant's order.
func UpdateOrderNote(ctx context.Context, db *gorm.DB, id, restaurantID, note string) error {
	res := db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		Updates(map[string]any{"note": note, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
