// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for delivery routes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// CreateRoute inserts a PENDING_DRIVER route. Routes are normally planned
// upstream; this is used for seeding.
func CreateRoute(ctx context.Context, db *gorm.DB, r *domain.DeliveryRoute) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = domain.RoutePendingDriver
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// GetRoute fetches a route by ID, or ErrNotFound.
func GetRoute(ctx context.Context, db *gorm.DB, id string) (*domain.DeliveryRoute, error) {
	var r domain.DeliveryRoute
	if err := db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ClaimRoute assigns a PENDING_DRIVER route to driverID. It reports false
// when the route was not pending (or does not exist); the caller decides
// which by re-reading inside the same transaction.
func ClaimRoute(ctx context.Context, db *gorm.DB, id, driverID string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.DeliveryRoute{}).
		Where("id = ? AND status = ?", id, domain.RoutePendingDriver).
		Updates(map[string]any{
			"status":      domain.RouteAssigned,
			"driver_id":   driverID,
			"assigned_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListPendingRoutes returns routes waiting for a driver, newest first.
func ListPendingRoutes(ctx context.Context, db *gorm.DB, limit int) ([]domain.DeliveryRoute, error) {
	var out []domain.DeliveryRoute
	err := db.WithContext(ctx).
		Where("status = ?", domain.RoutePendingDriver).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
