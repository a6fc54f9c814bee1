// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// OrdersStats returns aggregate metadata for a restaurant's orders: the total
// number of rows and the maximum UpdatedAt timestamp among those rows.
//
// When the restaurant has no orders, the returned count is 0 and
// maxUpdatedAt is nil.
func OrdersStats(ctx context.Context, db *gorm.DB, restaurantID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Order{}).Where("restaurant_id = ?", restaurantID)
	return latest(q, "updated_at")
}

// PendingRoutesStats returns the number of routes waiting for a driver and
// the newest CreatedAt among them.
func PendingRoutesStats(ctx context.Context, db *gorm.DB) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.DeliveryRoute{}).Where("status = ?", domain.RoutePendingDriver)
	return latest(q, "created_at")
}

func latest(q *gorm.DB, column string) (int64, *time.Time, error) {
	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Order+limit instead of MAX(): SQLite returns MAX() of a datetime as TEXT.
	var row struct {
		At time.Time
	}
	if err := q.Session(&gorm.Session{}).Select(column + " AS at").Order(column + " DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.At, nil
}
