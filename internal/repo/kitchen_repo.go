package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// GetKitchenStatus returns the stored snapshot for a restaurant, or ErrNotFound.
func GetKitchenStatus(ctx context.Context, db *gorm.DB, restaurantID string) (*domain.KitchenStatus, error) {
	var ks domain.KitchenStatus
	if err := db.WithContext(ctx).First(&ks, "restaurant_id = ?", restaurantID).Error; err != nil {
		return nil, err
	}
	return &ks, nil
}

// PutKitchenStatus writes the whole snapshot row, replacing every column of
// an existing one.
func PutKitchenStatus(ctx context.Context, db *gorm.DB, ks *domain.KitchenStatus) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}},
			UpdateAll: true,
		}).
		Create(ks).Error
}
