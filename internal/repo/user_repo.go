package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// GetUser fetches a user by ID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts u. Accounts are normally provisioned by the identity
// provider; this is used for seeding.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Plan == "" {
		u.Plan = "free"
	}
	return db.WithContext(ctx).Create(u).Error
}
