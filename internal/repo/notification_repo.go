package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// CreateNotification inserts n, assigning an ID and CreatedAt when unset.
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(n).Error
}

// ListNotifications returns a target's notifications, newest first.
func ListNotifications(ctx context.Context, db *gorm.DB, targetID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	q := db.WithContext(ctx).Where("target_id = ?", targetID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// SetNotificationRead toggles the read flag of a target's notification.
func SetNotificationRead(ctx context.Context, db *gorm.DB, targetID, id string, read bool) error {
	res := db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND target_id = ?", id, targetID).
		Update("read", read)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
