package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// HitRateCounter atomically increments the fixed-window counter for key and
// returns the hit count of the current window including this call.
//
// Windows are aligned to multiples of window since the Unix epoch; rows carry
// an expiry so PurgeRateCounters can drop them.
func HitRateCounter(ctx context.Context, db *gorm.DB, key string, window time.Duration, now time.Time) (int64, error) {
	start := now.Truncate(window).Unix()
	rec := &domain.RateCounter{
		BucketKey:   key,
		WindowStart: start,
		Hits:        1,
		ExpiresAt:   time.Unix(start, 0).UTC().Add(window),
	}

	var hits int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bucket_key"}, {Name: "window_start"}},
			DoUpdates: clause.Assignments(map[string]any{"hits": gorm.Expr("rate_counters.hits + 1")}),
		}).Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&domain.RateCounter{}).
			Select("hits").
			Where("bucket_key = ? AND window_start = ?", key, start).
			Scan(&hits).Error
	})
	return hits, err
}

// PurgeRateCounters deletes windows that have ended.
func PurgeRateCounters(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.RateCounter{})
	return res.RowsAffected, res.Error
}
