package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// RecordLicenseIssuance stores the holder and expiry of a freshly signed token.
func RecordLicenseIssuance(ctx context.Context, db *gorm.DB, rec *domain.LicenseIssuance) error {
	return db.WithContext(ctx).Create(rec).Error
}

// GetLicenseIssuance returns the issuance record for jti, or ErrNotFound.
func GetLicenseIssuance(ctx context.Context, db *gorm.DB, jti string) (*domain.LicenseIssuance, error) {
	var rec domain.LicenseIssuance
	err := db.WithContext(ctx).First(&rec, "token_id = ?", jti).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RevokeLicense records jti as revoked. Revoking twice keeps the first record.
func RevokeLicense(ctx context.Context, db *gorm.DB, jti, subject, reason string, at time.Time) error {
	rec := &domain.LicenseRevocation{TokenID: jti, Subject: subject, Reason: reason, RevokedAt: at}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec).Error
}

// IsLicenseRevoked reports whether jti is on the denylist.
func IsLicenseRevoked(ctx context.Context, db *gorm.DB, jti string) (bool, error) {
	var rec domain.LicenseRevocation
	err := db.WithContext(ctx).Select("token_id").First(&rec, "token_id = ?", jti).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
