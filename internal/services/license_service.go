// Package services – LicenseService
//
// LicenseService issues entitlement tokens. The plan is always re-read from
// the system of record for the authenticated subject; nothing in the request
// can influence it. Issuance fails closed when no signing key is configured.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/license"
	"github.com/tbourn/go-restaurant-ops/internal/observability"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
)

// IssuedLicense is what the client receives: the token plus the plan and
// expiry so it does not have to parse the token to react.
type IssuedLicense struct {
	Token     string
	Plan      string
	PlanName  string
	Features  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

// LicenseService signs entitlement tokens and manages revocations.
type LicenseService struct {
	DB     *gorm.DB
	Signer *license.Signer // nil when no key is configured
}

// Issue mints a token for subject on the plan stored for that user.
func (s *LicenseService) Issue(ctx context.Context, subject string) (*IssuedLicense, error) {
	tr := otel.Tracer("services/LicenseService")
	ctx, span := tr.Start(ctx, "Issue",
		trace.WithAttributes(attribute.String("user.id", subject)),
	)
	defer span.End()

	if strings.TrimSpace(subject) == "" {
		return nil, ErrUnauthenticated
	}

	u, err := repo.GetUser(ctx, s.DB, subject)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	token, claims, err := s.Signer.Sign(subject, u.Plan)
	if errors.Is(err, license.ErrNoSigningKey) {
		return nil, ErrSigningKeyMissing
	}
	if err != nil {
		return nil, err
	}

	// A token nobody can revoke is not handed out.
	rec := &domain.LicenseIssuance{
		TokenID:   claims.ID,
		Subject:   subject,
		Plan:      claims.Plan,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := repo.RecordLicenseIssuance(ctx, s.DB, rec); err != nil {
		return nil, err
	}

	observability.LicensesIssued.WithLabelValues(claims.Plan).Inc()
	log.Info().
		Str("subject", subject).
		Str("plan", claims.Plan).
		Str("jti", claims.ID).
		Time("expires_at", claims.ExpiresAt.Time).
		Msg("license issued")

	return &IssuedLicense{
		Token:     token,
		Plan:      claims.Plan,
		PlanName:  license.DisplayName(claims.Plan),
		Features:  claims.Features,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		TokenID:   claims.ID,
	}, nil
}

// Revoke adds jti to the denylist. Only the subject the token was issued to
// may revoke it; any other caller gets ErrLicenseNotFound, the same answer as
// for a jti that was never issued.
func (s *LicenseService) Revoke(ctx context.Context, subject, jti, reason string) error {
	tr := otel.Tracer("services/LicenseService")
	ctx, span := tr.Start(ctx, "Revoke",
		trace.WithAttributes(
			attribute.String("user.id", subject),
			attribute.String("license.jti", jti),
		),
	)
	defer span.End()

	if strings.TrimSpace(subject) == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(jti) == "" {
		return invalid("token id is required")
	}
	issued, err := repo.GetLicenseIssuance(ctx, s.DB, jti)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrLicenseNotFound
	}
	if err != nil {
		return err
	}
	if issued.Subject != subject {
		log.Warn().Str("subject", subject).Str("jti", jti).Msg("revoke of foreign license refused")
		return ErrLicenseNotFound
	}
	if err := repo.RevokeLicense(ctx, s.DB, jti, subject, strings.TrimSpace(reason), time.Now().UTC()); err != nil {
		return err
	}
	log.Info().Str("subject", subject).Str("jti", jti).Msg("license revoked")
	return nil
}

// IsRevoked implements license.RevocationChecker against the local denylist.
func (s *LicenseService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, invalid("token id is required")
	}
	return repo.IsLicenseRevoked(ctx, s.DB, jti)
}

var _ license.RevocationChecker = (*LicenseService)(nil)
