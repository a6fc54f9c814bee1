// Package services – AddressService
//
// AddressService validates delivery addresses against the geocoder. Calls are
// budgeted per caller with a fixed-window counter kept in the shared record
// store, so the limit holds across server instances.
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

	"github.com/tbourn/go-restaurant-ops/internal/geocode"
	"github.com/tbourn/go-restaurant-ops/internal/observability"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
)

// Geocoder resolves addresses; *geocode.Client implements it.
type Geocoder interface {
	Lookup(ctx context.Context, addr geocode.Address) (*geocode.Result, error)
}

// AddressService validates addresses for a caller.
type AddressService struct {
	DB       *gorm.DB
	Geocoder Geocoder
	Limit    int
	Window   time.Duration
	Now      func() time.Time
}

// Validate checks addr for caller. Invalid addresses are a successful call
// with Valid=false and a reason.
func (s *AddressService) Validate(ctx context.Context, caller string, addr geocode.Address) (*geocode.Result, error) {
	tr := otel.Tracer("services/AddressService")
	ctx, span := tr.Start(ctx, "Validate",
		trace.WithAttributes(attribute.String("user.id", caller)),
	)
	defer span.End()

	if strings.TrimSpace(caller) == "" {
		return nil, ErrUnauthenticated
	}
	addr.Street = strings.TrimSpace(addr.Street)
	addr.Number = strings.TrimSpace(addr.Number)
	addr.ZipCode = strings.TrimSpace(addr.ZipCode)
	if addr.Street == "" || addr.Number == "" || addr.ZipCode == "" {
		observability.AddressValidations.WithLabelValues("bad_request").Inc()
		return nil, invalid("street, number and zipCode are required")
	}

	if err := s.take(ctx, caller); err != nil {
		return nil, err
	}

	res, err := s.Geocoder.Lookup(ctx, addr)
	switch {
	case errors.Is(err, geocode.ErrNoAPIKey):
		observability.AddressValidations.WithLabelValues("unavailable").Inc()
		return nil, ErrGeocoderMissing
	case err != nil:
		observability.AddressValidations.WithLabelValues("error").Inc()
		return nil, err
	}

	if res.Valid {
		observability.AddressValidations.WithLabelValues("valid").Inc()
	} else {
		observability.AddressValidations.WithLabelValues("invalid").Inc()
	}
	span.SetAttributes(attribute.Bool("address.valid", res.Valid))
	return res, nil
}

// take consumes one call from caller's window. A counter failure lets the
// call through.
func (s *AddressService) take(ctx context.Context, caller string) error {
	if s.Limit <= 0 || s.Window <= 0 || s.DB == nil {
		return nil
	}
	hits, err := repo.HitRateCounter(ctx, s.DB, "address:"+caller, s.Window, s.now())
	if err != nil {
		log.Warn().Err(err).Str("caller", caller).Msg("address rate counter unavailable")
		return nil
	}
	if hits > int64(s.Limit) {
		observability.AddressValidations.WithLabelValues("rate_limited").Inc()
		return ErrRateLimited
	}
	return nil
}

func (s *AddressService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
