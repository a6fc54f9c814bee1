// Package services defines the business logic for orders, kitchen load,
// delivery dispatch, licensing, notifications and upstream gateways.
// This file centralizes the service-level error taxonomy so that callers can
// classify any failure with errors.Is.
//
// Specific errors wrap one of the taxonomy sentinels; anything that matches
// none of them is an internal failure. Translation into HTTP status codes is
// performed by the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Taxonomy sentinels.
var (
	// ErrUnauthenticated means no verified caller identity was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidArgument covers missing or malformed input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a state precondition was violated.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable means a required server secret or upstream is missing.
	ErrUnavailable = errors.New("service unavailable")

	// ErrRateLimited means the caller exhausted a shared call budget.
	ErrRateLimited = errors.New("rate limited")
)

// Specific errors.
var (
	ErrRouteAlreadyAccepted = fmt.Errorf("%w: route already accepted", ErrConflict)
	ErrRouteNotFound        = fmt.Errorf("%w: route not found", ErrNotFound)
	ErrOrderNotFound        = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification not found", ErrNotFound)
	ErrLicenseNotFound      = fmt.Errorf("%w: license not found", ErrNotFound)
	ErrIllegalTransition    = fmt.Errorf("%w: illegal status transition", ErrConflict)
	ErrOrderNotDispatchable = fmt.Errorf("%w: order not ready for dispatch", ErrConflict)
	ErrDispatchByRouteOnly  = fmt.Errorf("%w: orders go out for delivery through route acceptance", ErrConflict)
	ErrComplexItemsBlocked  = fmt.Errorf("%w: kitchen overloaded, complex items unavailable", ErrConflict)
	ErrSigningKeyMissing    = fmt.Errorf("%w: license signing key not configured", ErrUnavailable)
	ErrGeocoderMissing      = fmt.Errorf("%w: geocoder key not configured", ErrUnavailable)
	ErrBillingMissing       = fmt.Errorf("%w: billing token not configured", ErrUnavailable)
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}
