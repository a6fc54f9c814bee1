// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` and `failErr()` helpers in this package). These codes give clients a
// stable, machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes mirror common HTTP status semantics.
//   - Codes that middleware also produces are taken from the middleware package,
//     which additionally owns token_expired and bad_idempotency_key.
//
// Example response:
//   {
//     "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//     "code": "conflict",
//     "message": "route already accepted"
//   }

package handlers

import "github.com/tbourn/go-restaurant-ops/internal/http/middleware"

const (
	ErrCodeBadRequest   = middleware.CodeBadRequest
	ErrCodeUnauthorized = middleware.CodeUnauthorized
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = middleware.CodeRateLimited
	ErrCodeUnavailable  = "service_unavailable"
	ErrCodeInternal     = middleware.CodeInternal

	ErrCodeMethodNotAllowed = "method_not_allowed"
)
