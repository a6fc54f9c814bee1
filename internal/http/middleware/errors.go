// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the error codes and envelope shared by middleware that
// rejects requests before they reach a handler. The handlers package reuses
// the same codes, so a client sees one taxonomy whichever layer answered.
package middleware

import "github.com/gin-gonic/gin"

// Error codes produced by middleware.
const (
	CodeBadRequest        = "bad_request"
	CodeBadIdempotencyKey = "bad_idempotency_key"
	CodeUnauthorized      = "unauthorized"
	CodeTokenExpired      = "token_expired"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal_error"
)

// ErrorBody is the JSON error envelope written by every layer.
type ErrorBody struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// AbortWithError stops the chain and writes the envelope, echoing the request
// id already set on the response.
func AbortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		RequestID: c.Writer.Header().Get(requestIDHeader),
		Code:      code,
		Message:   msg,
	})
}
