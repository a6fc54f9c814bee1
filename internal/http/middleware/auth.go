// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file authenticates bearer tokens issued by the identity provider and
// publishes the verified subject under the "userID" context key, which the
// logger, rate limiter and idempotency validator all read.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-restaurant-ops/internal/auth"
)

// CtxUserID is the Gin context key holding the authenticated subject.
const CtxUserID = "userID"

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(CtxUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token.
//
//	401 {"code":"unauthorized"}   missing, malformed or badly signed token
//	401 {"code":"token_expired"}  well-formed token past its expiry
func Authenticate(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := v.Verify(auth.BearerToken(c.GetHeader("Authorization")))
		if err == nil {
			c.Set(CtxUserID, id.Subject)
			c.Next()
			return
		}

		code, msg := CodeUnauthorized, "authentication required"
		if errors.Is(err, auth.ErrExpiredToken) {
			code, msg = CodeTokenExpired, "token expired"
		}
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
		AbortWithError(c, http.StatusUnauthorized, code, msg)
	}
}
