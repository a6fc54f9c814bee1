package license

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification errors.
var (
	ErrInvalidToken = errors.New("invalid license token")
	ErrExpired      = errors.New("license token expired")
	ErrRevoked      = errors.New("license token revoked")
)

// RevocationChecker answers whether a token id has been revoked. It is an
// online check; errors mean "unknown" and do not invalidate a token.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Verifier checks tokens against the issuer's public key.
type Verifier struct {
	PublicKey   ed25519.PublicKey
	Issuer      string
	Audience    string
	Now         func() time.Time
	Revocations RevocationChecker
}

// NewVerifier parses a PKIX PEM encoded Ed25519 public key.
func NewVerifier(pemKey []byte, issuer, audience string) (*Verifier, error) {
	k, err := jwt.ParseEdPublicKeyFromPEM(pemKey)
	if err != nil {
		return nil, err
	}
	pub, ok := k.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("not an Ed25519 public key")
	}
	return &Verifier{PublicKey: pub, Issuer: issuer, Audience: audience}, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry
// (valid while now < exp). It does not consult revocations.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if len(v.PublicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: no public key", ErrInvalidToken)
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.PublicKey, nil
	}, opts...)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// Entitlements verifies token and returns the granted features. Any failure
// yields the lowest tier with Valid=false. Features come from the signed
// plan, never from a cached value.
func (v *Verifier) Entitlements(ctx context.Context, token string) Entitlement {
	claims, err := v.Verify(token)
	if err != nil {
		return lowestTier(err.Error())
	}
	if v.Revocations != nil && claims.ID != "" {
		// Offline or erroring checkers leave the signed result standing.
		if revoked, rerr := v.Revocations.IsRevoked(ctx, claims.ID); rerr == nil && revoked {
			return lowestTier(ErrRevoked.Error())
		}
	}
	return Entitlement{
		Valid:    true,
		Subject:  claims.Subject,
		Plan:     claims.Plan,
		Features: FeaturesFor(claims.Plan),
		Claims:   claims,
	}
}

// HTTPRevocationChecker asks the issuing service whether a jti is revoked
// via GET {BaseURL}/license/revocations/{jti}.
type HTTPRevocationChecker struct {
	BaseURL string
	Client  *http.Client
}

// IsRevoked implements RevocationChecker.
func (h *HTTPRevocationChecker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	c := h.Client
	if c == nil {
		c = &http.Client{Timeout: 5 * time.Second}
	}
	u := strings.TrimRight(h.BaseURL, "/") + "/license/revocations/" + url.PathEscape(jti)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("revocation check: status %d", resp.StatusCode)
	}
	var body struct {
		Revoked bool `json:"revoked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Revoked, nil
}
