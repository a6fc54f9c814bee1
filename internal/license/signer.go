package license

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoSigningKey is returned when the signer has no usable private key.
// Issuance fails closed; there is no fallback key.
var ErrNoSigningKey = errors.New("license signing key not configured")

// Signer mints entitlement tokens.
type Signer struct {
	Key            ed25519.PrivateKey
	Issuer         string
	Audience       string
	MaxOfflineDays int
	Now            func() time.Time
}

// NewSigner parses a PKCS#8 PEM encoded Ed25519 private key.
func NewSigner(pemKey []byte, issuer, audience string, maxOfflineDays int) (*Signer, error) {
	if len(strings.TrimSpace(string(pemKey))) == 0 {
		return nil, ErrNoSigningKey
	}
	k, err := jwt.ParseEdPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSigningKey, err)
	}
	priv, ok := k.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an Ed25519 key", ErrNoSigningKey)
	}
	return &Signer{Key: priv, Issuer: issuer, Audience: audience, MaxOfflineDays: maxOfflineDays}, nil
}

// Sign issues a token for subject on plan. An empty plan is recorded as the
// lowest tier; features always derive from the plan. exp - iat equals
// ValidityWindow exactly.
func (s *Signer) Sign(subject, plan string) (string, *Claims, error) {
	if s == nil || len(s.Key) != ed25519.PrivateKeySize {
		return "", nil, ErrNoSigningKey
	}
	if strings.TrimSpace(plan) == "" {
		plan = PlanFree
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	iat := now().UTC().Truncate(time.Second)

	claims := &Claims{
		Plan:           plan,
		Features:       FeaturesFor(plan),
		MaxOfflineDays: s.MaxOfflineDays,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(ValidityWindow)),
			ID:        uuid.NewString(),
		},
	}
	if s.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.Audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.Key)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// PublicKey returns the verification key matching the signer.
func (s *Signer) PublicKey() ed25519.PublicKey {
	if s == nil || len(s.Key) != ed25519.PrivateKeySize {
		return nil
	}
	return s.Key.Public().(ed25519.PublicKey)
}
