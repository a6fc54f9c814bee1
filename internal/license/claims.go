package license

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an entitlement token.
type Claims struct {
	Plan           string   `json:"plan"`
	Features       []string `json:"features"`
	MaxOfflineDays int      `json:"maxOfflineDays"`
	jwt.RegisteredClaims
}

// Entitlement is the outcome of checking a token. When Valid is false the
// Features are those of the lowest tier.
type Entitlement struct {
	Valid    bool
	Subject  string
	Plan     string
	Features []string
	Reason   string
	Claims   *Claims
}

// Allows reports whether feature is granted.
func (e Entitlement) Allows(feature string) bool {
	return slices.Contains(e.Features, feature)
}

func lowestTier(reason string) Entitlement {
	return Entitlement{
		Plan:     PlanFree,
		Features: FeaturesFor(PlanFree),
		Reason:   reason,
	}
}
