// Package license mints and verifies signed entitlement tokens.
//
// A token binds a subject to the plan read from the system of record and to
// the feature set that plan grants. Tokens are EdDSA (Ed25519) JWTs; only the
// issuing service holds the private key, clients embed the public key and
// verify offline between renewals.
package license

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ValidityWindow is the fixed lifetime of an issued token.
const ValidityWindow = 7 * 24 * time.Hour

// Plan tiers, lowest first.
const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Features gated by plan.
const (
	FeatureOrders          = "orders"
	FeatureMenu            = "menu"
	FeatureKitchenDisplay  = "kitchen_display"
	FeatureDelivery        = "delivery"
	FeatureKitchenThrottle = "kitchen_throttle"
	FeatureDeliveryRoutes  = "delivery_routes"
	FeatureReports         = "reports"
	FeatureMultiStore      = "multi_store"
	FeatureAPIAccess       = "api_access"
)

var planFeatures = func() map[string][]string {
	free := []string{FeatureOrders, FeatureMenu}
	starter := append(slices.Clone(free), FeatureKitchenDisplay, FeatureDelivery)
	pro := append(slices.Clone(starter), FeatureKitchenThrottle, FeatureDeliveryRoutes, FeatureReports)
	enterprise := append(slices.Clone(pro), FeatureMultiStore, FeatureAPIAccess)
	return map[string][]string{
		PlanFree:       free,
		PlanStarter:    starter,
		PlanPro:        pro,
		PlanEnterprise: enterprise,
	}
}()

var titleCaser = cases.Title(language.English)

// KnownPlan reports whether plan is one of the fixed tiers.
func KnownPlan(plan string) bool {
	_, ok := planFeatures[normalize(plan)]
	return ok
}

// FeaturesFor returns the features granted by plan. Unknown or empty plans
// get the lowest tier. The returned slice is a copy.
func FeaturesFor(plan string) []string {
	if f, ok := planFeatures[normalize(plan)]; ok {
		return slices.Clone(f)
	}
	return slices.Clone(planFeatures[PlanFree])
}

// DisplayName renders a plan tag for humans ("pro" -> "Pro").
func DisplayName(plan string) string {
	p := normalize(plan)
	if p == "" {
		p = PlanFree
	}
	return titleCaser.String(p)
}

func normalize(plan string) string {
	return strings.ToLower(strings.TrimSpace(plan))
}
