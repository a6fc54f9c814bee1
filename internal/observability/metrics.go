package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain collectors. HTTP traffic is instrumented separately by the
// middleware package; these count business events.
var (
	// KitchenRecomputations counts kitchen status writes by resulting level.
	KitchenRecomputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitchen_recomputations_total",
			Help: "Kitchen status recomputations that changed the stored snapshot.",
		},
		[]string{"level"},
	)

	// LicensesIssued counts signed license tokens by plan.
	LicensesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licenses_issued_total",
			Help: "License tokens issued.",
		},
		[]string{"plan"},
	)

	// RoutesAccepted counts route acceptance attempts by result
	// (accepted, conflict, not_found, error).
	RoutesAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routes_accepted_total",
			Help: "Delivery route acceptance attempts.",
		},
		[]string{"result"},
	)

	// NotificationsEmitted counts persisted notifications by type.
	NotificationsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_emitted_total",
			Help: "Notifications written to restaurant inboxes.",
		},
		[]string{"type"},
	)

	// AddressValidations counts address checks by result (valid, invalid, error).
	AddressValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "address_validations_total",
			Help: "Address validation outcomes.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		KitchenRecomputations,
		LicensesIssued,
		RoutesAccepted,
		NotificationsEmitted,
		AddressValidations,
	)
}
