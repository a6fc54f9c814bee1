package domain

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderCreated        OrderStatus = "CREATED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// orderTransitions is the directed graph of allowed status changes.
// CANCELLED is reachable from every non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderCreated:        {OrderPreparing, OrderCancelled},
	OrderPreparing:      {OrderReadyForPickup, OrderCancelled},
	OrderReadyForPickup: {OrderOutForDelivery, OrderCancelled},
	OrderOutForDelivery: {OrderDelivered, OrderCancelled},
	OrderDelivered:      nil,
	OrderCancelled:      nil,
}

// ActiveOrderStatuses are the states that count towards kitchen load.
var ActiveOrderStatuses = []OrderStatus{OrderPreparing, OrderReadyForPickup}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether an order may move from one status to another.
// Staying in the same status is not a transition.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ThrottleLevel classifies kitchen load.
type ThrottleLevel string

const (
	ThrottleNormal     ThrottleLevel = "NORMAL"
	ThrottleBusy       ThrottleLevel = "BUSY"
	ThrottleOverloaded ThrottleLevel = "OVERLOADED"
)

// RouteStatus is the lifecycle state of a delivery route.
type RouteStatus string

const (
	RoutePendingDriver RouteStatus = "PENDING_DRIVER"
	RouteAssigned      RouteStatus = "ASSIGNED"
)

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotificationNewOrder        NotificationType = "NEW_ORDER"
	NotificationCashChange      NotificationType = "CASH_CHANGE"
	NotificationKitchenOverload NotificationType = "KITCHEN_OVERLOAD"
)

// PaymentCash is the payment method tag for cash on delivery.
const PaymentCash = "cash"
