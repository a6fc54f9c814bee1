// Package domain defines the persistence models for orders, restaurants,
// delivery routes, kitchen load snapshots and notifications. These types are
// mapped with GORM and form the core data layer of the restaurant backend.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderItem is a single line on an order. Items are stored as a JSON column
// on the owning order.
type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	// Complex marks items that take long to prepare; they are refused while
	// the kitchen is overloaded.
	Complex bool `json:"complex,omitempty"`
}

// Order represents a customer transaction placed with a restaurant.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - RestaurantID: owning restaurant (a User); indexed with Status for the
//     active-order count used by the kitchen monitor.
//   - Status: lifecycle state, see OrderStatus.
//   - Items / Total: line items and their decimal sum.
//   - Source: table number or channel tag ("table:7", "delivery", ...).
//   - PaymentMethod / ChangeFor: "cash" orders may carry a change-for amount.
//   - DriverID / DispatchedAt: set when a delivery route is accepted.
//   - Note: free text; editing it does not change Status.
type Order struct {
	ID               string                       `json:"id"                gorm:"type:char(36);primaryKey"`
	RestaurantID     string                       `json:"restaurant_id"     gorm:"type:varchar(64);not null;index:idx_restaurant_status,priority:1"`
	Status           OrderStatus                  `json:"status"            gorm:"type:varchar(32);not null;index:idx_restaurant_status,priority:2"`
	Items            datatypes.JSONSlice[OrderItem] `json:"items"`
	Total            decimal.Decimal              `json:"total"             gorm:"type:numeric(12,2);not null"`
	Source           string                       `json:"source,omitempty"  gorm:"type:varchar(64)"`
	PaymentMethod    string                       `json:"payment_method"    gorm:"type:varchar(32);not null"`
	ChangeFor        decimal.NullDecimal          `json:"change_for"        gorm:"type:numeric(12,2)"`
	DriverID         *string                      `json:"driver_id"         gorm:"type:varchar(64);index"`
	EstimatedMinutes int                          `json:"estimated_minutes"`
	Note             string                       `json:"note,omitempty"    gorm:"type:text"`
	DispatchedAt     *time.Time                   `json:"dispatched_at,omitempty"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// ItemCount returns the number of units across all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// User is an account known to the system of record. Restaurants and drivers
// are both users; the Plan column is the only source of truth for licensing.
//
// Kitchen settings are per-restaurant overrides; zero means "use the
// configured default".
type User struct {
	ID                    string    `json:"id"    gorm:"type:varchar(64);primaryKey"`
	Email                 string    `json:"email" gorm:"type:varchar(255)"`
	Name                  string    `json:"name"  gorm:"type:varchar(255)"`
	Plan                  string    `json:"plan"  gorm:"type:varchar(32);not null;default:'free'"`
	MaxPreparingOrders    int       `json:"max_preparing_orders"`
	ThrottledDeliveryTime int       `json:"throttled_delivery_time"`
	NormalDeliveryTime    int       `json:"normal_delivery_time"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// KitchenStatus is the derived load snapshot of one restaurant. It is a pure
// function of the active-order count at write time and is always written as
// a whole row.
type KitchenStatus struct {
	RestaurantID          string        `json:"restaurant_id"           gorm:"type:varchar(64);primaryKey"`
	ActiveOrders          int           `json:"active_orders"           gorm:"not null"`
	IsThrottled           bool          `json:"is_throttled"            gorm:"not null"`
	ThrottleLevel         ThrottleLevel `json:"throttle_level"          gorm:"type:varchar(16);not null"`
	EstimatedDeliveryTime int           `json:"estimated_delivery_time" gorm:"not null"`
	BlockComplexItems     bool          `json:"block_complex_items"     gorm:"not null"`
	LastUpdated           time.Time     `json:"last_updated"            gorm:"not null"`
}

// TableName returns the database table name for KitchenStatus.
func (KitchenStatus) TableName() string { return "kitchen_statuses" }

// DeliveryRoute groups orders that a single driver delivers together.
// OrderIDs keeps the delivery sequence.
type DeliveryRoute struct {
	ID           string                      `json:"id"            gorm:"type:char(36);primaryKey"`
	RestaurantID string                      `json:"restaurant_id" gorm:"type:varchar(64);index"`
	Status       RouteStatus                 `json:"status"        gorm:"type:varchar(32);not null;index:idx_route_status_created,priority:1"`
	OrderIDs     datatypes.JSONSlice[string] `json:"order_ids"`
	DriverID     *string                     `json:"driver_id"     gorm:"type:varchar(64)"`
	CreatedAt    time.Time                   `json:"created_at"    gorm:"index:idx_route_status_created,priority:2"`
	AssignedAt   *time.Time                  `json:"assigned_at,omitempty"`
}

// TableName returns the database table name for DeliveryRoute.
func (DeliveryRoute) TableName() string { return "delivery_routes" }

// Notification is a fact for a human to see in the restaurant inbox.
type Notification struct {
	ID        string            `json:"id"         gorm:"type:char(36);primaryKey"`
	TargetID  string            `json:"target_id"  gorm:"type:varchar(64);not null;index:idx_target_created,priority:1"`
	Type      NotificationType  `json:"type"       gorm:"type:varchar(32);not null"`
	Title     string            `json:"title"      gorm:"type:varchar(255);not null"`
	Body      string            `json:"body"       gorm:"type:text"`
	Data      datatypes.JSONMap `json:"data"`
	Read      bool              `json:"read"       gorm:"not null;default:false"`
	CreatedAt time.Time         `json:"created_at" gorm:"index:idx_target_created,priority:2"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

// RateCounter is one fixed window of a shared request counter.
// (BucketKey, WindowStart) is unique; WindowStart is unix seconds.
type RateCounter struct {
	BucketKey   string    `gorm:"type:varchar(128);primaryKey"`
	WindowStart int64     `gorm:"primaryKey;autoIncrement:false"`
	Hits        int64     `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName returns the database table name for RateCounter.
func (RateCounter) TableName() string { return "rate_counters" }

// LicenseIssuance records who a license token was issued to, so that only
// its holder can revoke it.
type LicenseIssuance struct {
	TokenID   string    `json:"token_id"   gorm:"type:char(36);primaryKey"`
	Subject   string    `json:"subject"    gorm:"type:varchar(64);index;not null"`
	Plan      string    `json:"plan"       gorm:"type:varchar(32)"`
	IssuedAt  time.Time `json:"issued_at"  gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// TableName returns the database table name for LicenseIssuance.
func (LicenseIssuance) TableName() string { return "license_issuances" }

// LicenseRevocation denies a previously issued license token by its jti.
type LicenseRevocation struct {
	TokenID   string    `json:"token_id"   gorm:"type:char(36);primaryKey"`
	Subject   string    `json:"subject"    gorm:"type:varchar(64);index"`
	Reason    string    `json:"reason"     gorm:"type:varchar(255)"`
	RevokedAt time.Time `json:"revoked_at" gorm:"not null"`
}

// TableName returns the database table name for LicenseRevocation.
func (LicenseRevocation) TableName() string { return "license_revocations" }
