// Package handlers exposes the restaurant API over HTTP.
//
// Handlers are transport-thin: they read the authenticated caller from the
// gin context, bind and shape input, call application services, and
// translate results (or service errors, via failErr) into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-restaurant-ops/internal/billing"
	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/geocode"
	"github.com/tbourn/go-restaurant-ops/internal/http/middleware"
	"github.com/tbourn/go-restaurant-ops/internal/services"
	"github.com/tbourn/go-restaurant-ops/internal/utils"
)

//
// Service contracts (context-aware)
//

// OrderService defines the order lifecycle consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OrderService interface {
	// Create places an order; replay reports an Idempotency-Key hit.
	Create(ctx context.Context, restaurantID string, in services.OrderInput, idem services.IdempotencyRef) (*domain.Order, bool, error)
	UpdateStatus(ctx context.Context, restaurantID, orderID string, status domain.OrderStatus) (*domain.Order, error)
	UpdateNote(ctx context.Context, restaurantID, orderID, note string) (*domain.Order, error)
	Get(ctx context.Context, restaurantID, orderID string) (*domain.Order, error)
	// ListPage returns a page of orders, newest first, and the total count.
	ListPage(ctx context.Context, restaurantID string, status domain.OrderStatus, page, pageSize int) ([]domain.Order, int64, error)
}

// KitchenService reads the derived kitchen load snapshot.
type KitchenService interface {
	Status(ctx context.Context, restaurantID string) (*domain.KitchenStatus, error)
}

// DispatchService hands delivery routes to drivers.
type DispatchService interface {
	AcceptRoute(ctx context.Context, driverID, batchID string) (*domain.DeliveryRoute, error)
	ListAvailableRoutes(ctx context.Context) ([]domain.DeliveryRoute, error)
}

// LicenseService issues and revokes entitlement tokens.
type LicenseService interface {
	Issue(ctx context.Context, subject string) (*services.IssuedLicense, error)
	Revoke(ctx context.Context, subject, jti, reason string) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NotificationService serves the restaurant inbox.
type NotificationService interface {
	List(ctx context.Context, targetID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, targetID, id string, read bool) error
}

// AddressService validates delivery addresses.
type AddressService interface {
	Validate(ctx context.Context, caller string, addr geocode.Address) (*geocode.Result, error)
}

// BillingService creates gateway charges.
type BillingService interface {
	CreatePayment(ctx context.Context, in services.ChargeInput) (*billing.Payment, error)
	CreateSubscription(ctx context.Context, in services.ChargeInput) (*billing.Subscription, error)
}

//
// Handler wiring
//

// Services bundles the application services a Handlers instance serves.
// Nil members are allowed in tests that only exercise some endpoints.
type Services struct {
	Orders        OrderService
	Kitchen       KitchenService
	Dispatch      DispatchService
	Licenses      LicenseService
	Notifications NotificationService
	Address       AddressService
	Billing       BillingService
}

// Handlers groups the HTTP endpoints of the API. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	orders        OrderService
	kitchen       KitchenService
	dispatch      DispatchService
	licenses      LicenseService
	notifications NotificationService
	address       AddressService
	billing       BillingService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{
		orders:        s.Orders,
		kitchen:       s.Kitchen,
		dispatch:      s.Dispatch,
		licenses:      s.Licenses,
		notifications: s.Notifications,
		address:       s.Address,
		billing:       s.Billing,
	}
}

// callerID is the verified subject set by the auth middleware, "" when the
// request is anonymous. Services reject "" as unauthenticated.
func callerID(c *gin.Context) string {
	return middleware.UserID(c)
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.PageCount(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// notModified sets a weak ETag and reports whether the client already holds
// it, in which case a 304 has been written.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
