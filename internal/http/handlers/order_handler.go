// Order HTTP handlers.
//
// This file exposes REST endpoints for the caller's orders:
//   - POST   /orders               (create, Idempotency-Key aware)
//   - GET    /orders               (list, paginated, ETag support)
//   - GET    /orders/{id}          (fetch)
//   - PATCH  /orders/{id}/status   (advance along the status graph)
//   - PATCH  /orders/{id}/note     (edit the free-text note)
//
// The authenticated caller is the restaurant; orders of other restaurants
// are reported as not found.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/http/middleware"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
	"github.com/tbourn/go-restaurant-ops/internal/services"
)

//
// DTOs
//

// OrderItemRequest is one line of a new order.
type OrderItemRequest struct {
	Name     string          `json:"name"     example:"Margherita"`
	Quantity int             `json:"quantity" example:"2"`
	Price    decimal.Decimal `json:"price"    swaggertype:"string" example:"12.50"`
	// Complex marks slow-to-prepare items; refused while the kitchen is overloaded.
	Complex bool `json:"complex,omitempty" example:"false"`
}

// CreateOrderRequest is the JSON payload for placing an order.
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	Source        string             `json:"source,omitempty"         example:"table:7"`
	PaymentMethod string             `json:"payment_method,omitempty" example:"cash"`
	// ChangeFor is the banknote value a cash customer pays with.
	ChangeFor *decimal.Decimal `json:"change_for,omitempty" swaggertype:"string" example:"50.00"`
	Note      string           `json:"note,omitempty"       example:"no onions"`
}

// UpdateOrderStatusRequest is the JSON payload for a status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"PREPARING"`
}

// UpdateOrderNoteRequest is the JSON payload for a note edit.
type UpdateOrderNoteRequest struct {
	Note string `json:"note" example:"ring the bell twice"`
}

// ListOrdersResponse wraps a page of orders and pagination information.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

func (r CreateOrderRequest) input() services.OrderInput {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Complex:  it.Complex,
		})
	}
	return services.OrderInput{
		Items:         items,
		Source:        r.Source,
		PaymentMethod: r.PaymentMethod,
		ChangeFor:     r.ChangeFor,
		Note:          r.Note,
	}
}

//
// Handlers
//

// CreateOrder godoc
// @ID          createOrder
// @Summary     Place an order
// @Description Validates the items, computes the total and places a CREATED order for the calling restaurant.
// @Description A repeated Idempotency-Key on the same route returns the stored order with 200 instead of placing a second one.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string                      false "Retry-safe request key"  example(3f1c2a9e-order-1)
// @Param       body             body    handlers.CreateOrderRequest true  "Order payload"
//
// @Success     201  {object}  domain.Order
// @Success     200  {object}  domain.Order "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.ErrorResponse  "Complex items blocked"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	var idem services.IdempotencyRef
	if key, found := middleware.GetIdempotencyKey(c); found {
		idem = services.IdempotencyRef{Scope: middleware.IdempotencyScope(c), Key: key}
	}

	o, replay, err := h.orders.Create(c.Request.Context(), callerID(c), req.input(), idem)
	if err != nil {
		failErr(c, err)
		return
	}
	if replay {
		c.Header("Idempotent-Replay", "true")
		ok(c, http.StatusOK, o)
		return
	}
	ok(c, http.StatusCreated, o)
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders (paginated)
// @Description Returns a page of the caller's orders, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       status         query   string  false "Filter by status"             example(PREPARING)
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListOrdersResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	rid := callerID(c)
	status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if svc, isSvc := h.orders.(*services.OrderService); isSvc && svc.DB != nil && rid != "" {
		count, maxTS, err := repo.OrdersStats(ctx, svc.DB, rid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"orders:%s:%s:%d:%d:%d:%d"`, rid, status, page, pageSize, count, ts)
			if notModified(c, etag) {
				return
			}
		}
	}

	items, total, err := h.orders.ListPage(ctx, rid, status, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListOrdersResponse{
		Orders:     items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Fetch an order
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Order ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Order
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Router      /orders/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// UpdateOrderStatus godoc
// @ID          updateOrderStatus
// @Summary     Change an order's status
// @Description Moves the order along CREATED → PREPARING → READY_FOR_PICKUP and OUT_FOR_DELIVERY → DELIVERED; CANCELLED from any non-terminal state. OUT_FOR_DELIVERY is set only by accepting a delivery route (409 here).
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                             true  "Order ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateOrderStatusRequest  true  "New status"
//
// @Success     200  {object} domain.Order
// @Failure     400  {object} handlers.ErrorResponse "Unknown status"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     409  {object} handlers.ErrorResponse "Illegal transition"
// @Router      /orders/{id}/status [patch]
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	o, err := h.orders.UpdateStatus(c.Request.Context(), callerID(c), c.Param("id"), status)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// UpdateOrderNote godoc
// @ID          updateOrderNote
// @Summary     Edit an order's note
// @Description Replaces the note; the status is left untouched.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                           true  "Order ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateOrderNoteRequest  true  "New note"
//
// @Success     200  {object} domain.Order
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Router      /orders/{id}/note [patch]
func (h *Handlers) UpdateOrderNote(c *gin.Context) {
	var req UpdateOrderNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	o, err := h.orders.UpdateNote(c.Request.Context(), callerID(c), c.Param("id"), req.Note)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}
