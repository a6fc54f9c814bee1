// Delivery route and kitchen HTTP handlers.
//
//   - GET    /routes/available      (pending routes, ETag support)
//   - POST   /routes/{id}/accept    (driver takes a route)
//   - GET    /kitchen/status        (caller's load snapshot)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
	"github.com/tbourn/go-restaurant-ops/internal/services"
)

// ListRoutesResponse wraps the routes waiting for a driver.
type ListRoutesResponse struct {
	Routes []domain.DeliveryRoute `json:"routes"`
}

// ListAvailableRoutes godoc
// @ID          listAvailableRoutes
// @Summary     List routes waiting for a driver
// @Description Returns up to 20 PENDING_DRIVER routes, newest first. Supports weak ETag via If-None-Match.
// @Tags        Routes
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ListRoutesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /routes/available [get]
func (h *Handlers) ListAvailableRoutes(c *gin.Context) {
	ctx := c.Request.Context()

	if svc, isSvc := h.dispatch.(*services.DispatchService); isSvc && svc.DB != nil {
		count, maxTS, err := repo.PendingRoutesStats(ctx, svc.DB)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			if notModified(c, fmt.Sprintf(`W/"routes:%d:%d"`, count, ts)) {
				return
			}
		}
	}

	routes, err := h.dispatch.ListAvailableRoutes(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	if routes == nil {
		routes = []domain.DeliveryRoute{}
	}
	ok(c, http.StatusOK, ListRoutesResponse{Routes: routes})
}

// AcceptRoute godoc
// @ID          acceptRoute
// @Summary     Accept a delivery route
// @Description Binds the route to the calling driver and marks every order on it OUT_FOR_DELIVERY, all or nothing.
// @Tags        Routes
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Route ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.DeliveryRoute
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Route not found"
// @Failure     409  {object} handlers.ErrorResponse "Route already accepted"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /routes/{id}/accept [post]
func (h *Handlers) AcceptRoute(c *gin.Context) {
	route, err := h.dispatch.AcceptRoute(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, route)
}

// KitchenStatus godoc
// @ID          kitchenStatus
// @Summary     Current kitchen load
// @Description Returns the caller's throttle level and delivery estimate; NORMAL when no order has been tracked yet.
// @Tags        Kitchen
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} domain.KitchenStatus
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /kitchen/status [get]
func (h *Handlers) KitchenStatus(c *gin.Context) {
	ks, err := h.kitchen.Status(c.Request.Context(), callerID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ks)
}
