// Notification HTTP handlers.
//
//   - GET    /notifications            (caller's inbox, newest first)
//   - PATCH  /notifications/{id}/read  (mark read or unread)
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/utils"
)

// ListNotificationsResponse wraps the caller's notifications.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// MarkReadRequest sets the read flag. Read defaults to true when omitted.
type MarkReadRequest struct {
	Read *bool `json:"read,omitempty" example:"true"`
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List notifications
// @Tags        Notifications
// @Produce     json
// @Security    BearerAuth
//
// @Param       unread  query  bool  false "Only unread"
// @Param       limit   query  int   false "Max items"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListNotificationsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	items, err := h.notifications.List(c.Request.Context(), callerID(c), unread, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	ok(c, http.StatusOK, ListNotificationsResponse{Notifications: items})
}

// MarkNotificationRead godoc
// @ID          markNotificationRead
// @Summary     Mark a notification read
// @Tags        Notifications
// @Accept      json
// @Security    BearerAuth
//
// @Param       id    path  string                    true   "Notification ID"
// @Param       body  body  handlers.MarkReadRequest  false  "Read flag"
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Notification not found"
// @Router      /notifications/{id}/read [patch]
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	read := true
	if c.Request.ContentLength != 0 {
		var req MarkReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
		if req.Read != nil {
			read = *req.Read
		}
	}

	if err := h.notifications.MarkRead(c.Request.Context(), callerID(c), c.Param("id"), read); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
