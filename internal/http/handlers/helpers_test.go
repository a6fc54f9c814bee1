package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-restaurant-ops/internal/http/middleware"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
)

// newHandlerDB opens a private in-memory database with the full schema.
func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newEngine mounts every endpoint of h. uid stands in for the auth
// middleware; "" leaves the request anonymous.
func newEngine(h *Handlers, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-test")
		if uid != "" {
			c.Set(middleware.CtxUserID, uid)
		}
		c.Next()
	})
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))

	r.POST("/license", h.IssueLicense)
	r.POST("/license/revocations", h.RevokeLicense)
	r.GET("/license/revocations/:jti", h.LicenseRevocation)
	r.GET("/routes/available", h.ListAvailableRoutes)
	r.POST("/routes/:id/accept", h.AcceptRoute)
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.PATCH("/orders/:id/note", h.UpdateOrderNote)
	r.GET("/kitchen/status", h.KitchenStatus)
	r.GET("/notifications", h.ListNotifications)
	r.PATCH("/notifications/:id/read", h.MarkNotificationRead)
	r.POST("/address/validate", h.ValidateAddress)
	r.POST("/billing/payments", h.CreatePayment)
	r.POST("/billing/subscriptions", h.CreateSubscription)
	return r
}

// call performs one request; hdr is a flat list of header name/value pairs.
func call(r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return v
}

// expectError asserts the status and the envelope code.
func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code {
		t.Fatalf("code=%q want %q", er.Code, code)
	}
	if er.RequestID != "rid-test" {
		t.Fatalf("request_id=%q", er.RequestID)
	}
}
