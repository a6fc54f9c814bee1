package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-restaurant-ops/internal/auth"
	"github.com/tbourn/go-restaurant-ops/internal/config"
	"github.com/tbourn/go-restaurant-ops/internal/domain"
	"github.com/tbourn/go-restaurant-ops/internal/events"
	"github.com/tbourn/go-restaurant-ops/internal/http/handlers"
	"github.com/tbourn/go-restaurant-ops/internal/http/middleware"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
	"github.com/tbourn/go-restaurant-ops/internal/services"
)

var testSecret = []byte("router-test-secret")

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

// newTestRouter wires the full stack over a fresh database with real
// order, kitchen and license services.
func newTestRouter(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	d := events.NewDispatcher(2)
	t.Cleanup(d.Wait)
	kitchen := &services.KitchenMonitor{DB: db}

	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:       db,
		Verifier: &auth.JWTVerifier{Secret: testSecret},
		Services: handlers.Services{
			Orders:   &services.OrderService{DB: db, Events: d, Kitchen: kitchen, IdempotencyTTL: time.Hour},
			Kitchen:  kitchen,
			Licenses: &services.LicenseService{DB: db},
		},
	}, cfg)
	return r, db
}

func bearer(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.Mint(testSecret, "", subject, ttl)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return "Bearer " + tok
}

func serve(r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	// /health works
	w := serve(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = serve(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	if w := serve(r, http.MethodGet, "/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	if w := serve(r, http.MethodPost, "/health", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}

	// Swagger disabled by default
	if w := serve(r, http.MethodGet, "/swagger/index.html", ""); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _ := newTestRouter(t, cfg)

	w := serve(r, http.MethodGet, "/health", "", "Origin", "http://example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_SwaggerEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ := newTestRouter(t, cfg)

	if w := serve(r, http.MethodGet, "/swagger/doc.json", ""); w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	w := serve(r, http.MethodGet, "/api/v1/orders", "")
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"unauthorized"`) {
		t.Fatalf("anonymous: %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/v1/orders", "", "Authorization", bearer(t, "r1", -time.Minute))
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"token_expired"`) {
		t.Fatalf("expired: %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/v1/orders", "", "Authorization", bearer(t, "r1", time.Minute))
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("ETag") == "" {
		t.Fatalf("expected ETag on order list")
	}
}

func TestAPI_LicenseEndpoints(t *testing.T) {
	r, db := newTestRouter(t, testConfig())
	tok := bearer(t, "r1", time.Minute)
	if err := repo.CreateUser(context.Background(), db, &domain.User{ID: "r1", Plan: "pro"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	// No signing key configured: fail closed.
	w := serve(r, http.MethodPost, "/api/v1/license", "", "Authorization", tok)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("issue without key: %d %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control=%q", got)
	}

	// Tokens issued earlier, while a key was configured.
	exp := time.Now().Add(time.Hour)
	for jti, sub := range map[string]string{"jti-1": "r1", "jti-2": "r2"} {
		if err := repo.RecordLicenseIssuance(context.Background(), db, &domain.LicenseIssuance{TokenID: jti, Subject: sub, Plan: "pro", IssuedAt: time.Now(), ExpiresAt: exp}); err != nil {
			t.Fatalf("seed issuance: %v", err)
		}
	}

	// The revocation check is public.
	w = serve(r, http.MethodGet, "/api/v1/license/revocations/jti-1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"revoked":false`) {
		t.Fatalf("check: %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodPost, "/api/v1/license/revocations", `{"token_id":"jti-1"}`, "Authorization", tok)
	if w.Code != http.StatusNoContent {
		t.Fatalf("revoke: %d %s", w.Code, w.Body.String())
	}
	w = serve(r, http.MethodGet, "/api/v1/license/revocations/jti-1", "")
	if !strings.Contains(w.Body.String(), `"revoked":true`) {
		t.Fatalf("after revoke: %s", w.Body.String())
	}

	w = serve(r, http.MethodPost, "/api/v1/license/revocations", `{"token_id":"jti-2"}`, "Authorization", tok)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign revoke: %d %s", w.Code, w.Body.String())
	}
	w = serve(r, http.MethodGet, "/api/v1/license/revocations/jti-2", "")
	if !strings.Contains(w.Body.String(), `"revoked":false`) {
		t.Fatalf("foreign token must stay valid: %s", w.Body.String())
	}
}

func TestAPI_IdempotentOrderReplay(t *testing.T) {
	r, db := newTestRouter(t, testConfig())
	tok := bearer(t, "r1", time.Minute)
	body := `{"items":[{"name":"Burger","quantity":1,"price":"20"}]}`

	w := serve(r, http.MethodPost, "/api/v1/orders", body, "Authorization", tok, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("first: %d %s", w.Code, w.Body.String())
	}
	w = serve(r, http.MethodPost, "/api/v1/orders", body, "Authorization", tok, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusOK || w.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("replay: %d %s", w.Code, w.Body.String())
	}

	// The same key from another caller is a different request.
	other := bearer(t, "r2", time.Minute)
	w = serve(r, http.MethodPost, "/api/v1/orders", body, "Authorization", other, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("other caller: %d %s", w.Code, w.Body.String())
	}

	var n int64
	if err := db.Table("orders").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("orders=%d want 2", n)
	}

	w = serve(r, http.MethodPost, "/api/v1/orders", body, "Authorization", tok, middleware.HeaderIdempotencyKey, "bad key")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad key: %d", w.Code)
	}
}

func TestAPI_RateLimitedAfterAuth(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, _ := newTestRouter(t, cfg)
	tok := bearer(t, "r1", time.Minute)

	if w := serve(r, http.MethodGet, "/api/v1/kitchen/status", "", "Authorization", tok); w.Code != http.StatusOK {
		t.Fatalf("first: %d", w.Code)
	}
	w := serve(r, http.MethodGet, "/api/v1/kitchen/status", "", "Authorization", tok)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Fatalf("second: %d retry-after=%q", w.Code, w.Header().Get("Retry-After"))
	}

	// A different caller has its own bucket.
	if w := serve(r, http.MethodGet, "/api/v1/kitchen/status", "", "Authorization", bearer(t, "r2", time.Minute)); w.Code != http.StatusOK {
		t.Fatalf("other caller: %d", w.Code)
	}
}

func Test_idempotencyLookup_MissOnError(t *testing.T) {
	if idempotencyLookup(nil) != nil {
		t.Fatalf("nil db must disable lookup")
	}

	db := newTestDB(t)
	lookup := idempotencyLookup(db)
	if hit, err := lookup(context.Background(), "u1", "POST /api/v1/orders", "k", time.Now()); hit || err != nil {
		t.Fatalf("empty table: hit=%v err=%v", hit, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()
	if hit, err := lookup(context.Background(), "u1", "POST /api/v1/orders", "k", time.Now()); hit || err != nil {
		t.Fatalf("closed db: hit=%v err=%v", hit, err)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := serve(r, http.MethodGet, path, "")
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}

// Smoke test that a request traverses the otel + request id + security headers pipeline.
func TestPipeline_Smoke(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	r, _ := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.URL.Scheme = "https"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}
