// Command server runs the restaurant operations API.
//
// @title                      Restaurant Ops API
// @version                    1.0
// @description                Orders, kitchen load, delivery dispatch, licensing and notifications for restaurants.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-restaurant-ops/internal/auth"
	"github.com/tbourn/go-restaurant-ops/internal/billing"
	"github.com/tbourn/go-restaurant-ops/internal/config"
	"github.com/tbourn/go-restaurant-ops/internal/events"
	"github.com/tbourn/go-restaurant-ops/internal/geocode"
	httpapi "github.com/tbourn/go-restaurant-ops/internal/http"
	"github.com/tbourn/go-restaurant-ops/internal/http/handlers"
	"github.com/tbourn/go-restaurant-ops/internal/license"
	"github.com/tbourn/go-restaurant-ops/internal/observability"
	"github.com/tbourn/go-restaurant-ops/internal/repo"
	"github.com/tbourn/go-restaurant-ops/internal/services"
	"github.com/tbourn/go-restaurant-ops/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const housekeepingInterval = 10 * time.Minute

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open record store")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate record store")
	}

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Events.Driver).Msg("event publisher")
	}

	dispatcher := events.NewDispatcher(cfg.Events.Workers)
	svcs := buildServices(cfg, db, dispatcher, publisher)

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Verifier: &auth.JWTVerifier{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.Issuer},
		Services: svcs,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go housekeeping(ctx, db, housekeepingInterval)

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// Reactions to the last requests still need the store and the bus.
	dispatcher.Wait()
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("close event publisher")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
}

// buildServices wires the application services and subscribes the reactive
// handlers to order changes.
func buildServices(cfg config.Config, db *gorm.DB, dispatcher *events.Dispatcher, publisher events.Publisher) handlers.Services {
	notifications := &services.NotificationService{DB: db, Publisher: publisher}
	notifier := services.NewOrderNotifier(notifications, cfg.Notify.Locale, cfg.Notify.Currency)

	kitchen := &services.KitchenMonitor{
		DB:            db,
		Notifications: notifications,
		Publisher:     publisher,
		Settings:      services.KitchenSettingsFromConfig(cfg.Kitchen),
		Printer:       notifier.Printer,
	}

	dispatcher.Subscribe(kitchen)
	dispatcher.Subscribe(notifier)

	return handlers.Services{
		Orders:        &services.OrderService{DB: db, Events: dispatcher, Kitchen: kitchen, IdempotencyTTL: cfg.IdempotencyTTL},
		Kitchen:       kitchen,
		Dispatch:      &services.DispatchService{DB: db, Events: dispatcher},
		Licenses:      &services.LicenseService{DB: db, Signer: loadSigner(cfg.License)},
		Notifications: notifications,
		Address: &services.AddressService{
			DB:       db,
			Geocoder: geocode.New(cfg.Upstream.GeocodeBaseURL, cfg.Upstream.GeocodeAPIKey, cfg.Upstream.Timeout),
			Limit:    cfg.Upstream.AddressRateLimit,
			Window:   cfg.Upstream.AddressRateWindow,
		},
		Billing: &services.BillingService{
			Gateway: billing.New(cfg.Upstream.BillingBaseURL, cfg.Upstream.BillingAPIToken, cfg.Upstream.Timeout),
		},
	}
}

// loadSigner returns nil when no usable key is configured; license issuance
// then answers 503 instead of signing with a fallback key.
func loadSigner(lc config.LicenseConfig) *license.Signer {
	pem, err := sysutil.LoadSecret(lc.PrivateKeyPEM, lc.PrivateKeyFile)
	if err != nil {
		log.Warn().Err(err).Msg("license signing disabled")
		return nil
	}
	signer, err := license.NewSigner(pem, lc.Issuer, lc.Audience, lc.MaxOfflineDays)
	if err != nil {
		log.Warn().Err(err).Msg("license signing disabled")
		return nil
	}
	return signer
}

// housekeeping purges expired idempotency records and rate windows.
func housekeeping(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			now := time.Now().UTC()
			if n, err := repo.PurgeExpiredIdempotency(ctx, db, now); err != nil {
				log.Warn().Err(err).Msg("purge idempotency")
			} else if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged idempotency records")
			}
			if n, err := repo.PurgeRateCounters(ctx, db, now); err != nil {
				log.Warn().Err(err).Msg("purge rate counters")
			} else if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged rate counters")
			}
		}
	}
}
