package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/swiftretail/pos-backend/api/routes"
	"github.com/swiftretail/pos-backend/internal/cart"
	"github.com/swiftretail/pos-backend/internal/catalog"
	"github.com/swiftretail/pos-backend/internal/customers"
	"github.com/swiftretail/pos-backend/internal/reports"
	"github.com/swiftretail/pos-backend/internal/sales"
	"github.com/swiftretail/pos-backend/internal/settings"
	"github.com/swiftretail/pos-backend/pkg/config"
	"github.com/swiftretail/pos-backend/pkg/db"
	"github.com/swiftretail/pos-backend/pkg/logger"
	"github.com/swiftretail/pos-backend/pkg/metrics"
	"github.com/swiftretail/pos-backend/pkg/migrate"
	"github.com/swiftretail/pos-backend/pkg/receipt"
	"github.com/swiftretail/pos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var closers []func() error

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
	}

	registry := prometheus.NewRegistry()
	saleMetrics := metrics.NewSaleMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	gormDB := dbClient.DB()

	settingsSvc := settings.NewService(settings.NewRepository(gormDB), logg)
	if err := settingsSvc.Load(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to load settings", err)
		os.Exit(1)
	}

	catalogSvc := catalog.NewService(catalog.NewRepository(gormDB), logg)
	customersSvc := customers.NewService(customers.NewRepository(gormDB), logg)
	cartSvc := cart.NewService(dbClient, cart.NewRepository(gormDB), logg)
	salesSvc := sales.NewService(
		dbClient,
		sales.NewRepository(gormDB),
		receipt.New(),
		saleMetrics,
		logg,
		cfg.Store.ReceiptRetries,
	)
	reportsSvc := reports.NewService(reports.NewRepository(gormDB))

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting pos api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			HTTPMetrics: httpMetrics,
			Registry:    registry,
			Catalog:     catalogSvc,
			Customers:   customersSvc,
			Cart:        cartSvc,
			Sales:       salesSvc,
			Reports:     reportsSvc,
			Settings:    settingsSvc,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeAll(ctx, logg, closers)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeAll(ctx, logg, closers)
	logg.Info(ctx, "shutdown complete")
}

func closeAll(ctx context.Context, logg *logger.Logger, closers []func() error) {
	var errs error
	for _, closeFn := range closers {
		errs = multierr.Append(errs, closeFn())
	}
	if errs != nil {
		logg.Error(ctx, "error closing resources", errs)
	}
}
