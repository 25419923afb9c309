package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swiftretail/pos-backend/api/controllers"
	"github.com/swiftretail/pos-backend/api/middleware"
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
	"github.com/swiftretail/pos-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	Catalog   catalog.Service
	Customers customers.Service
	Cart      cart.Service
	Sales     sales.Service
	Reports   reports.Service
	Settings  settings.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Metrics(d.HTTPMetrics),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(d.Config.App.CORSOrigins, ","),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", "X-Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(d.Catalog, d.Logger))
			r.Post("/", controllers.ProductCreate(d.Catalog, d.Logger))
			r.Get("/lookup", controllers.ProductLookupBarcode(d.Catalog, d.Logger))
			r.Get("/{id}", controllers.ProductGet(d.Catalog, d.Logger))
			r.Put("/{id}", controllers.ProductUpdate(d.Catalog, d.Logger))
			r.Delete("/{id}", controllers.ProductRetire(d.Catalog, d.Logger))
			r.Post("/{id}/stock", controllers.ProductAdjustStock(d.Catalog, d.Logger))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(d.Catalog, d.Logger))
			r.Post("/", controllers.CategoryCreate(d.Catalog, d.Logger))
			r.Put("/{id}", controllers.CategoryUpdate(d.Catalog, d.Logger))
			r.Delete("/{id}", controllers.CategoryDelete(d.Catalog, d.Logger))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(d.Customers, d.Logger))
			r.Post("/", controllers.CustomerCreate(d.Customers, d.Logger))
			r.Get("/{id}", controllers.CustomerGet(d.Customers, d.Logger))
			r.Put("/{id}", controllers.CustomerUpdate(d.Customers, d.Logger))
			r.Delete("/{id}", controllers.CustomerDelete(d.Customers, d.Logger))
			r.Get("/{id}/purchases", controllers.CustomerPurchases(d.Reports, d.Logger))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/quote", controllers.CartQuote(d.Cart, d.Settings, d.Logger))
		})

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", controllers.CartListHeld(d.Cart, d.Logger))
			r.Post("/hold", controllers.CartHold(d.Cart, d.Logger))
			r.Post("/{id}/resume", controllers.CartResume(d.Cart, d.Logger))
		})

		r.With(middleware.Idempotency(d.Redis, "checkout", d.Config.Redis.IdempotencyTTL, d.Logger)).
			Post("/checkout", controllers.Checkout(d.Sales, d.Settings, d.Logger))

		r.Get("/sales/{id}", controllers.SaleGet(d.Sales, d.Settings, d.Logger))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", controllers.ReportSales(d.Reports, d.Logger))
			r.Get("/daily", controllers.ReportDailySummary(d.Reports, d.Logger))
			r.Get("/top-products", controllers.ReportTopProducts(d.Reports, d.Logger))
			r.Get("/low-stock", controllers.ReportLowStock(d.Reports, d.Logger))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsList(d.Settings, d.Logger))
			r.Put("/", controllers.SettingsUpdate(d.Settings, d.Logger))
		})
	})

	return r
}
