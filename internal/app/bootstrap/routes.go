// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	categoriesfeature "github.com/dalemusser/stratashop/internal/app/features/categories"
	dashboardfeature "github.com/dalemusser/stratashop/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratashop/internal/app/features/health"
	ordersfeature "github.com/dalemusser/stratashop/internal/app/features/orders"
	productsfeature "github.com/dalemusser/stratashop/internal/app/features/products"
	usersfeature "github.com/dalemusser/stratashop/internal/app/features/users"
	categorystore "github.com/dalemusser/stratashop/internal/app/store/categories"
	orderstore "github.com/dalemusser/stratashop/internal/app/store/orders"
	productstore "github.com/dalemusser/stratashop/internal/app/store/products"
	userstore "github.com/dalemusser/stratashop/internal/app/store/users"
	"github.com/dalemusser/stratashop/internal/app/system/apicors"
	"github.com/dalemusser/stratashop/internal/app/system/apistats"
	"github.com/dalemusser/stratashop/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Layout:
//   - /health, /ready, /readyz, /livez: unauthenticated probes
//   - /metrics: Prometheus exposition
//   - /api/*: JSON console API behind bearer-key auth
//   - storage_local_url/*: uploaded images when storage is local
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	orders := orderstore.New(db)
	products := productstore.New(db)
	categories := categorystore.New(db)
	users := userstore.New(db)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request IDs are echoed in error logs.
	r.Use(chimw.RequestID)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// Security headers: X-Content-Type-Options, X-Frame-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Request count and latency per route pattern.
	r.Use(apistats.Middleware)

	// ─────────────────────────────────────────────────────────────────────────────
	// Operational endpoints
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	r.Handle("/metrics", apistats.Handler())

	// Serve uploaded images from local storage.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// ─────────────────────────────────────────────────────────────────────────────
	// Console API
	// CORS runs before auth so preflight requests, which carry no
	// Authorization header, are answered.
	// ─────────────────────────────────────────────────────────────────────────────

	ordersHandler := ordersfeature.NewHandler(orders, deps.Clock, errLog, logger)
	productsHandler := productsfeature.NewHandler(products, categories, deps.Blobs, deps.Clock, errLog, logger)
	categoriesHandler := categoriesfeature.NewHandler(categories, products, deps.Blobs, errLog, logger)
	usersHandler := usersfeature.NewHandler(users, errLog, logger)
	dashboardHandler := dashboardfeature.NewHandler(deps.Stats, errLog, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(apicors.Middleware(apicors.ParseOrigins(appCfg.APICORSOrigins)...))
		api.Use(auth.APIKeyAuth(appCfg.APIKey, logger))

		api.Mount("/orders", ordersfeature.Routes(ordersHandler))
		api.Mount("/products", productsfeature.Routes(productsHandler))
		api.Mount("/categories", categoriesfeature.Routes(categoriesHandler))
		api.Mount("/users", usersfeature.Routes(usersHandler))
		api.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

		api.NotFound(errorsHandler.NotFound)
		api.MethodNotAllowed(errorsHandler.MethodNotAllowed)
	})

	// 404 catch-all for unmatched routes
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r, nil
}
