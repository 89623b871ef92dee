// Package kernel assembles the storefront's HTTP handler: the global
// middleware stack, the operational endpoints and the page routes.
package kernel

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bookstore/app/routes"
	"github.com/shashiranjanraj/bookstore/pkg/app"
	"github.com/shashiranjanraj/bookstore/pkg/metrics"
	"github.com/shashiranjanraj/bookstore/pkg/middleware"
	"github.com/shashiranjanraj/bookstore/pkg/reqid"
	"github.com/shashiranjanraj/bookstore/pkg/response"
	"github.com/shashiranjanraj/bookstore/pkg/router"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
	"github.com/shashiranjanraj/bookstore/pkg/visitor"
	"github.com/shashiranjanraj/bookstore/pkg/ws"
)

// Config is what the kernel is built from.
type Config struct {
	Store   storage.Store
	App     app.Options
	Hub     *ws.Hub
	Limiter *middleware.Limiter
	Origins []string

	// Secure marks the visitor cookie Secure (production).
	Secure bool
}

// HTTPKernel owns the router.
type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel wires the middleware stack and every route.
func NewHTTPKernel(cfg Config) *HTTPKernel {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics: outermost for accurate total latency
	//  2. Recovery: catches panics before they kill the goroutine
	//  3. Request ID: inject unique ID before anything logs
	//  4. Logger: logs request_id from context
	//  5. Rate limiter: reject abusers early
	//  6. CORS
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	if cfg.Limiter != nil {
		r.Use(middleware.RateLimit(cfg.Limiter))
	}
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(cfg.Origins)))

	r.Handle("/metrics", metrics.Handler())
	r.Handle("/healthz", healthz(cfg.Store))

	visitors := visitor.NewManager(cfg.Store, cfg.App, cfg.Hub, cfg.Secure)
	routes.RegisterAPI(r, visitors.Middleware)
	if cfg.Hub != nil {
		routes.RegisterLive(r, cfg.Hub, visitors.Middleware)
	}

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the named routes.
func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }

// healthz answers 200 while the state store is reachable.
func healthz(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.Get("healthz"); err != nil && !errors.Is(err, storage.ErrNotFound) {
			response.Error(w, http.StatusServiceUnavailable, "state store unavailable")
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
