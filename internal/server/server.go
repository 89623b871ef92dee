// Package server runs the storefront until its context is cancelled.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bookstore/config"
	"github.com/shashiranjanraj/bookstore/internal/kernel"
	"github.com/shashiranjanraj/bookstore/pkg/app"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/middleware"
	"github.com/shashiranjanraj/bookstore/pkg/schedule"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
	"github.com/shashiranjanraj/bookstore/pkg/ws"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterIdle     = 10 * time.Minute
)

// Start serves the storefront on addr over store and blocks until ctx is
// done, then drains in-flight requests.
func Start(ctx context.Context, addr string, store storage.Store) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	ws.SetCheckOrigin(ws.AllowOrigins(config.CORSOrigins()))

	proxies, err := middleware.ParseProxies(config.TrustedProxies())
	if err != nil {
		return err
	}
	limiter := middleware.NewLimiter(config.RateLimitPerMinute(), 20, proxies)

	jobs := schedule.New()
	jobs.Every(time.Minute).Name("ratelimit.sweep").WithoutOverlapping().Run(func() {
		limiter.Sweep(limiterIdle)
	})
	jobs.Start(ctx)

	k := kernel.NewHTTPKernel(kernel.Config{
		Store:   store,
		App:     app.Options{},
		Hub:     hub,
		Limiter: limiter,
		Origins: config.CORSOrigins(),
		Secure:  config.AppEnv() == "production",
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", addr, "routes", len(k.Routes()))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	logger.Info("storefront shutting down")
	return srv.Shutdown(shutdownCtx)
}
