// Package server wires the lock registry to its HTTP surface.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ebogdum/lockd/auth"
	"github.com/ebogdum/lockd/config"
	"github.com/ebogdum/lockd/metrics"
	"github.com/ebogdum/lockd/registry"
	"github.com/ebogdum/lockd/server/handlers"
	lockdMiddleware "github.com/ebogdum/lockd/server/middleware"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	reg registry.Registry,
	authenticator *auth.APIKeyAuthenticator,
	serverConfig *config.ServerConfig,
	logger *zap.Logger,
) chi.Router {
	// Initialize metrics
	metrics.RegisterMetrics()

	r := chi.NewRouter()

	// Basic middleware
	r.Use(lockdMiddleware.RequestIDMiddleware())
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(serverConfig.RequestTimeout))
	r.Use(lockdMiddleware.SecurityHeaders())

	// Custom logging and metrics middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(
				r.Method,
				routePattern(r),
				http.StatusText(ww.Status()),
			).Inc()

			metrics.HTTPRequestDuration.WithLabelValues(
				r.Method,
				routePattern(r),
			).Observe(duration.Seconds())

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", duration),
				zap.String("remote_addr", r.RemoteAddr))
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			logger.Error("Failed to write health check response", zap.Error(err))
		}
	})

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Registry size snapshot
	r.Get("/stats", handlers.Stats(reg, logger))

	// Lock operations. The key is the URL path segment, taken verbatim.
	r.Post("/lock/{key}", handlers.AcquireLock(reg, logger))
	r.Post("/unlock/{key}", handlers.ReleaseLock(reg, logger))

	// Administrative purge: optionally API-key guarded, always rate limited
	purgeLimiter := rate.NewLimiter(rate.Limit(serverConfig.PurgeRatePerSec), serverConfig.PurgeBurst)
	r.With(
		lockdMiddleware.PurgeAuthMiddleware(authenticator, logger),
		lockdMiddleware.RateLimitMiddleware(purgeLimiter, logger),
	).Post("/purge", handlers.Purge(reg, logger))

	logger.Info("HTTP router configured successfully")

	return r
}

// routePattern returns the chi route pattern for metrics labels, falling back
// to the raw path for unmatched requests. Patterns keep the label cardinality
// bounded no matter how many distinct keys clients use.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}
