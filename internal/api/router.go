// Package api exposes the dashboard bundles as JSON over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/camaras-ia/licencias-cli/internal/dashboard"
	"github.com/camaras-ia/licencias-cli/internal/metrics"
	"github.com/camaras-ia/licencias-cli/internal/model"
)

// Dashboard is the service surface the handlers need. *dashboard.Service
// satisfies it.
type Dashboard interface {
	Overview(ctx context.Context, actor model.Actor, p metrics.OverviewParams) (*metrics.Overview, error)
	Usage(ctx context.Context, actor model.Actor, p metrics.UsageParams) (*metrics.Usage, error)
	Business(ctx context.Context, actor model.Actor) (*metrics.Business, error)
	Dashboard(ctx context.Context, actor model.Actor, p metrics.Params) (*metrics.Bundle, error)
	Refresh(ctx context.Context, actor model.Actor) (*dashboard.SnapshotInfo, error)
	Stats() dashboard.Stats
}

// Pinger checks the backing store. Optional.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// RateLimitRPS is the per-client request rate. Zero disables limiting.
	RateLimitRPS float64
	RateBurst    int
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxy bool
	// Location interprets date-only query parameters. Defaults to UTC.
	Location *time.Location
	Pinger   Pinger
}

type handler struct {
	svc    Dashboard
	loc    *time.Location
	pinger Pinger
}

// NewRouter builds the HTTP handler for the dashboard API.
func NewRouter(svc Dashboard, opts Options) http.Handler {
	h := &handler{svc: svc, loc: opts.Location, pinger: opts.Pinger}
	if h.loc == nil {
		h.loc = time.UTC
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", headerRequestID, headerActorRole, headerActorChamber},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         300,
	}))
	if opts.RateLimitRPS > 0 {
		r.Use(newClientLimiter(opts.RateLimitRPS, opts.RateBurst).middleware)
	}

	r.Get("/health", h.health)

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(requireActor)
		r.Get("/", h.dashboard)
		r.Get("/overview", h.overview)
		r.Get("/usage", h.usage)
		r.Get("/business", h.business)
		r.Get("/cache", h.cacheStats)
		r.Post("/refresh", h.refresh)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
