package web

import (
	"context"
	"net/http"
	"time"

	"church/internal/adapters/blob"
	"church/internal/adapters/http/middleware"
	"church/internal/adapters/http/perf"
	accountStore "church/internal/adapters/storage/account"
	"church/internal/adapters/storage/document"
	outboxStore "church/internal/adapters/storage/outbox"
	"church/internal/application/console"
	"church/internal/application/orchestrators"
	"church/internal/config"
)

// Deps holds everything the HTTP layer talks to.
type Deps struct {
	Docs     document.Store
	Accounts accountStore.Store
	Outbox   outboxStore.Store
	// Delivery sends contact messages and serves the outbox admin actions.
	Delivery *orchestrators.OutboxProcessor
	Locator  orchestrators.Locator // nil stores visits with an unknown location
	Gallery  blob.Store            // nil hides the gallery
	Files    *blob.FSStore         // serves /gallery/ when the fs driver is used
	Consoles *console.Registry
	Sessions *middleware.SessionStore
}

// Global deps instance (set by NewMux)
var deps *Deps

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// timeNow is a variable for testability.
var timeNow = time.Now

// wsOrigins lists hosts allowed to open the admin websocket besides the page's own.
var wsOrigins []string

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the site and the admin console.
// Background upkeep started here stops with ctx.
// PRE: d.Docs, d.Accounts, d.Consoles and d.Sessions are set
// POST: Returns the handler wrapped in the middleware chain
func NewMux(ctx context.Context, cfg config.Config, d *Deps, collector *perf.Collector) (http.Handler, error) {
	deps = d
	sessions = d.Sessions
	perfCollector = collector
	wsOrigins = cfg.AllowedOrigins
	middleware.SecureCookies = cfg.IsProduction()
	middleware.TrustProxyHeaders = cfg.TrustProxy
	if cfg.RateLimitPerS > 0 {
		RateLimitPerSecond = cfg.RateLimitPerS
	}

	csrfKey, err := cfg.CSRFKey()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, cfg.StaticDir)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)
	limiter.StartSweeper(ctx, time.Minute)

	// Request flow: Timing -> Auth -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, cfg.IsProduction(), cfg.AllowedOrigins),
		middleware.RateLimit(limiter),
		middleware.Auth(sessions),
		middleware.Timing(collector, cfg.SlowRequestMS, mux.Handler),
	), nil
}
