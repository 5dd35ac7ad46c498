// Package geo resolves a coarse visitor location from an IP address through
// a chain of public lookup services.
package geo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"church/internal/adapters/metrics"
	"church/internal/domain/visit"
)

// DefaultTimeout bounds each provider attempt.
const DefaultTimeout = 900 * time.Millisecond

// maxCached bounds the last-known-good cache.
const maxCached = 4096

// Provider looks up one IP address.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (visit.Location, error)
}

// Locator tries providers in order, each raced against a timeout. A result is
// accepted only when it is Known. Failing that, the last good answer for the
// IP is used, then visit.UnknownLocation.
type Locator struct {
	providers []Provider
	timeout   time.Duration

	mu    sync.Mutex
	cache map[string]visit.Location
}

// NewLocator creates a Locator. timeout <= 0 uses DefaultTimeout.
func NewLocator(timeout time.Duration, providers ...Provider) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{providers: providers, timeout: timeout, cache: make(map[string]visit.Location)}
}

// Locate never fails.
func (l *Locator) Locate(ctx context.Context, ip string) visit.Location {
	for _, p := range l.providers {
		loc, err := l.attempt(ctx, p, ip)
		if err != nil {
			slog.Debug("geo_event", "event", "lookup_failed", "provider", p.Name(), "error", err)
			continue
		}
		if !loc.Known() {
			continue
		}
		l.remember(ip, loc)
		metrics.GeoLookups.WithLabelValues(p.Name()).Inc()
		return loc
	}

	l.mu.Lock()
	loc, ok := l.cache[ip]
	l.mu.Unlock()
	if ok {
		metrics.GeoLookups.WithLabelValues("cache").Inc()
		return loc
	}
	metrics.GeoLookups.WithLabelValues("unknown").Inc()
	return visit.UnknownLocation
}

type lookupResult struct {
	loc visit.Location
	err error
}

// attempt races one provider against the timeout. A provider that ignores
// ctx is abandoned; its goroutine exits on its own.
func (l *Locator) attempt(ctx context.Context, p Provider, ip string) (visit.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ch := make(chan lookupResult, 1)
	go func() {
		loc, err := p.Lookup(ctx, ip)
		ch <- lookupResult{loc, err}
	}()

	select {
	case r := <-ch:
		return r.loc, r.err
	case <-ctx.Done():
		return visit.Location{}, ctx.Err()
	}
}

func (l *Locator) remember(ip string, loc visit.Location) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.cache) >= maxCached {
		clear(l.cache)
	}
	l.cache[ip] = loc
}
