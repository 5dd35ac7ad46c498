package middleware

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"church/internal/adapters/http/perf"
	"church/internal/adapters/metrics"
)

// DefaultSlowRequestMs is used when Timing gets a non-positive threshold.
const DefaultSlowRequestMs = 200

// unmatchedRoute labels requests no pattern matched, so 404 scans stay one series.
const unmatchedRoute = "unmatched"

var requestSeq atomic.Uint64

// statusWriter remembers the status a handler wrote.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to a websocket upgrade.
func (sw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := sw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	sw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

var writers = sync.Pool{New: func() any { return new(statusWriter) }}

// PatternFunc names the route a request matches, e.g. (*http.ServeMux).Handler.
type PatternFunc func(r *http.Request) (http.Handler, string)

func routeOf(pattern PatternFunc, r *http.Request) string {
	if pattern == nil {
		return unmatchedRoute
	}
	if _, p := pattern(r); p != "" {
		return p
	}
	return unmatchedRoute
}

// Timing measures every non-static request. Each one is observed in the
// church_http_request_duration_seconds histogram under its route pattern
// and status class, and recorded in collector when it is non-nil.
// Requests slower than slowMs are logged at WARN, the rest at DEBUG.
func Timing(collector *perf.Collector, slowMs int, pattern PatternFunc) func(http.Handler) http.Handler {
	if slowMs <= 0 {
		slowMs = DefaultSlowRequestMs
	}
	slow := time.Duration(slowMs) * time.Millisecond

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			route := routeOf(pattern, r)
			sw := writers.Get().(*statusWriter)
			sw.ResponseWriter, sw.status = w, http.StatusOK

			defer func() {
				elapsed := time.Since(start)
				status := sw.status
				sw.ResponseWriter = nil
				writers.Put(sw)

				metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status/100)+"xx").Observe(elapsed.Seconds())
				ms := float64(elapsed.Microseconds()) / 1000
				level := slog.LevelDebug
				msg := "request"
				if elapsed >= slow {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(context.Background(), level, msg,
					"request_id", requestSeq.Add(1),
					"method", r.Method,
					"path", r.URL.Path,
					"route", route,
					"status", status,
					"duration_ms", ms,
				)
				if collector != nil {
					collector.Record(perf.Entry{Kind: perf.KindRequest, Label: route, StatusCode: status, DurationMs: ms, Timestamp: start})
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
