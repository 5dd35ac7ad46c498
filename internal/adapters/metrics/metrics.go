// Package metrics exposes Prometheus collectors shared by the adapters and
// the admin editors. Collectors register on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration observes HTTP request latency by route pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "church",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"pattern", "status"})

	// QueryDuration observes database call latency by operation.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "church",
		Name:      "db_query_duration_seconds",
		Help:      "Database call latency by operation.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"op"})

	// DocumentWrites counts document store mutations.
	DocumentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "document_writes_total",
		Help:      "Document store writes by collection and operation.",
	}, []string{"collection", "op"})

	// DocumentWatchers tracks live watch subscriptions.
	DocumentWatchers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "church",
		Name:      "document_watchers",
		Help:      "Live watch subscriptions by collection.",
	}, []string{"collection"})

	// EditorSaves counts admin editor save outcomes.
	EditorSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "editor_saves_total",
		Help:      "Admin editor save attempts by collection and outcome.",
	}, []string{"collection", "outcome"})

	// OutboxDeliveries counts outbound email attempts.
	OutboxDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "outbox_deliveries_total",
		Help:      "Outbound email delivery attempts by outcome.",
	}, []string{"outcome"})

	// GeoLookups counts geolocation lookups by the source that answered.
	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "geo_lookups_total",
		Help:      "Visitor geolocation lookups by answering source.",
	}, []string{"source"})
)

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
