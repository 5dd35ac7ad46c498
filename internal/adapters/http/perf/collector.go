// Package perf keeps a short in-memory history of request and query
// latencies for the admin performance page. Prometheus carries the
// long-term series; this answers "what is slow right now" without one.
package perf

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the capacity used when NewCollector gets a non-positive size.
const DefaultRingSize = 10000

// EntryKind says what an entry timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota // one HTTP request, labelled by route pattern
	KindQuery                    // one database call, labelled by operation
)

// Entry is one timing sample.
type Entry struct {
	Kind       EntryKind
	Label      string // route pattern such as "POST /api/admin/{section}/{id}/save", or "db.QueryContext"
	StatusCode int    // HTTP status, 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring of entries. Record never allocates;
// the oldest sample is overwritten once the ring is full.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	filled  bool
	count   atomic.Int64
}

// NewCollector creates a collector holding up to size samples.
// POST: storage for size entries is allocated up front
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores one sample.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.next] = e
	c.next++
	if c.next == len(c.entries) {
		c.next = 0
		c.filled = true
	}
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns how many samples were ever recorded, including overwritten ones.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// LabelStat aggregates the samples of one route or query operation.
type LabelStat struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Errors int     `json:"errors,omitempty"` // 5xx responses
	AvgMs  float64 `json:"avgMs"`
	MaxMs  float64 `json:"maxMs"`
	sumMs  float64
}

// Snapshot is the aggregated view of the samples inside a window.
type Snapshot struct {
	Since        time.Time   `json:"since"`
	Recorded     int64       `json:"recorded"`
	Requests     int         `json:"requests"`
	ServerErrors int         `json:"serverErrors"`
	RequestP50Ms float64     `json:"requestP50Ms"`
	RequestP95Ms float64     `json:"requestP95Ms"`
	RequestP99Ms float64     `json:"requestP99Ms"`
	SlowRoutes   []LabelStat `json:"slowRoutes"`
	SlowQueries  []LabelStat `json:"slowQueries"`
}

// Snapshot aggregates samples taken at or after since and returns the topN
// slowest routes and queries by average. It sorts, so call it per page view,
// not per request.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	n := c.next
	if c.filled {
		n = len(c.entries)
	}
	buf := make([]Entry, n)
	copy(buf, c.entries[:n])
	c.mu.Unlock()

	snap := Snapshot{Since: since, Recorded: c.TotalRecorded()}
	var durations []float64
	routes := map[string]*LabelStat{}
	queries := map[string]*LabelStat{}
	for _, e := range buf {
		if e.Timestamp.Before(since) {
			continue
		}
		stats := queries
		if e.Kind == KindRequest {
			stats = routes
			snap.Requests++
			durations = append(durations, e.DurationMs)
		}
		s := stats[e.Label]
		if s == nil {
			s = &LabelStat{Label: e.Label}
			stats[e.Label] = s
		}
		s.Count++
		s.sumMs += e.DurationMs
		s.MaxMs = max(s.MaxMs, e.DurationMs)
		if e.StatusCode >= 500 {
			s.Errors++
			snap.ServerErrors++
		}
	}

	snap.SlowRoutes = slowest(routes, topN)
	snap.SlowQueries = slowest(queries, topN)
	if len(durations) > 0 {
		slices.Sort(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func slowest(stats map[string]*LabelStat, n int) []LabelStat {
	list := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.sumMs / float64(s.Count)
		list = append(list, *s)
	}
	slices.SortFunc(list, func(a, b LabelStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
