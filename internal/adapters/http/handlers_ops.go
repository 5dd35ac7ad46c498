package web

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// handleHealthz reports liveness and whether the document store answers.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, _, err := deps.Docs.Get(ctx, "health", "probe"); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "consoles": deps.Consoles.Len()})
}

// handleAdminPerf handles GET /admin/perf: request and query latency over a recent window.
// ?minutes= selects the window (default 15, max 1440).
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		jsonError(w, http.StatusNotFound, "performance collection is disabled")
		return
	}
	minutes := 15
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 && n <= 1440 {
		minutes = n
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}
