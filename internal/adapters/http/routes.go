package web

import (
	"net/http"

	"church/internal/adapters/http/middleware"
	"church/internal/adapters/metrics"
)

func registerRoutes(mux *http.ServeMux, staticDir string) {
	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Public site
	mux.HandleFunc("GET /{$}", handleHome)
	mux.HandleFunc("GET /events.ics", handleEventsICS)
	mux.HandleFunc("POST /contact", handleContact)
	mux.HandleFunc("POST /api/newsletter", handleNewsletter)
	mux.HandleFunc("POST /api/visit", handleVisit)
	mux.HandleFunc("GET /gallery/{key...}", handleGalleryFile)

	// Auth
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)

	// Admin console
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }
	mux.Handle("GET /admin", admin(handleAdminPage))
	mux.Handle("GET /api/admin/{section}", admin(handleSectionView))
	mux.Handle("POST /api/admin/{section}", admin(handleSectionNew))
	mux.Handle("POST /api/admin/{section}/{id}/field", admin(handleRecordField))
	mux.Handle("POST /api/admin/{section}/{id}/save", admin(handleRecordSave))
	mux.Handle("POST /api/admin/{section}/{id}/confirm", admin(handleRecordConfirm))
	mux.Handle("POST /api/admin/{section}/{id}/expand", admin(handleRecordExpand))
	mux.Handle("POST /api/admin/{section}/{id}/discard", admin(handleRecordDiscard))
	mux.Handle("DELETE /api/admin/{section}/{id}", admin(handleRecordDelete))
	mux.Handle("GET /ws/admin", admin(handleAdminSocket))

	// Operations
	mux.Handle("GET /admin/outbox", admin(handleAdminOutbox))
	mux.Handle("POST /admin/outbox/{id}/retry", admin(handleAdminOutboxRetry))
	mux.Handle("POST /admin/outbox/{id}/abandon", admin(handleAdminOutboxAbandon))
	mux.Handle("GET /admin/perf", admin(handleAdminPerf))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", handleHealthz)
}
