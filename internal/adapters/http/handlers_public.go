package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"church/internal/adapters/blob"
	"church/internal/adapters/http/middleware"
	"church/internal/application/orchestrators"
	"church/internal/application/projections"
	"church/internal/domain/contact"
	"church/internal/domain/localized"
	"church/internal/domain/localtime"
	"church/internal/domain/subscriber"
	"church/internal/platform/i18n"
)

// Visit tracking cookies.
const (
	visitorCookieName  = "church_visitor"
	visitDayCookieName = "church_visit_day"
)

// contactForm is the contact section state echoed back to the page.
type contactForm struct {
	Name    string
	Email   string
	Message string
	Errors  map[string]string
	Sent    bool
	// Alert is shown when the message was queued for a later retry.
	Alert string
}

// homePage is the data of home.html.
type homePage struct {
	projections.HomeView
	Contact contactForm
}

// handleHome renders the public site.
func handleHome(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(w, r)
	form := contactForm{}
	switch r.URL.Query().Get("contact") {
	case "sent":
		form.Sent = true
	case "queued":
		form.Alert = i18n.Error(lang, contact.ErrDeliveryFailure)
	}
	renderHome(w, r, http.StatusOK, lang, form)
}

func renderHome(w http.ResponseWriter, r *http.Request, status int, lang localized.Lang, form contactForm) {
	view, err := projections.GetHome(r.Context(), projections.GetHomeQuery{Lang: lang, Now: timeNow()}, projections.GetHomeDeps{
		Store:   deps.Docs,
		Gallery: deps.Gallery,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, status, "home.html", lang, homePage{HomeView: view, Contact: form})
}

// handleEventsICS serves upcoming events as an iCalendar feed.
func handleEventsICS(w http.ResponseWriter, r *http.Request) {
	lang, _ := i18n.Resolve(r)
	events, err := projections.UpcomingEvents(r.Context(), deps.Docs, projections.GetHomeQuery{Lang: lang, Now: timeNow()})
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	if err := writeCalendar(w, events, timeNow()); err != nil {
		slog.Debug("ics_event", "event", "write_failed", "error", err)
	}
}

// handleContact handles POST /contact from the public form.
func handleContact(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := contactForm{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("message"),
	}

	result, err := orchestrators.ExecuteSubmitContact(r.Context(), orchestrators.SubmitContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
		Lang:    lang,
	}, orchestrators.SubmitContactDeps{
		OutboxStore: deps.Outbox,
		Delivery:    deps.Delivery,
		Now:         timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if len(result.FieldErrors) > 0 {
		form.Errors = make(map[string]string, len(result.FieldErrors))
		for _, fe := range result.FieldErrors {
			form.Errors[fe.Field] = i18n.Error(lang, fe.Err)
		}
		renderHome(w, r, http.StatusUnprocessableEntity, lang, form)
		return
	}
	outcome := "sent"
	if !result.Delivered {
		outcome = "queued"
	}
	http.Redirect(w, r, "/?contact="+outcome+"#contact", http.StatusSeeOther)
}

type newsletterRequest struct {
	Email string `json:"email"`
	Lang  string `json:"lang"`
}

// handleNewsletter handles POST /api/newsletter.
func handleNewsletter(w http.ResponseWriter, r *http.Request) {
	pageLang, _ := i18n.Resolve(r)
	var req newsletterRequest
	if err := strictDecode(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lang, err := localized.ParseLang(req.Lang)
	if err != nil {
		lang = pageLang
	}

	result, err := orchestrators.ExecuteSubscribe(r.Context(), orchestrators.SubscribeInput{
		Email: req.Email,
		Lang:  lang,
	}, orchestrators.SubscribeDeps{Store: deps.Docs, Now: timeNow})
	if errors.Is(err, subscriber.ErrInvalidEmail) {
		jsonError(w, http.StatusBadRequest, i18n.Error(lang, err))
		return
	}
	if err != nil {
		slog.Error("internal_error", "error", err.Error())
		jsonError(w, http.StatusInternalServerError, i18n.T(lang, "Something went wrong, please try again."))
		return
	}
	msg := i18n.T(lang, "Thank you for subscribing.")
	if result.Existing {
		msg = i18n.T(lang, "You are already subscribed.")
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": result.ID, "existing": result.Existing, "message": msg})
}

type visitRequest struct {
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

// handleVisit records the first page view of a visitor per Brussels day.
// Tracking never fails the caller.
func handleVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := strictDecode(r, &req); err != nil {
		slog.Debug("visit_event", "event", "bad_request", "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	now := timeNow()
	today := localtime.DayKey(now)
	if c, err := r.Cookie(visitDayCookieName); err == nil && c.Value == today {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	visitorID := ""
	if c, err := r.Cookie(visitorCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			visitorID = c.Value
		}
	}
	if visitorID == "" {
		visitorID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     visitorCookieName,
			Value:    visitorID,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			Secure:   middleware.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}

	_, err := orchestrators.ExecuteTrackVisit(r.Context(), orchestrators.TrackVisitInput{
		VisitorID: visitorID,
		IP:        middleware.ClientIP(r),
		Path:      req.Path,
		Referrer:  req.Referrer,
	}, orchestrators.TrackVisitDeps{Store: deps.Docs, Locator: deps.Locator, Now: timeNow})
	if err != nil {
		slog.Debug("visit_event", "event", "track_failed", "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     visitDayCookieName,
		Value:    today,
		Path:     "/",
		MaxAge:   int((48 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleGalleryFile serves gallery images stored on the local filesystem.
func handleGalleryFile(w http.ResponseWriter, r *http.Request) {
	if deps.Files == nil {
		http.NotFound(w, r)
		return
	}
	key, err := blob.CleanKey(blob.GalleryPrefix + r.PathValue("key"))
	if err != nil || !strings.HasPrefix(key, blob.GalleryPrefix) || !blob.IsImage(key) {
		http.NotFound(w, r)
		return
	}
	f, err := deps.Files.Open(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
