package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"church/internal/adapters/http/middleware"
	"church/internal/domain/localized"
	"church/internal/platform/i18n"
	"church/internal/platform/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response_event", "event", "encode_failed", "error", err)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLang resolves the page language and persists an explicit choice.
func requestLang(w http.ResponseWriter, r *http.Request) localized.Lang {
	lang, persist := i18n.Resolve(r)
	if persist {
		i18n.SetCookie(w, lang)
	}
	return lang
}

func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, lang localized.Lang, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"csrfToken":      func() string { return csrf.Token(r) },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"isLoggedIn":     func() bool { return loggedIn },
		"isAdmin":        func() bool { return loggedIn && sess.IsAdmin },
		"currentEmail":   func() string { return sess.Email },
		"lang":           func() string { return string(lang) },
		"langs":          func() []localized.Lang { return localized.Langs },
		"t":              func(key string) string { return i18n.T(lang, key) },
		"renderMarkdown": markdown.Render,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tpl.Execute(w, data); err != nil {
		slog.Error("render_error", "template", templateName, "error", err)
	}
}
