// Package i18n resolves the visitor language and translates UI strings and
// error messages through an x/text message catalog keyed by the English text.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"church/internal/domain/localized"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "church_lang"
)

var (
	tags = []language.Tag{
		language.Romanian,
		language.English,
		language.French,
		language.Dutch,
	}
	matcher = language.NewMatcher(tags)
	cat     = buildCatalog()
)

// Default is the site's primary language.
const Default = localized.LangRO

// Tag returns the language tag of lang.
func Tag(lang localized.Lang) language.Tag {
	switch lang {
	case localized.LangEN:
		return language.English
	case localized.LangFR:
		return language.French
	case localized.LangNL:
		return language.Dutch
	}
	return language.Romanian
}

// Match picks the supported language closest to the given tags.
func Match(candidates ...language.Tag) localized.Lang {
	_, idx, conf := matcher.Match(candidates...)
	if conf == language.No {
		return Default
	}
	return localized.Langs[idx]
}

// Resolve determines the language for r from the query, the cookie, then
// Accept-Language. persist is true when the query selected it.
func Resolve(r *http.Request) (lang localized.Lang, persist bool) {
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if l, err := localized.ParseLang(strings.ToLower(v)); err == nil {
			return l, true
		}
	}
	if c, err := r.Cookie(LangCookieName); err == nil {
		if l, err := localized.ParseLang(c.Value); err == nil {
			return l, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if parsed, _, err := language.ParseAcceptLanguage(accept); err == nil && len(parsed) > 0 {
			return Match(parsed...), false
		}
	}
	return Default, false
}

// SetCookie persists the language choice for a year.
func SetCookie(w http.ResponseWriter, lang localized.Lang) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// Printer returns a printer for lang backed by the site catalog.
func Printer(lang localized.Lang) *message.Printer {
	return message.NewPrinter(Tag(lang), message.Catalog(cat))
}

// T translates an English key into lang. Unknown keys come back unchanged.
func T(lang localized.Lang, key string) string {
	return Printer(lang).Sprintf(key)
}

// Error translates err's message. A nil error yields "".
func Error(lang localized.Lang, err error) string {
	if err == nil {
		return ""
	}
	return T(lang, err.Error())
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Romanian))
	for key, tr := range messages {
		_ = b.SetString(language.English, key, key)
		for lang, s := range tr {
			_ = b.SetString(Tag(lang), key, s)
		}
	}
	return b
}
