package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"church/internal/adapters/blob"
	"church/internal/application/orchestrators"
	"church/internal/domain/localtime"
)

func seedSite(t *testing.T, env *testEnv) {
	t.Helper()
	env.seed(t, "events", "event_20-12-2025", map[string]any{
		"dateISO":     "2025-12-20",
		"title":       ro("Colinde"),
		"description": ro("Seara de *colinde*, toata lumea"),
		"time":        "18:00",
		"place":       "Sala mare",
		"address":     "Rue de la Loi 1, Bruxelles",
	})
	env.seed(t, "events", "event_01-12-2025", map[string]any{"dateISO": "2025-12-01", "title": ro("Trecut")})
	env.seed(t, "verse", "current", map[string]any{"reference": ro("Ioan 3:16"), "text": ro("Fiindca atat de mult a iubit Dumnezeu lumea")})
}

func TestHome_RendersSite(t *testing.T) {
	env := newTestEnv(t)
	seedSite(t, env)

	rec := env.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	for _, want := range []string{"Colinde", "Ioan 3:16", "<em>colinde</em>", "/events.ics"} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if strings.Contains(body, "Trecut") {
		t.Error("past event shown on the home page")
	}
}

func TestHome_LanguageQueryPersists(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/?lang=fr", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "fr") {
		t.Errorf("Set-Cookie = %q, want language cookie", rec.Header().Get("Set-Cookie"))
	}
	if !strings.Contains(rec.Body.String(), `lang="fr"`) {
		t.Error("page not rendered in French")
	}
}

func TestEventsICS(t *testing.T) {
	env := newTestEnv(t)
	seedSite(t, env)

	rec := env.do(t, http.MethodGet, "/events.ics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"UID:event_20-12-2025@church\r\n",
		"DTSTART;VALUE=DATE:20251220\r\n",
		"DTEND;VALUE=DATE:20251221\r\n",
		"SUMMARY:Colinde\r\n",
		`LOCATION:Sala mare\, Rue de la Loi 1\, Bruxelles`,
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("calendar missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "event_01-12-2025") {
		t.Error("past event exported")
	}
}

func TestFoldICS(t *testing.T) {
	short := "SUMMARY:Colinde"
	if got := foldICS(short); got != short {
		t.Errorf("foldICS(short) = %q", got)
	}

	long := "DESCRIPTION:" + strings.Repeat("ă", 60)
	folded := foldICS(long)
	for _, line := range strings.Split(folded, "\r\n") {
		if len(line) > icsLineLimit {
			t.Errorf("line of %d octets exceeds the limit", len(line))
		}
		if !strings.HasPrefix(line, "DESCRIPTION") && !strings.HasPrefix(line, " ") {
			t.Errorf("continuation line %q does not start with a space", line)
		}
	}
	if unfolded := strings.ReplaceAll(folded, "\r\n ", ""); unfolded != long {
		t.Error("unfolding does not restore the original line")
	}
}

func postForm(handler http.HandlerFunc, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestContact_FieldErrorsReRenderForm(t *testing.T) {
	env := newTestEnv(t)
	rec := postForm(handleContact, "/contact", url.Values{"name": {""}, "email": {"not-an-email"}, "message": {"Buna ziua"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Buna ziua") {
		t.Error("message not echoed back into the form")
	}
	entries, err := env.outbox.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("invalid message enqueued: %+v", entries)
	}
}

func TestContact_DeliveredRedirects(t *testing.T) {
	env := newTestEnv(t)
	rec := postForm(handleContact, "/contact", url.Values{"name": {"Ana"}, "email": {"Ana@Example.com"}, "message": {"Buna ziua"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", rec.Code, rec.Body)
	}
	if loc := rec.Header().Get("Location"); loc != "/?contact=sent#contact" {
		t.Errorf("Location = %q", loc)
	}
	if env.sender.count() != 1 {
		t.Fatalf("sent %d emails, want 1", env.sender.count())
	}
	if got := env.sender.sent[0].ReplyTo; got != "ana@example.com" {
		t.Errorf("ReplyTo = %q, want normalized visitor address", got)
	}
}

func TestContact_FailedDeliveryIsQueued(t *testing.T) {
	env := newTestEnv(t)
	env.sender.fail(errors.New("provider down"))
	rec := postForm(handleContact, "/contact", url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "message": {"Buna ziua"}})
	if loc := rec.Header().Get("Location"); loc != "/?contact=queued#contact" {
		t.Fatalf("Location = %q, want queued redirect", loc)
	}
	pending, err := env.outbox.ListPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 || pending[0].Attempts != 1 {
		t.Errorf("pending = %+v, want one entry after one attempt", pending)
	}

	page := env.do(t, http.MethodGet, "/?contact=queued", "", nil)
	if page.Code != http.StatusOK {
		t.Fatalf("home status = %d", page.Code)
	}
}

func TestContact_RejectedWithoutCSRFToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("name=Ana"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestNewsletter_SubscribeTwice(t *testing.T) {
	env := newTestEnv(t)
	body := `{"email":"Maria@Example.com","lang":"nl"}`

	rec := env.do(t, http.MethodPost, "/api/newsletter", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"existing":false`) {
		t.Errorf("first subscribe = %s", rec.Body)
	}

	rec = env.do(t, http.MethodPost, "/api/newsletter", `{"email":"maria@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"existing":true`) {
		t.Errorf("second subscribe = %s, want existing", rec.Body)
	}

	docs, err := env.docs.List(context.Background(), "newsletter")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("got %d subscribers, want 1", len(docs))
	}
}

func TestNewsletter_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/newsletter", `{"email":"nope"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/newsletter", `{"email":"a@b.be","extra":1}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestVisit_OncePerDay(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/visit", `{"path":"/","referrer":"https://www.google.com/"}`, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	visitor := cookieNamed(rec, visitorCookieName)
	day := cookieNamed(rec, visitDayCookieName)
	if visitor == nil || day == nil {
		t.Fatalf("cookies = %v, want visitor and day", rec.Result().Cookies())
	}
	if day.Value != localtime.DayKey(testNow) {
		t.Errorf("day cookie = %q", day.Value)
	}

	visits, err := env.docs.List(context.Background(), orchestrators.VisitsCollection)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("got %d visits, want 1", len(visits))
	}

	// The same browser later that day sends both cookies and is not tracked again.
	req := httptest.NewRequest(http.MethodPost, "/api/visit", strings.NewReader(`{"path":"/"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(visitor)
	req.AddCookie(day)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("repeat visit set cookies: %v", rec.Result().Cookies())
	}
}

func TestVisit_BadBodyStillNoContent(t *testing.T) {
	newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/visit", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handleVisit(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestGalleryFile(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "gallery"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gallery", "altar.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := blob.NewFSStore(dir, "")
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	deps.Files = files
	deps.Gallery = files

	rec := env.do(t, http.MethodGet, "/gallery/altar.jpg", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body)
	}
	for _, path := range []string{"/gallery/missing.jpg", "/gallery/../secret.txt", "/gallery/notes.txt"} {
		if rec := env.do(t, http.MethodGet, path, "", nil); rec.Code == http.StatusOK {
			t.Errorf("GET %s status = 200, want not found", path)
		}
	}

	home := env.do(t, http.MethodGet, "/", "", nil)
	if !strings.Contains(home.Body.String(), "/gallery/altar.jpg") {
		t.Error("home page does not link the gallery image")
	}
}
