package sections_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"church/internal/adapters/storage"
	"church/internal/adapters/storage/document"
	"church/internal/application/collection"
	"church/internal/application/sections"
	"church/internal/domain/announcement"
	"church/internal/domain/event"
	"church/internal/domain/localized"
	"church/internal/domain/override"
	"church/internal/domain/subscriber"
	"church/internal/domain/verse"
)

type nopStopper struct{}

func (nopStopper) Stop() bool { return true }

// fixedClock never fires timers; saved states stay visible for assertions.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) AfterFunc(time.Duration, func()) collection.Stopper { return nopStopper{} }

// 14:30:45 UTC on 1 Dec 2025 is 15:30:45 in Brussels.
var testNow = time.Date(2025, 12, 1, 14, 30, 45, 0, time.UTC)

func newStore(t *testing.T) *document.SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, storage.DriverSQLite); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	return document.NewSQLStore(db, document.SQLite)
}

func newEditor[T any](t *testing.T, kind collection.Kind[T], store collection.Store) *collection.Editor[T] {
	t.Helper()
	e := collection.NewEditor[T](kind, collection.Deps{Store: store, Clock: fixedClock{now: testNow}})
	t.Cleanup(e.Close)
	return e
}

func load[T any](t *testing.T, e *collection.Editor[T], store *document.SQLStore) {
	t.Helper()
	docs, err := store.List(context.Background(), e.Name())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	e.Load(docs)
}

func mustSet(t *testing.T, e interface {
	SetField(string, collection.SetField) error
}, id string, f collection.SetField) {
	t.Helper()
	if err := e.SetField(id, f); err != nil {
		t.Fatalf("SetField(%s, %s): %v", id, f.Field, err)
	}
}

func TestEvents_IDFromDateAndCollisionSuffix(t *testing.T) {
	store := newStore(t)
	e := newEditor[event.Event](t, sections.EventKind{}, store)
	ctx := context.Background()

	first, _ := e.New()
	mustSet(t, e, first, collection.SetField{Field: sections.EventDate, Value: "2025-12-14"})
	mustSet(t, e, first, collection.SetField{Field: sections.EventTitle, Lang: localized.LangRO, Value: "Concert de colinde"})
	res, err := e.Save(ctx, first)
	if err != nil || res.Status != collection.StatusSaved || res.ID != "event_14-12-2025" {
		t.Fatalf("Save = %+v, %v; want event_14-12-2025", res, err)
	}

	second, _ := e.New()
	mustSet(t, e, second, collection.SetField{Field: sections.EventDate, Value: "2025-12-14"})
	mustSet(t, e, second, collection.SetField{Field: sections.EventTitle, Lang: localized.LangRO, Value: "Repetiție"})
	res, _ = e.Save(ctx, second)
	if res.Status != collection.StatusNeedsConfirmation || res.PendingID != "event_14-12-2025-153045" {
		t.Fatalf("Save on taken date = %+v, want confirmation for event_14-12-2025-153045", res)
	}
	res, _ = e.Confirm(ctx, second, true)
	if res.ID != "event_14-12-2025-153045" {
		t.Fatalf("Confirm = %+v", res)
	}

	docs, _ := store.List(ctx, sections.EventsCollection)
	if len(docs) != 2 {
		t.Errorf("stored events = %d, want 2", len(docs))
	}
}

func TestEvents_EditingSuffixedEventKeepsItsID(t *testing.T) {
	store := newStore(t)
	e := newEditor[event.Event](t, sections.EventKind{}, store)
	ctx := context.Background()

	for i, title := range []string{"Concert de colinde", "Repetiție"} {
		id, _ := e.New()
		mustSet(t, e, id, collection.SetField{Field: sections.EventDate, Value: "2025-12-14"})
		mustSet(t, e, id, collection.SetField{Field: sections.EventTitle, Lang: localized.LangRO, Value: title})
		e.Save(ctx, id)
		if i == 1 {
			e.Confirm(ctx, id, true)
		}
	}
	load(t, e, store)

	const suffixed = "event_14-12-2025-153045"
	mustSet(t, e, suffixed, collection.SetField{Field: sections.EventPlace, Value: "Sala mare"})
	res, err := e.Save(ctx, suffixed)
	if err != nil || res.Status != collection.StatusSaved || res.ID != suffixed {
		t.Fatalf("Save = %+v, %v; want saved in place as %s", res, err, suffixed)
	}

	docs, _ := store.List(ctx, sections.EventsCollection)
	if len(docs) != 2 {
		t.Errorf("stored events = %d, want 2", len(docs))
	}
	doc, _, _ := store.Get(ctx, sections.EventsCollection, suffixed)
	if got := doc.Fields["place"]; got != "Sala mare" {
		t.Errorf("place = %v, want Sala mare", got)
	}
}

func TestEvents_PartitionByBrusselsDay(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	kind := sections.EventKind{}
	for _, date := range []string{"2025-11-30", "2025-12-01", "2025-12-24", "2025-10-01"} {
		id, _ := event.ComputeID(date)
		store.Set(ctx, sections.EventsCollection, id, kind.Encode(event.Event{
			DateISO: date, Title: localized.Text{RO: "x"},
		}), document.SetOptions{})
	}
	e := newEditor[event.Event](t, kind, store)
	load(t, e, store)

	v := e.View()
	wantUp := []string{"event_01-12-2025", "event_24-12-2025"}
	wantHist := []string{"event_30-11-2025", "event_01-10-2025"}
	if len(v.Upcoming) != len(wantUp) || len(v.History) != len(wantHist) {
		t.Fatalf("upcoming=%d history=%d", len(v.Upcoming), len(v.History))
	}
	for i, id := range wantUp {
		if v.Upcoming[i].ID != id {
			t.Errorf("upcoming[%d] = %s, want %s", i, v.Upcoming[i].ID, id)
		}
	}
	for i, id := range wantHist {
		if v.History[i].ID != id {
			t.Errorf("history[%d] = %s, want %s", i, v.History[i].ID, id)
		}
	}
}

func TestVerse_RejectsIncompleteLanguages(t *testing.T) {
	store := newStore(t)
	e := newEditor[verse.Verse](t, sections.VerseKind{}, store)
	ctx := context.Background()

	id, _ := e.New()
	res, _ := e.Save(ctx, id)
	if res.Status != collection.StatusInvalid || res.Message != "complete all 4 languages" {
		t.Fatalf("Save = %+v, want invalid 'complete all 4 languages'", res)
	}
	if docs, _ := store.List(ctx, sections.VerseCollection); len(docs) != 0 {
		t.Errorf("invalid verse wrote %d documents", len(docs))
	}
}

func TestVerse_SaveWritesCurrentAndArchive(t *testing.T) {
	store := newStore(t)
	e := newEditor[verse.Verse](t, sections.VerseKind{}, store)
	ctx := context.Background()

	id, _ := e.New()
	for _, lang := range localized.Langs {
		mustSet(t, e, id, collection.SetField{Field: sections.VerseReference, Lang: lang, Value: "Ps 23:1"})
		mustSet(t, e, id, collection.SetField{Field: sections.VerseText, Lang: lang, Value: "..."})
	}
	res, _ := e.Save(ctx, id)
	if res.Status != collection.StatusSaved || res.ID != verse.CurrentID {
		t.Fatalf("Save = %+v, want saved as current", res)
	}

	_, found, _ := store.Get(ctx, sections.VerseCollection, "2025-12-01-153045")
	if !found {
		t.Error("archive copy 2025-12-01-153045 not written")
	}

	load(t, e, store)
	v := e.View()
	if len(v.Upcoming) != 1 || v.Upcoming[0].ID != verse.CurrentID {
		t.Errorf("upcoming = %+v, want only current", v.Upcoming)
	}
	if len(v.History) != 1 {
		t.Errorf("history = %d rows, want the archive copy", len(v.History))
	}
}

func TestNewsletter_EmailIsLowercasedID(t *testing.T) {
	store := newStore(t)
	e := newEditor[subscriber.Subscriber](t, sections.NewsletterKind{}, store)
	ctx := context.Background()

	id, _ := e.New()
	mustSet(t, e, id, collection.SetField{Field: sections.SubscriberEmail, Value: "Test@Example.com"})
	res, _ := e.Save(ctx, id)
	if res.Status != collection.StatusSaved || res.ID != "test@example.com" {
		t.Fatalf("Save = %+v, want test@example.com", res)
	}
}

func TestNewsletter_ChangingEmailMovesDocument(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	kind := sections.NewsletterKind{}
	store.Set(ctx, sections.NewsletterCollection, "old@example.com",
		kind.Encode(subscriber.Subscriber{Email: "old@example.com", Lang: localized.LangEN}), document.SetOptions{})

	e := newEditor[subscriber.Subscriber](t, kind, store)
	load(t, e, store)
	mustSet(t, e, "old@example.com", collection.SetField{Field: sections.SubscriberEmail, Value: "new@example.com"})
	res, _ := e.Save(ctx, "old@example.com")
	if res.Status != collection.StatusSaved || res.ID != "new@example.com" {
		t.Fatalf("Save = %+v", res)
	}
	if _, found, _ := store.Get(ctx, sections.NewsletterCollection, "old@example.com"); found {
		t.Error("old subscriber document was not deleted")
	}
	doc, found, _ := store.Get(ctx, sections.NewsletterCollection, "new@example.com")
	if !found || doc.Fields["lang"] != "en" {
		t.Errorf("new document = %+v, found=%v", doc, found)
	}
}

func TestNewsletter_InvalidEmail(t *testing.T) {
	store := newStore(t)
	e := newEditor[subscriber.Subscriber](t, sections.NewsletterKind{}, store)

	id, _ := e.New()
	mustSet(t, e, id, collection.SetField{Field: sections.SubscriberEmail, Value: "not-an-email"})
	res, _ := e.Save(context.Background(), id)
	if res.Status != collection.StatusInvalid || res.Message != subscriber.ErrInvalidEmail.Error() {
		t.Errorf("Save = %+v, want invalid email", res)
	}
	if err := e.SetField(id, collection.SetField{Field: sections.SubscriberLang, Value: "de"}); !errors.Is(err, localized.ErrUnknownLang) {
		t.Errorf("SetField(lang=de) = %v, want ErrUnknownLang", err)
	}
}

func TestOverrides_WeekKeyNormalizedAndPartitioned(t *testing.T) {
	store := newStore(t)
	e := newEditor[override.Override](t, sections.OverrideKind{}, store)
	ctx := context.Background()

	id, _ := e.New()
	mustSet(t, e, id, collection.SetField{Field: sections.OverrideWeek, Value: "2026-w1"})
	mustSet(t, e, id, collection.SetField{Field: sections.OverrideSlots, Value: []any{"sun-service"}})
	res, _ := e.Save(ctx, id)
	if res.Status != collection.StatusSaved || res.ID != "2026-W01" {
		t.Fatalf("Save = %+v, want 2026-W01", res)
	}

	store.Set(ctx, sections.OverridesCollection, "2025-W40",
		sections.OverrideKind{}.Encode(override.Override{WeekKey: "2025-W40"}), document.SetOptions{})
	load(t, e, store)
	v := e.View()
	if len(v.Upcoming) != 1 || v.Upcoming[0].ID != "2026-W01" {
		t.Errorf("upcoming = %+v", v.Upcoming)
	}
	if len(v.History) != 1 || v.History[0].ID != "2025-W40" {
		t.Errorf("history = %+v", v.History)
	}
	if got := v.Upcoming[0].Fields["weekKey"]; got != "2026-W01" {
		t.Errorf("stored weekKey = %v, want 2026-W01", got)
	}
}

func TestOverrides_EditingSuffixedWeekKeepsItsID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	kind := sections.OverrideKind{}
	store.Set(ctx, sections.OverridesCollection, "2026-W01",
		kind.Encode(override.Override{WeekKey: "2026-W01"}), document.SetOptions{})
	store.Set(ctx, sections.OverridesCollection, "2026-W01-091500",
		kind.Encode(override.Override{WeekKey: "2026-W01"}), document.SetOptions{})
	e := newEditor[override.Override](t, kind, store)
	load(t, e, store)

	mustSet(t, e, "2026-W01-091500", collection.SetField{Field: sections.OverrideSlots, Value: []any{"sun-service"}})
	res, _ := e.Save(ctx, "2026-W01-091500")
	if res.Status != collection.StatusSaved || res.ID != "2026-W01-091500" {
		t.Fatalf("Save = %+v, want saved in place", res)
	}
	if docs, _ := store.List(ctx, sections.OverridesCollection); len(docs) != 2 {
		t.Errorf("stored overrides = %d, want 2", len(docs))
	}
}

func TestOverrides_UnknownSlotRejected(t *testing.T) {
	store := newStore(t)
	e := newEditor[override.Override](t, sections.OverrideKind{}, store)

	id, _ := e.New()
	mustSet(t, e, id, collection.SetField{Field: sections.OverrideWeek, Value: "2026-W02"})
	mustSet(t, e, id, collection.SetField{Field: sections.OverrideSlots, Value: []any{"mon-gym"}})
	res, _ := e.Save(context.Background(), id)
	if res.Status != collection.StatusInvalid {
		t.Errorf("Save = %+v, want invalid", res)
	}
}

func TestAnnouncements_IDsIncrementAndOrder(t *testing.T) {
	store := newStore(t)
	e := newEditor[announcement.Announcement](t, sections.AnnouncementKind{}, store)
	ctx := context.Background()

	for i, msg := range []string{"Unu", "Doi", "Trei"} {
		id, _ := e.New()
		mustSet(t, e, id, collection.SetField{Field: sections.AnnouncementMessage, Lang: localized.LangRO, Value: msg})
		res, _ := e.Save(ctx, id)
		want := string(rune('1' + i))
		if res.Status != collection.StatusSaved || res.ID != want {
			t.Fatalf("Save #%d = %+v, want id %s", i, res, want)
		}
	}

	mustSet(t, e, "3", collection.SetField{Field: sections.AnnouncementActive, Value: false})
	e.Save(ctx, "3")
	load(t, e, store)

	v := e.View()
	if len(v.Upcoming) != 2 || v.Upcoming[0].ID != "2" || v.Upcoming[1].ID != "1" {
		t.Errorf("active = %+v, want 2 then 1", v.Upcoming)
	}
	if len(v.History) != 1 || v.History[0].ID != "3" {
		t.Errorf("history = %+v, want 3", v.History)
	}
}

func TestKinds_RejectUnknownFields(t *testing.T) {
	bad := collection.SetField{Field: "colour", Value: "red"}
	if _, err := (sections.EventKind{}).Apply(event.Event{}, bad); !errors.Is(err, collection.ErrUnknownField) {
		t.Errorf("events: %v", err)
	}
	if _, err := (sections.VerseKind{}).Apply(verse.Verse{}, bad); !errors.Is(err, collection.ErrUnknownField) {
		t.Errorf("verse: %v", err)
	}
	if _, err := (sections.NewsletterKind{}).Apply(subscriber.Subscriber{}, bad); !errors.Is(err, collection.ErrUnknownField) {
		t.Errorf("newsletter: %v", err)
	}
	if _, err := (sections.OverrideKind{}).Apply(override.Override{}, bad); !errors.Is(err, collection.ErrUnknownField) {
		t.Errorf("overrides: %v", err)
	}
	if _, err := (sections.AnnouncementKind{}).Apply(announcement.Announcement{}, bad); !errors.Is(err, collection.ErrUnknownField) {
		t.Errorf("announcements: %v", err)
	}
}

// TestKinds_EqualIsReflexive tests that a decoded record is never dirty against itself.
func TestKinds_EqualIsReflexive(t *testing.T) {
	ev := sections.EventKind{}.Decode("event_14-12-2025", map[string]any{
		"dateISO": "2025-12-14", "title": map[string]any{"ro": " Concert "}, "place": "Sala",
	})
	if !(sections.EventKind{}).Equal(ev, ev) {
		t.Error("event not equal to itself")
	}
	changed, _ := sections.EventKind{}.Apply(ev, collection.SetField{Field: sections.EventPlace, Value: "Curte"})
	if (sections.EventKind{}).Equal(ev, changed) {
		t.Error("single field change not detected")
	}
}

func TestAnnouncements_TwoEditorsNeverShareAnID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	kind := sections.AnnouncementKind{}
	first := newEditor[announcement.Announcement](t, kind, store)
	second := newEditor[announcement.Announcement](t, kind, store)
	load(t, first, store)
	load(t, second, store)

	a, _ := first.New()
	mustSet(t, first, a, collection.SetField{Field: sections.AnnouncementMessage, Lang: localized.LangRO, Value: "primul"})
	b, _ := second.New()
	mustSet(t, second, b, collection.SetField{Field: sections.AnnouncementMessage, Lang: localized.LangRO, Value: "al doilea"})

	resA, _ := first.Save(ctx, a)
	resB, _ := second.Save(ctx, b)
	if resA.Status != collection.StatusSaved || resB.Status != collection.StatusSaved {
		t.Fatalf("saves = %+v / %+v, want both saved", resA, resB)
	}
	if resA.ID != "1" || resB.ID != "2" {
		t.Errorf("ids = %s / %s, want 1 / 2", resA.ID, resB.ID)
	}

	docs, _ := store.List(ctx, sections.AnnouncementsCollection)
	got := map[string]string{}
	for _, d := range docs {
		got[d.ID] = kind.Decode(d.ID, d.Fields).Message.RO
	}
	if len(got) != 2 || got["1"] != "primul" || got["2"] != "al doilea" {
		t.Errorf("stored = %v, want both messages kept", got)
	}
}

func TestVerse_NewDraftStillReplacesCurrentStoredElsewhere(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	e := newEditor[verse.Verse](t, sections.VerseKind{}, store)
	load(t, e, store)

	full := func(s string) localized.Text { return localized.Text{RO: s, FR: s, NL: s, EN: s} }
	store.Set(ctx, sections.VerseCollection, verse.CurrentID, (sections.VerseKind{}).Encode(verse.Verse{
		Reference: full("Ioan 3:16"), Text: full("..."),
	}), document.SetOptions{})

	id, _ := e.New()
	for _, lang := range localized.Langs {
		mustSet(t, e, id, collection.SetField{Field: sections.VerseReference, Lang: lang, Value: "Ps 23:1"})
		mustSet(t, e, id, collection.SetField{Field: sections.VerseText, Lang: lang, Value: "..."})
	}
	res, _ := e.Save(ctx, id)
	if res.Status != collection.StatusSaved || res.ID != verse.CurrentID {
		t.Fatalf("Save = %+v, want saved as current", res)
	}
	doc, _, _ := store.Get(ctx, sections.VerseCollection, verse.CurrentID)
	kind := sections.VerseKind{}
	if got := kind.Decode(doc.ID, doc.Fields).Reference.RO; got != "Ps 23:1" {
		t.Errorf("current reference = %q, want Ps 23:1", got)
	}
}
