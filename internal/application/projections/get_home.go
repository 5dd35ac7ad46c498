package projections

import (
	"context"
	"html/template"
	"sort"
	"time"

	"church/internal/adapters/blob"
	"church/internal/adapters/storage/document"
	"church/internal/application/sections"
	"church/internal/domain/announcement"
	"church/internal/domain/event"
	"church/internal/domain/localized"
	"church/internal/domain/localtime"
	"church/internal/domain/override"
	"church/internal/domain/program"
	"church/internal/domain/verse"
	"church/internal/platform/markdown"
)

// DocumentLister defines the document store interface needed by the public projections.
type DocumentLister interface {
	List(ctx context.Context, collection string) ([]document.Document, error)
	Get(ctx context.Context, collection, id string) (document.Document, bool, error)
}

// GetHomeQuery carries input for the home page projection.
type GetHomeQuery struct {
	Lang localized.Lang
	Now  time.Time
}

// GetHomeDeps holds dependencies for the home page projection.
type GetHomeDeps struct {
	Store   DocumentLister
	Gallery blob.Store // optional
}

// ProgramSlotView is one slot of the weekly program in the visitor's language.
type ProgramSlotView struct {
	ID       string
	Weekday  string
	Time     string
	Name     string
	Replaced bool
	Notes    []template.HTML
}

// EventView is one upcoming event in the visitor's language.
type EventView struct {
	ID          string
	Date        time.Time
	DateISO     string
	Title       string
	Description template.HTML
	// RawDescription is the Markdown source, used by plain-text feeds.
	RawDescription string
	Image          string
	Time           string
	Place          string
	Address        string
}

// VerseView is the current monthly verse.
type VerseView struct {
	Reference string
	Text      string
}

// HomeView is everything the public home page shows.
type HomeView struct {
	Lang    localized.Lang
	Week    string
	Program []ProgramSlotView
	Events  []EventView
	Verse   *VerseView
	Gallery []blob.Image
}

// GetHome builds the public home page.
// PRE: query.Now is set
// POST: Program has one entry per default slot; Events holds upcoming events only
// INVARIANT: only overrides of the current ISO week and active announcements apply
func GetHome(ctx context.Context, query GetHomeQuery, deps GetHomeDeps) (HomeView, error) {
	view := HomeView{Lang: query.Lang}
	year, week := query.Now.UTC().ISOWeek()
	view.Week = override.FormatWeekKey(year, week)

	adjustments, err := weekAdjustments(ctx, deps.Store, query.Now)
	if err != nil {
		return HomeView{}, err
	}
	for _, e := range program.Weekly(adjustments) {
		slot := ProgramSlotView{
			ID:       e.Slot.ID,
			Weekday:  e.Slot.Weekday,
			Time:     e.Slot.Time,
			Name:     e.Slot.Name.Pick(query.Lang),
			Replaced: e.Overridden,
		}
		for _, n := range e.Notes {
			slot.Notes = append(slot.Notes, markdown.Render(n.Pick(query.Lang)))
		}
		view.Program = append(view.Program, slot)
	}

	view.Events, err = upcomingEvents(ctx, deps.Store, query)
	if err != nil {
		return HomeView{}, err
	}

	doc, found, err := deps.Store.Get(ctx, sections.VerseCollection, verse.CurrentID)
	if err != nil {
		return HomeView{}, err
	}
	if found {
		v := sections.VerseKind{}.Decode(doc.ID, doc.Fields)
		if !v.Reference.IsEmpty() || !v.Text.IsEmpty() {
			view.Verse = &VerseView{Reference: v.Reference.Pick(query.Lang), Text: v.Text.Pick(query.Lang)}
		}
	}

	if deps.Gallery != nil {
		view.Gallery, err = blob.Gallery(ctx, deps.Gallery)
		if err != nil {
			return HomeView{}, err
		}
	}
	return view, nil
}

// UpcomingEvents lists events that are not yet past, soonest first.
func UpcomingEvents(ctx context.Context, store DocumentLister, query GetHomeQuery) ([]EventView, error) {
	return upcomingEvents(ctx, store, query)
}

func upcomingEvents(ctx context.Context, store DocumentLister, query GetHomeQuery) ([]EventView, error) {
	docs, err := store.List(ctx, sections.EventsCollection)
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(docs))
	for _, d := range docs {
		e := sections.EventKind{}.Decode(d.ID, d.Fields)
		if _, ok := e.Timestamp(); !ok || e.IsPast(query.Now) {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return event.Less(&events[i], &events[j], false) })

	out := make([]EventView, 0, len(events))
	for _, e := range events {
		date, _ := localtime.ParseDate(e.DateISO)
		out = append(out, EventView{
			ID:             e.ID,
			Date:           date,
			DateISO:        e.DateISO,
			Title:          e.Title.Pick(query.Lang),
			Description:    markdown.Render(e.Description.Pick(query.Lang)),
			RawDescription: e.Description.Pick(query.Lang),
			Image:          e.Image,
			Time:           e.Time,
			Place:          e.Place,
			Address:        e.Address,
		})
	}
	return out, nil
}

func weekAdjustments(ctx context.Context, store DocumentLister, now time.Time) ([]program.Adjustment, error) {
	var adjustments []program.Adjustment

	overrides, err := store.List(ctx, sections.OverridesCollection)
	if err != nil {
		return nil, err
	}
	for _, d := range overrides {
		o := sections.OverrideKind{}.Decode(d.ID, d.Fields)
		if !o.AppliesTo(now) {
			continue
		}
		adjustments = append(adjustments, program.Adjustment{SlotIDs: o.AffectedProgramIDs, Message: o.Message, Overrides: true})
	}

	docs, err := store.List(ctx, sections.AnnouncementsCollection)
	if err != nil {
		return nil, err
	}
	list := make([]announcement.Announcement, 0, len(docs))
	for _, d := range docs {
		a := sections.AnnouncementKind{}.Decode(d.ID, d.Fields)
		if a.Active {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return announcement.Less(&list[i], &list[j]) })
	for _, a := range list {
		adjustments = append(adjustments, program.Adjustment{SlotIDs: a.AffectedProgramIDs, Message: a.Message})
	}
	return adjustments, nil
}
