package sections

import (
	"strings"
	"time"

	"church/internal/application/collection"
	"church/internal/domain/event"
)

// Event fields
const (
	EventDate        collection.Field = "dateISO"
	EventTitle       collection.Field = "title"
	EventDescription collection.Field = "description"
	EventImage       collection.Field = "image"
	EventTime        collection.Field = "time"
	EventPlace       collection.Field = "place"
	EventAddress     collection.Field = "address"
)

// EventKind is the events section.
type EventKind struct{}

// Compile-time check that EventKind satisfies collection.Kind.
var _ collection.Kind[event.Event] = EventKind{}

func (EventKind) Collection() string { return EventsCollection }

func (EventKind) Blank(id string) event.Event { return event.Event{ID: id} }

func (EventKind) Decode(id string, f map[string]any) event.Event {
	return event.Event{
		ID:          id,
		DateISO:     trim(f, "dateISO"),
		Title:       text(f, "title"),
		Description: text(f, "description"),
		Image:       trim(f, "image"),
		Time:        trim(f, "time"),
		Place:       trim(f, "place"),
		Address:     trim(f, "address"),
	}
}

func (EventKind) Encode(e event.Event) map[string]any {
	return map[string]any{
		"dateISO":     strings.TrimSpace(e.DateISO),
		"title":       e.Title.Trimmed().Map(),
		"description": e.Description.Trimmed().Map(),
		"image":       strings.TrimSpace(e.Image),
		"time":        strings.TrimSpace(e.Time),
		"place":       strings.TrimSpace(e.Place),
		"address":     strings.TrimSpace(e.Address),
	}
}

func (EventKind) Apply(e event.Event, f collection.SetField) (event.Event, error) {
	var err error
	switch f.Field {
	case EventDate:
		e.DateISO, err = collection.StringValue(f)
	case EventTitle:
		e.Title, err = collection.ApplyText(e.Title, f)
	case EventDescription:
		e.Description, err = collection.ApplyText(e.Description, f)
	case EventImage:
		e.Image, err = collection.StringValue(f)
	case EventTime:
		e.Time, err = collection.StringValue(f)
	case EventPlace:
		e.Place, err = collection.StringValue(f)
	case EventAddress:
		e.Address, err = collection.StringValue(f)
	default:
		err = collection.UnknownField(f.Field)
	}
	return e, err
}

func (EventKind) Equal(a, b event.Event) bool {
	return collection.SameString(a.DateISO, b.DateISO) &&
		a.Title.Equal(b.Title) &&
		a.Description.Equal(b.Description) &&
		collection.SameString(a.Image, b.Image) &&
		collection.SameString(a.Time, b.Time) &&
		collection.SameString(a.Place, b.Place) &&
		collection.SameString(a.Address, b.Address)
}

func (EventKind) Validate(e event.Event) error { return e.Validate() }

func (EventKind) IsHistory(e event.Event, now time.Time) bool { return e.IsPast(now) }

func (EventKind) Less(a, b event.Event, history bool) bool { return event.Less(&a, &b, history) }

// DesiredID derives event_DD-MM-YYYY from the date. A stored event whose
// date still maps to its id, suffixed or not, keeps that id.
func (EventKind) DesiredID(e event.Event, ic collection.IdentityContext) (string, error) {
	id, err := event.ComputeID(e.DateISO)
	if err != nil {
		return "", err
	}
	return keepStoredID(id, ic.OriginalID), nil
}

func (EventKind) RenameMode() collection.RenameMode { return collection.RenameCoexist }
