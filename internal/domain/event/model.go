package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"church/internal/domain/localized"
	"church/internal/domain/localtime"
)

// IDPrefix starts every event document id.
const IDPrefix = "event_"

// Domain errors
var (
	ErrInvalidDate = errors.New("event date must be a valid YYYY-MM-DD date")
	ErrEmptyTitle  = errors.New("event title is required in Romanian")
)

// Event is a dated parish event shown on the public site.
// The document id is derived from the date: event_DD-MM-YYYY.
type Event struct {
	ID          string
	DateISO     string // YYYY-MM-DD, Brussels calendar
	Title       localized.Text
	Description localized.Text // Markdown
	Image       string
	Time        string // free text, e.g. "18:00"
	Place       string
	Address     string
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if _, err := localtime.ParseDate(strings.TrimSpace(e.DateISO)); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Title.RO) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// ComputeID derives the canonical document id from an ISO date.
// PRE: dateISO is YYYY-MM-DD
// POST: Returns event_DD-MM-YYYY; recomputing from the same date yields the same id
func ComputeID(dateISO string) (string, error) {
	d, err := localtime.ParseDate(strings.TrimSpace(dateISO))
	if err != nil {
		return "", ErrInvalidDate
	}
	return fmt.Sprintf("%s%02d-%02d-%04d", IDPrefix, d.Day(), int(d.Month()), d.Year()), nil
}

// Timestamp returns the event day as Brussels local midnight.
// ok is false when DateISO does not parse.
func (e *Event) Timestamp() (time.Time, bool) {
	d, err := localtime.ParseDate(strings.TrimSpace(e.DateISO))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsPast reports whether the event day is before today in Brussels.
// Events with an unparseable date are never past so they stay visible to editors.
// INVARIANT: Event fields are not mutated
func (e *Event) IsPast(now time.Time) bool {
	ts, ok := e.Timestamp()
	if !ok {
		return false
	}
	return ts.Before(localtime.StartOfDay(now))
}
