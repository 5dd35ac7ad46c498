package visit

import (
	"errors"
	"strings"
	"time"

	"church/internal/domain/localtime"
)

// Unknown is the sentinel country and city when no location could be resolved.
const Unknown = "Unknown"

// MaxPathLength bounds the stored page path.
const MaxPathLength = 512

// ErrEmptyVisitor is returned when a visit has no visitor id.
var ErrEmptyVisitor = errors.New("visitor id is required")

// Location is a coarse visitor location.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// UnknownLocation is returned when every lookup failed.
var UnknownLocation = Location{Country: Unknown, City: Unknown}

// Known reports whether both parts are present and neither is the sentinel.
func (l Location) Known() bool {
	c, city := strings.TrimSpace(l.Country), strings.TrimSpace(l.City)
	return c != "" && city != "" && c != Unknown && city != Unknown
}

// Visit is one visitor's first page view on one Brussels day.
type Visit struct {
	VisitorID string
	Day       string // YYYY-MM-DD in Europe/Brussels
	Path      string
	Referrer  string
	Location  Location
	CreatedAt time.Time
}

// New builds a visit for visitorID at now.
func New(visitorID, path, referrer string, now time.Time) Visit {
	if len(path) > MaxPathLength {
		path = path[:MaxPathLength]
	}
	if len(referrer) > MaxPathLength {
		referrer = referrer[:MaxPathLength]
	}
	return Visit{
		VisitorID: strings.TrimSpace(visitorID),
		Day:       localtime.DayKey(now),
		Path:      path,
		Referrer:  referrer,
		Location:  UnknownLocation,
		CreatedAt: now,
	}
}

// Validate checks the visit can be stored.
func (v *Visit) Validate() error {
	if v.VisitorID == "" {
		return ErrEmptyVisitor
	}
	return nil
}

// DocumentID is unique per visitor and day, so a day holds at most one visit per visitor.
func (v *Visit) DocumentID() string {
	return v.Day + "_" + v.VisitorID
}
