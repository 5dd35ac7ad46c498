// Package localtime pins calendar arithmetic to the parish's reference time zone.
// Day boundaries, archive keys and collision suffixes are computed in
// Europe/Brussels regardless of the server or viewer locale.
package localtime

import (
	"time"
	_ "time/tzdata"
)

// ZoneName is the IANA name of the reference time zone.
const ZoneName = "Europe/Brussels"

// DateLayout is the ISO calendar date layout used by date-stamped records.
const DateLayout = "2006-01-02"

var zone = mustLoad(ZoneName)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("localtime: " + err.Error())
	}
	return loc
}

// Zone returns the reference location.
func Zone() *time.Location {
	return zone
}

// In converts t to the reference zone.
func In(t time.Time) time.Time {
	return t.In(zone)
}

// StartOfDay returns local midnight of the reference-zone day containing t.
// POST: result is in the reference zone
func StartOfDay(t time.Time) time.Time {
	l := t.In(zone)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, zone)
}

// ParseDate parses YYYY-MM-DD as local midnight in the reference zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, zone)
}

// DayKey returns the reference-zone calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.In(zone).Format(DateLayout)
}

// ClockSuffix returns the reference-zone wall clock of t as HHMMSS.
// Used to disambiguate document ids that collide.
func ClockSuffix(t time.Time) string {
	return t.In(zone).Format("150405")
}

// IsClockSuffix reports whether s has the shape ClockSuffix produces.
func IsClockSuffix(s string) bool {
	if len(s) != 6 {
		return false
	}
	_, err := time.Parse("150405", s)
	return err == nil
}

// ArchiveKey returns YYYY-MM-DD-HHMMSS for t in the reference zone.
func ArchiveKey(t time.Time) string {
	return t.In(zone).Format("2006-01-02-150405")
}
