package override

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidWeekKey is returned when a week key does not name an ISO week.
var ErrInvalidWeekKey = errors.New("week must look like YYYY-W## with a week between 1 and 53")

var weekKeyPattern = regexp.MustCompile(`^\s*(\d{4})-[Ww](\d{1,2})\s*$`)

// ParseWeekKey reads an ISO week key. Lowercase "w" and single-digit weeks are
// accepted so hand-typed input normalizes cleanly.
// PRE: none
// POST: 1 <= week <= 53 on success
func ParseWeekKey(s string) (year, week int, err error) {
	m := weekKeyPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, ErrInvalidWeekKey
	}
	year, _ = strconv.Atoi(m[1])
	week, _ = strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return 0, 0, ErrInvalidWeekKey
	}
	return year, week, nil
}

// FormatWeekKey renders the canonical YYYY-W## form.
func FormatWeekKey(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// NormalizeWeekKey parses and re-formats a key.
// INVARIANT: FormatWeekKey(ParseWeekKey(k)) == NormalizeWeekKey(k)
func NormalizeWeekKey(s string) (string, error) {
	year, week, err := ParseWeekKey(s)
	if err != nil {
		return "", err
	}
	return FormatWeekKey(year, week), nil
}

// StartOfISOWeekUTC returns Monday 12:00 UTC of the given ISO week.
// Noon keeps the instant on the same calendar day in every European zone.
func StartOfISOWeekUTC(year, week int) time.Time {
	// 4 January always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 12, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}

// CurrentWeekStart returns the Monday 12:00 UTC of the ISO week containing now.
func CurrentWeekStart(now time.Time) time.Time {
	year, week := now.UTC().ISOWeek()
	return StartOfISOWeekUTC(year, week)
}

// WeekStart parses key and returns its Monday 12:00 UTC.
func WeekStart(key string) (time.Time, error) {
	year, week, err := ParseWeekKey(key)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfISOWeekUTC(year, week), nil
}
