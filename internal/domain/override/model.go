package override

import (
	"time"

	"church/internal/domain/localized"
	"church/internal/domain/program"
)

// Override replaces the weekly program for the listed slots during one ISO week.
// The document id is the normalized week key.
type Override struct {
	ID                 string
	WeekKey            string
	AffectedProgramIDs []string
	Message            localized.Text
}

// Validate checks if the Override has valid data.
// PRE: Override struct is populated
// POST: Returns nil if valid, error otherwise
func (o *Override) Validate() error {
	if _, _, err := ParseWeekKey(o.WeekKey); err != nil {
		return err
	}
	return program.ValidateSlots(o.AffectedProgramIDs)
}

// IsPast reports whether the override week started before the current week.
// Unparseable keys are never past so editors can still fix them.
func (o *Override) IsPast(now time.Time) bool {
	start, err := WeekStart(o.WeekKey)
	if err != nil {
		return false
	}
	return start.Before(CurrentWeekStart(now))
}

// AppliesTo reports whether the override covers the week containing now.
func (o *Override) AppliesTo(now time.Time) bool {
	start, err := WeekStart(o.WeekKey)
	if err != nil {
		return false
	}
	return start.Equal(CurrentWeekStart(now))
}

// Less orders upcoming overrides soonest first and history latest first.
// Ties and unparseable keys fall back to the week key string.
func Less(a, b *Override, history bool) bool {
	sa, errA := WeekStart(a.WeekKey)
	sb, errB := WeekStart(b.WeekKey)
	switch {
	case errA == nil && errB != nil:
		return true
	case errA != nil && errB == nil:
		return false
	case errA == nil && errB == nil && !sa.Equal(sb):
		if history {
			return sa.After(sb)
		}
		return sa.Before(sb)
	}
	if history {
		return a.WeekKey > b.WeekKey
	}
	return a.WeekKey < b.WeekKey
}
