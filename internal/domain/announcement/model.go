package announcement

import (
	"errors"
	"strconv"
	"strings"

	"church/internal/domain/localized"
	"church/internal/domain/program"
)

// Domain errors
var (
	ErrEmptyMessage = errors.New("announcement message is required in Romanian")
)

// Announcement attaches a message to program slots while it is active.
// Ids are numeric strings allocated as max existing id + 1.
type Announcement struct {
	ID                 string
	Active             bool
	AffectedProgramIDs []string
	Message            localized.Text
}

// Validate checks if the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if strings.TrimSpace(a.Message.RO) == "" {
		return ErrEmptyMessage
	}
	return program.ValidateSlots(a.AffectedProgramIDs)
}

// NumericID returns the id as a number; non-numeric ids report ok=false.
func (a *Announcement) NumericID() (int, bool) {
	n, err := strconv.Atoi(a.ID)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextID allocates the id for a new announcement.
// PRE: ids are the currently stored document ids
// POST: Returns max numeric id + 1, or "1" when none is numeric
func NextID(ids []string) string {
	highest := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(strings.TrimSpace(id)); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// Less orders active announcements first, then by numeric id descending.
func Less(a, b *Announcement) bool {
	if a.Active != b.Active {
		return a.Active
	}
	na, okA := a.NumericID()
	nb, okB := b.NumericID()
	switch {
	case okA && okB && na != nb:
		return na > nb
	case okA != okB:
		return okA
	}
	return a.ID > b.ID
}
