package verse

import (
	"errors"
	"time"

	"church/internal/domain/localized"
	"church/internal/domain/localtime"
)

// CurrentID is the document holding the verse shown on the public site.
const CurrentID = "current"

// Domain errors
var (
	ErrIncomplete = errors.New("complete all 4 languages")
)

// Verse is the monthly verse. The current document is the live one; every
// save of it also writes an archive copy keyed by the Brussels save time.
type Verse struct {
	ID        string
	Reference localized.Text
	Text      localized.Text
}

// Validate checks if the Verse has valid data.
// PRE: Verse struct is populated
// POST: Returns ErrIncomplete unless both maps carry all four languages
func (v *Verse) Validate() error {
	if !v.Reference.Complete() || !v.Text.Complete() {
		return ErrIncomplete
	}
	return nil
}

// IsArchive reports whether the document is an archived copy.
func (v *Verse) IsArchive() bool {
	return v.ID != CurrentID
}

// ArchiveID returns the id of the archive copy written at t.
func ArchiveID(t time.Time) string {
	return localtime.ArchiveKey(t)
}

// Less orders the current verse first and archive copies newest first.
// Archive keys are zero-padded timestamps, so string order is time order.
func Less(a, b *Verse) bool {
	if a.IsArchive() != b.IsArchive() {
		return !a.IsArchive()
	}
	return a.ID > b.ID
}
