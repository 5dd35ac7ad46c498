// Package collection implements the editable collection behind every admin
// section: local drafts over live documents, dirty detection, upcoming and
// history partitioning, id resolution with confirmation, and per-record
// save state.
package collection

import (
	"context"
	"time"

	"church/internal/adapters/storage/document"
	"church/internal/domain/localized"
)

// Field names one editable field of a record. Each kind accepts a closed set.
type Field string

// SetField is an update command for a single field, or a single language
// slot of a localized field.
type SetField struct {
	Field Field
	Lang  localized.Lang // localized fields only
	Value any            // string, bool or []string depending on the field
}

// RenameMode says what happens when a save moves a record to a new id.
type RenameMode int

const (
	// RenameNone: the id is not derived from content; no collision check.
	RenameNone RenameMode = iota
	// RenameCoexist: the new document coexists with the old one.
	// Moving a stored record, or landing on a taken id, needs confirmation.
	RenameCoexist
	// RenameReplace: the new document replaces the old one, which is deleted.
	// Landing on a taken id is an error.
	RenameReplace
)

// IdentityContext is what a kind sees when computing a record's desired id.
type IdentityContext struct {
	OriginalID string   // stored id, empty for a local draft
	Existing   []string // ids of every stored record in the collection
	Now        time.Time
}

// Kind describes one record type to the generic Editor.
type Kind[T any] interface {
	// Collection is the document collection the records live in.
	Collection() string
	// Blank returns the initial content of a new local draft.
	Blank(id string) T
	Decode(id string, fields map[string]any) T
	Encode(v T) map[string]any

	// Apply returns v with one field changed. Unknown fields fail with ErrUnknownField.
	Apply(v T, f SetField) (T, error)
	// Equal compares persisted fields: trimmed strings, per-language text, id sets as sets.
	Equal(a, b T) bool
	Validate(v T) error

	IsHistory(v T, now time.Time) bool
	Less(a, b T, history bool) bool

	// DesiredID returns the id v belongs under. Returning ic.OriginalID keeps
	// a stored record in place. A new record given an id already listed in
	// ic.Existing overwrites that document.
	DesiredID(v T, ic IdentityContext) (string, error)
	RenameMode() RenameMode
}

// AfterSaver is implemented by kinds that write companion documents after a
// successful save (e.g. archive copies).
type AfterSaver[T any] interface {
	AfterSave(ctx context.Context, store Store, id string, v T, now time.Time) error
}

// Store is the document store as seen by an Editor.
type Store interface {
	Watch(ctx context.Context, collection string) (<-chan document.Snapshot, error)
	Get(ctx context.Context, collection, id string) (document.Document, bool, error)
	Set(ctx context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error
	Delete(ctx context.Context, collection, id string) error
}
