package sections

import (
	"context"
	"time"

	"church/internal/adapters/storage/document"
	"church/internal/application/collection"
	"church/internal/domain/localtime"
	"church/internal/domain/verse"
)

// Verse fields
const (
	VerseReference collection.Field = "reference"
	VerseText      collection.Field = "text"
)

// VerseKind is the monthly verse section. Saving the current verse also
// writes an archive copy keyed by the Brussels save time.
type VerseKind struct{}

// Compile-time checks that VerseKind satisfies collection.Kind and collection.AfterSaver.
var (
	_ collection.Kind[verse.Verse]       = VerseKind{}
	_ collection.AfterSaver[verse.Verse] = VerseKind{}
)

func (VerseKind) Collection() string { return VerseCollection }

func (VerseKind) Blank(id string) verse.Verse { return verse.Verse{ID: id} }

func (VerseKind) Decode(id string, f map[string]any) verse.Verse {
	return verse.Verse{ID: id, Reference: text(f, "reference"), Text: text(f, "text")}
}

func (VerseKind) Encode(v verse.Verse) map[string]any {
	return map[string]any{
		"reference": v.Reference.Trimmed().Map(),
		"text":      v.Text.Trimmed().Map(),
	}
}

func (VerseKind) Apply(v verse.Verse, f collection.SetField) (verse.Verse, error) {
	var err error
	switch f.Field {
	case VerseReference:
		v.Reference, err = collection.ApplyText(v.Reference, f)
	case VerseText:
		v.Text, err = collection.ApplyText(v.Text, f)
	default:
		err = collection.UnknownField(f.Field)
	}
	return v, err
}

func (VerseKind) Equal(a, b verse.Verse) bool {
	return a.Reference.Equal(b.Reference) && a.Text.Equal(b.Text)
}

func (VerseKind) Validate(v verse.Verse) error { return v.Validate() }

func (VerseKind) IsHistory(v verse.Verse, _ time.Time) bool { return v.IsArchive() }

func (VerseKind) Less(a, b verse.Verse, _ bool) bool { return verse.Less(&a, &b) }

// DesiredID keeps stored documents in place; a new draft becomes the current verse.
func (VerseKind) DesiredID(_ verse.Verse, ic collection.IdentityContext) (string, error) {
	if ic.OriginalID != "" {
		return ic.OriginalID, nil
	}
	return verse.CurrentID, nil
}

func (VerseKind) RenameMode() collection.RenameMode { return collection.RenameNone }

// AfterSave archives every save of the current verse.
func (k VerseKind) AfterSave(ctx context.Context, store collection.Store, id string, v verse.Verse, now time.Time) error {
	if id != verse.CurrentID {
		return nil
	}
	fields := k.Encode(v)
	fields["archivedAt"] = localtime.In(now).Format(time.RFC3339)
	return store.Set(ctx, VerseCollection, verse.ArchiveID(now), fields, document.SetOptions{})
}
