package sections

import (
	"time"

	"church/internal/application/collection"
	"church/internal/domain/announcement"
	"church/internal/domain/program"
)

// Announcement fields
const (
	AnnouncementActive  collection.Field = "active"
	AnnouncementSlots   collection.Field = "affectedProgramIds"
	AnnouncementMessage collection.Field = "message"
)

// AnnouncementKind is the program announcements section.
type AnnouncementKind struct{}

// Compile-time check that AnnouncementKind satisfies collection.Kind.
var _ collection.Kind[announcement.Announcement] = AnnouncementKind{}

func (AnnouncementKind) Collection() string { return AnnouncementsCollection }

func (AnnouncementKind) Blank(id string) announcement.Announcement {
	return announcement.Announcement{ID: id, Active: true, AffectedProgramIDs: []string{}}
}

func (AnnouncementKind) Decode(id string, f map[string]any) announcement.Announcement {
	return announcement.Announcement{
		ID:                 id,
		Active:             collection.Bool(f, "active"),
		AffectedProgramIDs: program.SlotsFromAny(f["affectedProgramIds"]),
		Message:            text(f, "message"),
	}
}

func (AnnouncementKind) Encode(a announcement.Announcement) map[string]any {
	return map[string]any{
		"active":             a.Active,
		"affectedProgramIds": collection.Strings(program.NormalizeSlots(a.AffectedProgramIDs)),
		"message":            a.Message.Trimmed().Map(),
	}
}

func (AnnouncementKind) Apply(a announcement.Announcement, f collection.SetField) (announcement.Announcement, error) {
	var err error
	switch f.Field {
	case AnnouncementActive:
		a.Active, err = collection.BoolValue(f)
	case AnnouncementSlots:
		a.AffectedProgramIDs, err = collection.StringsValue(f)
	case AnnouncementMessage:
		a.Message, err = collection.ApplyText(a.Message, f)
	default:
		err = collection.UnknownField(f.Field)
	}
	return a, err
}

func (AnnouncementKind) Equal(a, b announcement.Announcement) bool {
	return a.Active == b.Active &&
		program.SameSlots(a.AffectedProgramIDs, b.AffectedProgramIDs) &&
		a.Message.Equal(b.Message)
}

func (AnnouncementKind) Validate(a announcement.Announcement) error { return a.Validate() }

// IsHistory puts inactive announcements in history.
func (AnnouncementKind) IsHistory(a announcement.Announcement, _ time.Time) bool { return !a.Active }

func (AnnouncementKind) Less(a, b announcement.Announcement, _ bool) bool {
	return announcement.Less(&a, &b)
}

// DesiredID keeps stored ids; a new announcement takes max id + 1.
func (AnnouncementKind) DesiredID(_ announcement.Announcement, ic collection.IdentityContext) (string, error) {
	if ic.OriginalID != "" {
		return ic.OriginalID, nil
	}
	return announcement.NextID(ic.Existing), nil
}

func (AnnouncementKind) RenameMode() collection.RenameMode { return collection.RenameNone }
