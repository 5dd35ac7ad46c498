package sections

import (
	"strings"
	"time"

	"church/internal/application/collection"
	"church/internal/domain/override"
	"church/internal/domain/program"
)

// Override fields
const (
	OverrideWeek    collection.Field = "weekKey"
	OverrideSlots   collection.Field = "affectedProgramIds"
	OverrideMessage collection.Field = "message"
)

// OverrideKind is the program overrides section, one document per ISO week.
type OverrideKind struct{}

// Compile-time check that OverrideKind satisfies collection.Kind.
var _ collection.Kind[override.Override] = OverrideKind{}

func (OverrideKind) Collection() string { return OverridesCollection }

func (OverrideKind) Blank(id string) override.Override {
	return override.Override{ID: id, AffectedProgramIDs: []string{}}
}

func (OverrideKind) Decode(id string, f map[string]any) override.Override {
	week := trim(f, "weekKey")
	if week == "" {
		week = id
	}
	return override.Override{
		ID:                 id,
		WeekKey:            week,
		AffectedProgramIDs: program.SlotsFromAny(f["affectedProgramIds"]),
		Message:            text(f, "message"),
	}
}

func (OverrideKind) Encode(o override.Override) map[string]any {
	week := strings.TrimSpace(o.WeekKey)
	if norm, err := override.NormalizeWeekKey(week); err == nil {
		week = norm
	}
	return map[string]any{
		"weekKey":            week,
		"affectedProgramIds": collection.Strings(program.NormalizeSlots(o.AffectedProgramIDs)),
		"message":            o.Message.Trimmed().Map(),
	}
}

func (OverrideKind) Apply(o override.Override, f collection.SetField) (override.Override, error) {
	var err error
	switch f.Field {
	case OverrideWeek:
		o.WeekKey, err = collection.StringValue(f)
	case OverrideSlots:
		o.AffectedProgramIDs, err = collection.StringsValue(f)
	case OverrideMessage:
		o.Message, err = collection.ApplyText(o.Message, f)
	default:
		err = collection.UnknownField(f.Field)
	}
	return o, err
}

func (OverrideKind) Equal(a, b override.Override) bool {
	return collection.SameString(a.WeekKey, b.WeekKey) &&
		program.SameSlots(a.AffectedProgramIDs, b.AffectedProgramIDs) &&
		a.Message.Equal(b.Message)
}

func (OverrideKind) Validate(o override.Override) error { return o.Validate() }

func (OverrideKind) IsHistory(o override.Override, now time.Time) bool { return o.IsPast(now) }

func (OverrideKind) Less(a, b override.Override, history bool) bool {
	return override.Less(&a, &b, history)
}

func (OverrideKind) DesiredID(o override.Override, ic collection.IdentityContext) (string, error) {
	id, err := override.NormalizeWeekKey(o.WeekKey)
	if err != nil {
		return "", err
	}
	return keepStoredID(id, ic.OriginalID), nil
}

func (OverrideKind) RenameMode() collection.RenameMode { return collection.RenameCoexist }
