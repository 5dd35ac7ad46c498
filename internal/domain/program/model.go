package program

import (
	"errors"
	"sort"
	"strings"

	"church/internal/domain/localized"
)

// Domain errors
var (
	ErrUnknownSlot = errors.New("program slot is not part of the weekly program")
)

// Slot is one recurring entry of the weekly program. The ID is a day-slot
// token (e.g. "sun-service") referenced by overrides and announcements.
type Slot struct {
	ID      string
	Weekday string // monday..sunday
	Time    string // HH:MM, Brussels
	Name    localized.Text
}

// DefaultSlots is the standing weekly program shown on the public site.
var DefaultSlots = []Slot{
	{ID: "wed-prayer", Weekday: "wednesday", Time: "19:00", Name: localized.Text{
		RO: "Seară de rugăciune", EN: "Prayer evening", FR: "Soirée de prière", NL: "Gebedsavond"}},
	{ID: "fri-youth", Weekday: "friday", Time: "19:30", Name: localized.Text{
		RO: "Întâlnirea tinerilor", EN: "Youth meeting", FR: "Réunion des jeunes", NL: "Jongerenbijeenkomst"}},
	{ID: "sun-service", Weekday: "sunday", Time: "10:00", Name: localized.Text{
		RO: "Serviciu divin", EN: "Sunday service", FR: "Culte du dimanche", NL: "Zondagsdienst"}},
	{ID: "sun-evening", Weekday: "sunday", Time: "18:00", Name: localized.Text{
		RO: "Serviciu de seară", EN: "Evening service", FR: "Culte du soir", NL: "Avonddienst"}},
}

// SlotByID looks up a slot of the default program.
func SlotByID(id string) (Slot, bool) {
	for _, s := range DefaultSlots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// ValidateSlots checks that every id names a known slot.
// PRE: none
// POST: Returns ErrUnknownSlot for the first unknown id
func ValidateSlots(ids []string) error {
	for _, id := range ids {
		if _, ok := SlotByID(id); !ok {
			return ErrUnknownSlot
		}
	}
	return nil
}

// NormalizeSlots trims, drops blanks and duplicates, and sorts the ids.
// The result is the canonical stored form of an affected-slot set.
func NormalizeSlots(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SameSlots compares two slot sets ignoring order and duplicates.
func SameSlots(a, b []string) bool {
	na, nb := NormalizeSlots(a), NormalizeSlots(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

// SlotsFromAny reads a stored id set ([]any of strings or []string).
func SlotsFromAny(v any) []string {
	switch list := v.(type) {
	case []string:
		return NormalizeSlots(list)
	case []any:
		ids := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}
		return NormalizeSlots(ids)
	}
	return []string{}
}

// Adjustment marks program slots for the current week. Overrides replace the
// slot for one week; announcements attach a note while active.
type Adjustment struct {
	SlotIDs   []string
	Message   localized.Text
	Overrides bool
}

// Entry is one slot of the computed weekly program.
type Entry struct {
	Slot       Slot
	Overridden bool
	Notes      []localized.Text
}

// Weekly applies adjustments to the default program.
// PRE: adjustments apply to the week being rendered
// POST: one entry per default slot, in program order
func Weekly(adjustments []Adjustment) []Entry {
	entries := make([]Entry, len(DefaultSlots))
	index := make(map[string]int, len(DefaultSlots))
	for i, s := range DefaultSlots {
		entries[i] = Entry{Slot: s}
		index[s.ID] = i
	}
	for _, adj := range adjustments {
		for _, id := range NormalizeSlots(adj.SlotIDs) {
			i, ok := index[id]
			if !ok {
				continue
			}
			if adj.Overrides {
				entries[i].Overridden = true
			}
			if !adj.Message.IsEmpty() {
				entries[i].Notes = append(entries[i].Notes, adj.Message)
			}
		}
	}
	return entries
}
