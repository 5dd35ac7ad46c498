package event

// Less orders events for display. Upcoming events run soonest first,
// history runs most recent first; ties fall back to the id.
func Less(a, b *Event, history bool) bool {
	ta, okA := a.Timestamp()
	tb, okB := b.Timestamp()
	switch {
	case okA && !okB:
		return true
	case !okA && okB:
		return false
	case okA && okB && !ta.Equal(tb):
		if history {
			return ta.After(tb)
		}
		return ta.Before(tb)
	}
	if history {
		return a.ID > b.ID
	}
	return a.ID < b.ID
}
