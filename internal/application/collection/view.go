package collection

// State is the transient save state of one record.
type State string

// Record states. A record moves idle → saving → saved | error, saved falls
// back to idle after SavedRevertDelay, error stays until the next save.
// confirming waits for Confirm.
const (
	StateIdle       State = "idle"
	StateSaving     State = "saving"
	StateSaved      State = "saved"
	StateError      State = "error"
	StateConfirming State = "confirming"
)

// SaveStatus is the outcome of Save or Confirm.
type SaveStatus string

// Save outcomes.
const (
	StatusSaved             SaveStatus = "saved"
	StatusInvalid           SaveStatus = "invalid"
	StatusFailed            SaveStatus = "failed"
	StatusNeedsConfirmation SaveStatus = "needs_confirmation"
	StatusDeclined          SaveStatus = "declined"
)

// SaveResult reports a save. ID is the record id after the save; PendingID
// is the id a confirmation would write to.
type SaveResult struct {
	Status    SaveStatus `json:"status"`
	ID        string     `json:"id"`
	PendingID string     `json:"pendingId,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Row is one record as shown in an admin list.
type Row struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	Dirty     bool           `json:"dirty"`
	State     State          `json:"state"`
	Error     string         `json:"error,omitempty"`
	Expanded  bool           `json:"expanded"`
	PendingID string         `json:"pendingId,omitempty"`
	Local     bool           `json:"local"`
}

// View is the partitioned content of one collection.
type View struct {
	Collection string `json:"collection"`
	Upcoming   []Row  `json:"upcoming"`
	History    []Row  `json:"history"`
	Error      string `json:"error,omitempty"`
}

// Len returns the number of rows in both partitions.
func (v View) Len() int {
	return len(v.Upcoming) + len(v.History)
}
