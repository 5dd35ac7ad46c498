package collection

import "time"

// SavedRevertDelay is how long a record shows "saved" before returning to idle.
const SavedRevertDelay = 900 * time.Millisecond

// Stopper cancels a pending timer.
type Stopper interface {
	Stop() bool
}

// Clock supplies time and timers to an Editor.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc runs f in its own goroutine after d.
func (SystemClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }
