package collection

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"church/internal/adapters/metrics"
	"church/internal/adapters/storage/document"
	"church/internal/domain/localtime"
)

// LocalIDPrefix marks drafts that have never been stored.
const LocalIDPrefix = "new-"

// maxAllocations bounds how often a new record's id is asked for again
// after losing it to a concurrent save.
const maxAllocations = 5

// Editor errors
var (
	ErrNoRecord     = errors.New("record not found")
	ErrBusy         = errors.New("record is already being saved")
	ErrClosed       = errors.New("editor is closed")
	ErrNoPending    = errors.New("no confirmation is pending for this record")
	ErrIDTaken      = errors.New("another record already uses this id")
	ErrSaveFailed   = errors.New("could not save, please try again")
	ErrDeleteFailed = errors.New("could not delete, please try again")
	ErrLoadFailed   = errors.New("could not load records")
)

// Deps holds dependencies for an Editor.
type Deps struct {
	Store Store
	Clock Clock
	// NewID generates the suffix of local draft ids. Defaults to uuid.NewString.
	NewID func() string
}

type pendingConfirm[T any] struct {
	target   string
	original string
	draft    T
}

type revertTimer struct {
	stop Stopper
	seq  uint64
}

// Editor holds local drafts for one collection on top of live snapshots.
// Every piece of per-record state is keyed by record id, so one record's
// save, failure or timer never touches another.
type Editor[T any] struct {
	kind  Kind[T]
	store Store
	clock Clock
	newID func() string

	mu       sync.Mutex
	alive    bool
	auth     map[string]T
	drafts   map[string]T
	states   map[string]State
	errs     map[string]error
	expanded map[string]bool
	pending  map[string]pendingConfirm[T]
	timers   map[string]revertTimer
	timerSeq uint64
	loadErr  error

	updates chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEditor creates an Editor for kind.
// PRE: deps.Store is non-nil
// POST: the editor is alive; call Open to start the live subscription
func NewEditor[T any](kind Kind[T], deps Deps) *Editor[T] {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Editor[T]{
		kind:     kind,
		store:    deps.Store,
		clock:    deps.Clock,
		newID:    deps.NewID,
		alive:    true,
		auth:     make(map[string]T),
		drafts:   make(map[string]T),
		states:   make(map[string]State),
		errs:     make(map[string]error),
		expanded: make(map[string]bool),
		pending:  make(map[string]pendingConfirm[T]),
		timers:   make(map[string]revertTimer),
		updates:  make(chan struct{}, 1),
	}
}

// Name returns the collection the editor works on.
func (e *Editor[T]) Name() string {
	return e.kind.Collection()
}

// Updates delivers a signal after every state change. Signals coalesce.
// The channel is closed by Close.
func (e *Editor[T]) Updates() <-chan struct{} {
	return e.updates
}

// notify must be called with mu held.
func (e *Editor[T]) notify() {
	if !e.alive {
		return
	}
	select {
	case e.updates <- struct{}{}:
	default:
	}
}

// Open subscribes to the collection. Snapshots feed Load until Close.
// PRE: Open has not been called before
// POST: the subscription runs until Close or ctx is done
func (e *Editor[T]) Open(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	ch, err := e.store.Watch(watchCtx, e.kind.Collection())
	if err != nil {
		cancel()
		return err
	}
	e.mu.Lock()
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	go func() {
		defer close(done)
		for snap := range ch {
			if snap.Err != nil {
				slog.Warn("collection_event", "event", "snapshot_failed", "collection", e.kind.Collection(), "error", snap.Err)
				e.mu.Lock()
				e.loadErr = snap.Err
				e.notify()
				e.mu.Unlock()
				continue
			}
			e.Load(snap.Docs)
		}
	}()
	return nil
}

// Close ends the subscription, cancels every pending timer and marks the
// editor dead. Saves still in flight complete against the store but no
// longer touch editor state.
// POST: Updates is closed
func (e *Editor[T]) Close() {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.alive = false
	for id, t := range e.timers {
		t.stop.Stop()
		delete(e.timers, id)
	}
	cancel, done := e.cancel, e.done
	close(e.updates)
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Load merges an authoritative snapshot into the drafts.
// A draft is refreshed from the snapshot unless it diverges from both the
// previous and the incoming authoritative copy; unsaved local edits are
// never clobbered.
// POST: every stored record has a draft
func (e *Editor[T]) Load(docs []document.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return
	}

	incoming := make(map[string]T, len(docs))
	for _, d := range docs {
		incoming[d.ID] = e.kind.Decode(d.ID, d.Fields)
	}

	for id, fresh := range incoming {
		draft, hasDraft := e.drafts[id]
		prev, hadAuth := e.auth[id]
		switch {
		case !hasDraft:
			e.drafts[id] = fresh
		case e.kind.Equal(draft, fresh):
			e.drafts[id] = fresh
		case hadAuth && e.kind.Equal(draft, prev):
			e.drafts[id] = fresh
		}
	}

	for id := range e.auth {
		if _, still := incoming[id]; still {
			continue
		}
		draft, ok := e.drafts[id]
		if ok && !e.kind.Equal(draft, e.auth[id]) {
			// Removed elsewhere while edited here: keep the edits as an unsaved record.
			continue
		}
		e.purge(id)
	}

	e.auth = incoming
	e.loadErr = nil
	e.notify()
}

// New creates a local draft ("Nou") and returns its id.
// POST: the draft is dirty until saved
func (e *Editor[T]) New() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return "", ErrClosed
	}
	id := LocalIDPrefix + e.newID()
	e.drafts[id] = e.kind.Blank(id)
	e.expanded[id] = true
	e.notify()
	slog.Info("collection_event", "event", "draft_created", "collection", e.kind.Collection(), "id", id)
	return id, nil
}

// SetField applies one field update to a draft.
// A pending confirmation is abandoned because it no longer matches the draft.
// PRE: id names a draft
// POST: only the named field of the named draft changes
func (e *Editor[T]) SetField(id string, f SetField) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return ErrClosed
	}
	draft, ok := e.drafts[id]
	if !ok {
		return ErrNoRecord
	}
	next, err := e.kind.Apply(draft, f)
	if err != nil {
		return err
	}
	e.drafts[id] = next
	if _, ok := e.pending[id]; ok {
		delete(e.pending, id)
		e.states[id] = StateIdle
	}
	e.notify()
	return nil
}

// Discard drops a draft. A stored record is re-seeded from its
// authoritative copy; a local draft disappears.
func (e *Editor[T]) Discard(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return ErrClosed
	}
	if _, ok := e.drafts[id]; !ok {
		return ErrNoRecord
	}
	if a, ok := e.auth[id]; ok {
		e.drafts[id] = a
		delete(e.pending, id)
		delete(e.errs, id)
		e.states[id] = StateIdle
	} else {
		e.purge(id)
	}
	e.notify()
	return nil
}

// IsDirty reports whether a draft differs from its authoritative copy.
// Records with no authoritative copy are always dirty.
func (e *Editor[T]) IsDirty(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty(id)
}

func (e *Editor[T]) dirty(id string) bool {
	draft, ok := e.drafts[id]
	if !ok {
		return false
	}
	a, ok := e.auth[id]
	if !ok {
		return true
	}
	return !e.kind.Equal(draft, a)
}

// Draft returns the current draft of a record.
func (e *Editor[T]) Draft(id string) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.drafts[id]
	return d, ok
}

// State returns the transient save state of a record.
func (e *Editor[T]) State(id string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[id]
}

// SetExpanded records whether a record is shown expanded.
func (e *Editor[T]) SetExpanded(id string, expanded bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return ErrClosed
	}
	if _, ok := e.drafts[id]; !ok {
		return ErrNoRecord
	}
	if expanded {
		e.expanded[id] = true
	} else {
		delete(e.expanded, id)
	}
	e.notify()
	return nil
}

// Save validates a draft, resolves its id and writes it.
// Validation and store failures are reported in the result and on the
// record; the returned error is reserved for calls that cannot start.
// PRE: id names a draft that is not already saving
// POST: the record is saving, saved, error or confirming; siblings are untouched
func (e *Editor[T]) Save(ctx context.Context, id string) (SaveResult, error) {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return SaveResult{}, ErrClosed
	}
	draft, ok := e.drafts[id]
	if !ok {
		e.mu.Unlock()
		return SaveResult{}, ErrNoRecord
	}
	if e.states[id] == StateSaving {
		e.mu.Unlock()
		return SaveResult{}, ErrBusy
	}
	delete(e.pending, id)
	e.stopTimer(id)

	if err := e.kind.Validate(draft); err != nil {
		e.fail(id, err)
		e.mu.Unlock()
		metrics.EditorSaves.WithLabelValues(e.kind.Collection(), "invalid").Inc()
		return SaveResult{Status: StatusInvalid, ID: id, Message: err.Error()}, nil
	}

	original := ""
	if _, stored := e.auth[id]; stored {
		original = id
	}
	now := e.clock.Now()
	ic := IdentityContext{OriginalID: original, Existing: e.storedIDs(), Now: now}
	desired, err := e.kind.DesiredID(draft, ic)
	if err != nil {
		e.fail(id, err)
		e.mu.Unlock()
		metrics.EditorSaves.WithLabelValues(e.kind.Collection(), "invalid").Inc()
		return SaveResult{Status: StatusInvalid, ID: id, Message: err.Error()}, nil
	}
	e.states[id] = StateSaving
	delete(e.errs, id)
	e.notify()
	e.mu.Unlock()

	target, confirm, err := e.resolve(ctx, draft, desired, ic)
	if err != nil {
		return e.finishFailed(id, err)
	}
	if confirm {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.alive {
			return SaveResult{}, ErrClosed
		}
		e.pending[id] = pendingConfirm[T]{target: target, original: original, draft: draft}
		e.states[id] = StateConfirming
		e.notify()
		slog.Info("collection_event", "event", "confirmation_requested", "collection", e.kind.Collection(), "id", id, "target", target)
		return SaveResult{Status: StatusNeedsConfirmation, ID: id, PendingID: target}, nil
	}
	return e.write(ctx, id, target, original, draft, now)
}

// resolve turns a desired id into the id to write and whether the write
// must be confirmed first. A new record never lands on a document someone
// else stored since the last snapshot: its id is asked for again with the
// taken id counted as existing. A kind that answers with the same id
// targets that document on purpose.
func (e *Editor[T]) resolve(ctx context.Context, draft T, desired string, ic IdentityContext) (string, bool, error) {
	mode := e.kind.RenameMode()
	original := ic.OriginalID
	if desired == original || (mode == RenameNone && original != "") {
		return desired, false, nil
	}
	for range maxAllocations {
		_, taken, err := e.store.Get(ctx, e.kind.Collection(), desired)
		if err != nil {
			return "", false, err
		}
		switch {
		case !taken:
			return desired, original != "" && mode == RenameCoexist, nil
		case mode == RenameReplace:
			return "", false, ErrIDTaken
		case mode == RenameCoexist:
			return desired + "-" + localtime.ClockSuffix(ic.Now), true, nil
		}
		ic.Existing = append(slices.Clone(ic.Existing), desired)
		next, err := e.kind.DesiredID(draft, ic)
		if err != nil {
			return "", false, err
		}
		if next == desired {
			return desired, false, nil
		}
		slog.Info("collection_event", "event", "id_reallocated", "collection", e.kind.Collection(), "taken", desired, "id", next)
		desired = next
	}
	return "", false, ErrIDTaken
}

// Confirm answers a pending confirmation. Declining is a silent no-op that
// returns the record to idle; accepting performs the write.
// PRE: a confirmation is pending for id
func (e *Editor[T]) Confirm(ctx context.Context, id string, accept bool) (SaveResult, error) {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return SaveResult{}, ErrClosed
	}
	p, ok := e.pending[id]
	if !ok {
		e.mu.Unlock()
		return SaveResult{}, ErrNoPending
	}
	delete(e.pending, id)
	if !accept {
		e.states[id] = StateIdle
		e.notify()
		e.mu.Unlock()
		return SaveResult{Status: StatusDeclined, ID: id}, nil
	}
	e.states[id] = StateSaving
	e.notify()
	e.mu.Unlock()

	return e.write(ctx, id, p.target, p.original, p.draft, e.clock.Now())
}

// write persists draft under target and settles the record state.
func (e *Editor[T]) write(ctx context.Context, id, target, original string, draft T, now time.Time) (SaveResult, error) {
	coll := e.kind.Collection()
	fields := e.kind.Encode(draft)
	if err := e.store.Set(ctx, coll, target, fields, document.SetOptions{Merge: true}); err != nil {
		return e.finishFailed(id, err)
	}
	mode := e.kind.RenameMode()
	if mode == RenameReplace && original != "" && original != target {
		if err := e.store.Delete(ctx, coll, original); err != nil && !errors.Is(err, document.ErrNotFound) {
			slog.Error("collection_event", "event", "rename_cleanup_failed", "collection", coll, "id", original, "error", err)
		}
	}
	if hook, ok := e.kind.(AfterSaver[T]); ok {
		if err := hook.AfterSave(ctx, e.store, target, draft, now); err != nil {
			slog.Error("collection_event", "event", "after_save_failed", "collection", coll, "id", target, "error", err)
		}
	}
	saved := e.kind.Decode(target, fields)

	e.mu.Lock()
	defer e.mu.Unlock()
	metrics.EditorSaves.WithLabelValues(coll, "saved").Inc()
	slog.Info("collection_event", "event", "saved", "collection", coll, "id", target, "from", id)
	if !e.alive {
		return SaveResult{Status: StatusSaved, ID: target}, nil
	}

	if target != id {
		stored, ok := e.auth[id]
		if mode == RenameCoexist && original != "" && ok {
			// The old document stays; its row snaps back to the stored content.
			e.drafts[id] = stored
			e.states[id] = StateIdle
			delete(e.errs, id)
		} else {
			if e.expanded[id] {
				e.expanded[target] = true
			}
			e.purge(id)
			if mode == RenameReplace && original != "" {
				delete(e.auth, original)
			}
		}
	}
	e.auth[target] = saved
	e.drafts[target] = saved
	delete(e.errs, target)
	e.states[target] = StateSaved
	e.scheduleRevert(target)
	e.notify()
	return SaveResult{Status: StatusSaved, ID: target}, nil
}

func (e *Editor[T]) finishFailed(id string, err error) (SaveResult, error) {
	coll := e.kind.Collection()
	slog.Error("collection_event", "event", "save_failed", "collection", coll, "id", id, "error", err)
	metrics.EditorSaves.WithLabelValues(coll, "failed").Inc()
	shown := ErrSaveFailed
	if errors.Is(err, ErrIDTaken) {
		shown = ErrIDTaken
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.alive {
		e.fail(id, shown)
		e.notify()
	}
	return SaveResult{Status: StatusFailed, ID: id, Message: shown.Error()}, nil
}

// fail must be called with mu held.
func (e *Editor[T]) fail(id string, err error) {
	e.stopTimer(id)
	e.errs[id] = err
	e.states[id] = StateError
	e.notify()
}

// Delete removes a record from the store and purges all of its local state.
// Callers confirm with the user before calling.
// PRE: id names a record that is not saving
func (e *Editor[T]) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return ErrClosed
	}
	_, hasDraft := e.drafts[id]
	_, stored := e.auth[id]
	if !hasDraft && !stored {
		e.mu.Unlock()
		return ErrNoRecord
	}
	if e.states[id] == StateSaving {
		e.mu.Unlock()
		return ErrBusy
	}
	e.stopTimer(id)
	e.states[id] = StateSaving
	e.notify()
	e.mu.Unlock()

	var err error
	if stored {
		err = e.store.Delete(ctx, e.kind.Collection(), id)
		if errors.Is(err, document.ErrNotFound) {
			err = nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		slog.Error("collection_event", "event", "delete_failed", "collection", e.kind.Collection(), "id", id, "error", err)
		if e.alive {
			e.fail(id, ErrDeleteFailed)
		}
		return ErrDeleteFailed
	}
	slog.Info("collection_event", "event", "deleted", "collection", e.kind.Collection(), "id", id)
	if e.alive {
		e.purge(id)
		delete(e.auth, id)
		e.notify()
	}
	return nil
}

// purge drops every piece of per-record UI state. mu must be held.
func (e *Editor[T]) purge(id string) {
	e.stopTimer(id)
	delete(e.drafts, id)
	delete(e.states, id)
	delete(e.errs, id)
	delete(e.expanded, id)
	delete(e.pending, id)
}

// scheduleRevert starts the saved → idle timer of one record. mu must be held.
func (e *Editor[T]) scheduleRevert(id string) {
	e.stopTimer(id)
	e.timerSeq++
	seq := e.timerSeq
	stop := e.clock.AfterFunc(SavedRevertDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.alive {
			return
		}
		t, ok := e.timers[id]
		if !ok || t.seq != seq {
			return
		}
		delete(e.timers, id)
		if e.states[id] == StateSaved {
			e.states[id] = StateIdle
			e.notify()
		}
	})
	e.timers[id] = revertTimer{stop: stop, seq: seq}
}

// stopTimer cancels the pending revert of one record. mu must be held.
func (e *Editor[T]) stopTimer(id string) {
	if t, ok := e.timers[id]; ok {
		t.stop.Stop()
		delete(e.timers, id)
	}
}

func (e *Editor[T]) storedIDs() []string {
	ids := make([]string, 0, len(e.auth))
	for id := range e.auth {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// View partitions every record into upcoming and history and sorts both.
// Stored records are placed by their authoritative copy so editing a key
// field does not move the row; local drafts are listed first in upcoming.
func (e *Editor[T]) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	var local []string
	var upcoming, history []string
	for id := range e.drafts {
		a, stored := e.auth[id]
		switch {
		case !stored:
			local = append(local, id)
		case e.kind.IsHistory(a, now):
			history = append(history, id)
		default:
			upcoming = append(upcoming, id)
		}
	}
	sort.Strings(local)
	e.sortIDs(upcoming, false)
	e.sortIDs(history, true)

	v := View{
		Collection: e.kind.Collection(),
		Upcoming:   make([]Row, 0, len(local)+len(upcoming)),
		History:    make([]Row, 0, len(history)),
	}
	if e.loadErr != nil {
		v.Error = ErrLoadFailed.Error()
	}
	for _, id := range local {
		v.Upcoming = append(v.Upcoming, e.row(id))
	}
	for _, id := range upcoming {
		v.Upcoming = append(v.Upcoming, e.row(id))
	}
	for _, id := range history {
		v.History = append(v.History, e.row(id))
	}
	return v
}

func (e *Editor[T]) sortIDs(ids []string, history bool) {
	sort.SliceStable(ids, func(i, j int) bool {
		return e.kind.Less(e.auth[ids[i]], e.auth[ids[j]], history)
	})
}

func (e *Editor[T]) row(id string) Row {
	_, stored := e.auth[id]
	r := Row{
		ID:       id,
		Fields:   e.kind.Encode(e.drafts[id]),
		Dirty:    e.dirty(id),
		State:    e.states[id],
		Expanded: e.expanded[id],
		Local:    !stored,
	}
	if r.State == "" {
		r.State = StateIdle
	}
	if err := e.errs[id]; err != nil {
		r.Error = err.Error()
	}
	if p, ok := e.pending[id]; ok {
		r.PendingID = p.target
	}
	return r
}
