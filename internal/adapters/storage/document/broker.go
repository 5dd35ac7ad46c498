package document

import (
	"context"
	"sync"
)

// broker fans change notifications out to watchers of a collection.
// Each watcher holds a one-slot wake channel, so bursts of writes
// coalesce into a single re-read.
type broker struct {
	mu       sync.Mutex
	watchers map[string]map[chan struct{}]struct{}
}

func newBroker() *broker {
	return &broker{watchers: make(map[string]map[chan struct{}]struct{})}
}

func (b *broker) subscribe(collection string) chan struct{} {
	wake := make(chan struct{}, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.watchers[collection]
	if !ok {
		set = make(map[chan struct{}]struct{})
		b.watchers[collection] = set
	}
	set[wake] = struct{}{}
	return wake
}

func (b *broker) unsubscribe(collection string, wake chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.watchers[collection]
	delete(set, wake)
	if len(set) == 0 {
		delete(b.watchers, collection)
	}
}

// notify wakes every watcher of collection without blocking.
func (b *broker) notify(collection string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for wake := range b.watchers[collection] {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

// count reports the number of live watchers of collection.
func (b *broker) count(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers[collection])
}

// watch runs the snapshot loop shared by every backend: an initial snapshot,
// then one snapshot per coalesced change until ctx is done.
// POST: the returned channel is closed after ctx is done
func (b *broker) watch(ctx context.Context, collection string, list func(context.Context, string) ([]Document, error)) <-chan Snapshot {
	wake := b.subscribe(collection)
	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		defer b.unsubscribe(collection, wake)
		for {
			docs, err := list(ctx, collection)
			if ctx.Err() != nil {
				return
			}
			snap := Snapshot{Collection: collection, Docs: docs, Err: err}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
			select {
			case <-wake:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
