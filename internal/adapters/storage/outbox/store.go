package outbox

import (
	"context"
	"errors"

	domain "church/internal/domain/outbox"
)

// Collection is the document store collection holding outbox entries.
const Collection = "outbox"

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("outbox entry not found")

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries that can still be attempted.
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by created_at
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListRecent returns the newest entries in any status.
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by created_at desc
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)
}
