package outbox

import (
	"context"
	"fmt"
	"sort"
	"time"

	"church/internal/adapters/storage/document"
	domain "church/internal/domain/outbox"
)

// DocumentStore implements Store on the document store.
type DocumentStore struct {
	docs document.Store
}

// NewDocumentStore creates a new outbox store.
func NewDocumentStore(docs document.Store) *DocumentStore {
	return &DocumentStore{docs: docs}
}

// GetByID retrieves an outbox entry by its ID.
func (s *DocumentStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	doc, found, err := s.docs.Get(ctx, Collection, id)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	if !found {
		return domain.Entry{}, ErrNotFound
	}
	return decode(doc), nil
}

// Save persists an outbox entry, replacing any previous version.
func (s *DocumentStore) Save(ctx context.Context, e domain.Entry) error {
	if err := s.docs.Set(ctx, Collection, e.ID, encode(e), document.SetOptions{}); err != nil {
		return fmt.Errorf("save outbox entry: %w", err)
	}
	return nil
}

// ListPending returns retryable entries, oldest first.
func (s *DocumentStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	out := make([]domain.Entry, 0, limit)
	for _, e := range all {
		if len(out) == limit {
			break
		}
		if e.CanRetry() {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns entries newest first.
func (s *DocumentStore) ListRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *DocumentStore) list(ctx context.Context) ([]domain.Entry, error) {
	docs, err := s.docs.List(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("list outbox entries: %w", err)
	}
	out := make([]domain.Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, decode(d))
	}
	return out, nil
}

func encode(e domain.Entry) map[string]any {
	return map[string]any{
		"actionType":      e.ActionType,
		"payload":         e.Payload,
		"status":          e.Status,
		"attempts":        e.Attempts,
		"maxAttempts":     e.MaxAttempts,
		"lastAttemptedAt": formatTime(e.LastAttemptedAt),
		"createdAt":       formatTime(e.CreatedAt),
		"externalId":      e.ExternalID,
		"errorMessage":    e.ErrorMessage,
	}
}

func decode(d document.Document) domain.Entry {
	f := d.Fields
	return domain.Entry{
		ID:              d.ID,
		ActionType:      str(f["actionType"]),
		Payload:         str(f["payload"]),
		Status:          str(f["status"]),
		Attempts:        num(f["attempts"]),
		MaxAttempts:     num(f["maxAttempts"]),
		LastAttemptedAt: parseTime(f["lastAttemptedAt"]),
		CreatedAt:       parseTime(f["createdAt"]),
		ExternalID:      str(f["externalId"]),
		ErrorMessage:    str(f["errorMessage"]),
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v any) time.Time {
	t, err := time.Parse(time.RFC3339Nano, str(v))
	if err != nil {
		return time.Time{}
	}
	return t
}
