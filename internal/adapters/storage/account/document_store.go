package account

import (
	"context"
	"fmt"
	"sort"
	"time"

	"church/internal/adapters/storage/document"
	domain "church/internal/domain/account"
)

// DocumentStore implements Store on the document store. Accounts are keyed by
// normalized email; admin membership is a document in the admins collection.
type DocumentStore struct {
	docs document.Store
	now  func() time.Time
}

// NewDocumentStore creates a new account store.
func NewDocumentStore(docs document.Store) *DocumentStore {
	return &DocumentStore{docs: docs, now: time.Now}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *DocumentStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	doc, found, err := s.docs.Get(ctx, AccountsCollection, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	if !found {
		return domain.Account{}, ErrNotFound
	}
	return decode(doc), nil
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *DocumentStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return s.GetByID(ctx, domain.NormalizeEmail(email))
}

// Save persists an Account.
// PRE: entity has been validated
// POST: Entity is persisted under its normalized email
func (s *DocumentStore) Save(ctx context.Context, a domain.Account) error {
	if a.ID == "" {
		a.ID = domain.NormalizeEmail(a.Email)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	if err := s.docs.Set(ctx, AccountsCollection, a.ID, encode(a), document.SetOptions{}); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// List returns every account ordered by email.
func (s *DocumentStore) List(ctx context.Context) ([]domain.Account, error) {
	docs, err := s.docs.List(ctx, AccountsCollection)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]domain.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, decode(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// IsAdmin reports whether an admin membership document exists for id.
func (s *DocumentStore) IsAdmin(ctx context.Context, id string) (bool, error) {
	_, found, err := s.docs.Get(ctx, AdminsCollection, id)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return found, nil
}

// GrantAdmin writes the admin membership document for id.
func (s *DocumentStore) GrantAdmin(ctx context.Context, id string) error {
	fields := map[string]any{"grantedAt": s.now().UTC().Format(time.RFC3339)}
	if err := s.docs.Set(ctx, AdminsCollection, id, fields, document.SetOptions{}); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

func encode(a domain.Account) map[string]any {
	f := map[string]any{
		"email":        a.Email,
		"passwordHash": a.PasswordHash,
		"createdAt":    a.CreatedAt.UTC().Format(time.RFC3339),
		"failedLogins": a.FailedLogins,
		"lockedUntil":  formatTime(a.LockedUntil),
		"lastLoginAt":  formatTime(a.LastLoginAt),
	}
	return f
}

func decode(d document.Document) domain.Account {
	a := domain.Account{ID: d.ID}
	a.Email, _ = d.Fields["email"].(string)
	a.PasswordHash, _ = d.Fields["passwordHash"].(string)
	a.CreatedAt = parseTime(d.Fields["createdAt"])
	a.LockedUntil = parseTime(d.Fields["lockedUntil"])
	a.LastLoginAt = parseTime(d.Fields["lastLoginAt"])
	switch n := d.Fields["failedLogins"].(type) {
	case float64:
		a.FailedLogins = int(n)
	case int:
		a.FailedLogins = n
	}
	return a
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(v any) time.Time {
	s, _ := v.(string)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
