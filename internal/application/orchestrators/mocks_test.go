package orchestrators

import (
	"context"
	"sort"
	"sync"
	"time"

	emailAdapter "church/internal/adapters/email"
	accountStore "church/internal/adapters/storage/account"
	"church/internal/adapters/storage/document"
	outboxStore "church/internal/adapters/storage/outbox"
	"church/internal/domain/account"
	domainOutbox "church/internal/domain/outbox"
	"church/internal/domain/visit"
)

var testNow = time.Date(2025, 12, 1, 14, 30, 45, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// --- Mock account store ---

type mockAccountStore struct {
	accounts map[string]account.Account
	admins   map[string]bool
	saves    int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account), admins: make(map[string]bool)}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.accounts[account.NormalizeEmail(email)]
	if !ok {
		return account.Account{}, accountStore.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) IsAdmin(_ context.Context, id string) (bool, error) {
	return m.admins[id], nil
}

func (m *mockAccountStore) GrantAdmin(_ context.Context, id string) error {
	m.admins[id] = true
	return nil
}

// --- Mock outbox store ---

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]domainOutbox.Entry
	failGet error
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]domainOutbox.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (domainOutbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return domainOutbox.Entry{}, m.failGet
	}
	e, ok := m.entries[id]
	if !ok {
		return domainOutbox.Entry{}, outboxStore.ErrNotFound
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e domainOutbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domainOutbox.Entry
	for _, e := range m.entries {
		if e.CanRetry() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Mock sender ---

type mockSender struct {
	mu   sync.Mutex
	fail error
	sent []emailAdapter.SendRequest
}

func (m *mockSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return emailAdapter.SendResult{}, m.fail
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "msg-1", SentAt: testNow}, nil
}

// --- Mock document store ---

type mockDocStore struct {
	docs    map[string]map[string]any
	failGet error
	failSet error
	sets    int
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{docs: make(map[string]map[string]any)}
}

func (m *mockDocStore) Get(_ context.Context, collection, id string) (document.Document, bool, error) {
	if m.failGet != nil {
		return document.Document{}, false, m.failGet
	}
	f, ok := m.docs[collection+"/"+id]
	return document.Document{ID: id, Fields: f}, ok, nil
}

func (m *mockDocStore) Set(_ context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.sets++
	key := collection + "/" + id
	if opts.Merge {
		m.docs[key] = document.Merge(document.Clone(m.docs[key]), fields)
	} else {
		m.docs[key] = document.Clone(fields)
	}
	return nil
}

// --- Mock locator ---

type mockLocator struct {
	loc   visit.Location
	calls int
}

func (m *mockLocator) Locate(context.Context, string) visit.Location {
	m.calls++
	return m.loc
}
