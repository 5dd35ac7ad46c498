package console

import (
	"context"
	"log/slog"
	"sync"
)

// Registry keeps one console per session token.
type Registry struct {
	mu       sync.Mutex
	consoles map[string]*Console
	build    func() *Console
	ctx      context.Context
}

// NewRegistry creates a registry whose consoles live at most as long as ctx.
// build creates a fresh, unopened console.
func NewRegistry(ctx context.Context, build func() *Console) *Registry {
	return &Registry{consoles: make(map[string]*Console), build: build, ctx: ctx}
}

// Get returns the console of a session, opening it on first use.
// PRE: token identifies a live admin session
func (r *Registry) Get(token string) (*Console, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.consoles[token]; ok {
		return c, nil
	}
	c := r.build()
	if err := c.Open(r.ctx); err != nil {
		return nil, err
	}
	r.consoles[token] = c
	slog.Info("console_event", "event", "opened", "sessions", len(r.consoles))
	return c, nil
}

// Release closes the console of a session, if any. Called on sign-out and expiry.
func (r *Registry) Release(token string) {
	r.mu.Lock()
	c, ok := r.consoles[token]
	delete(r.consoles, token)
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Len reports the number of open consoles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consoles)
}

// CloseAll closes every console. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	list := r.consoles
	r.consoles = make(map[string]*Console)
	r.mu.Unlock()
	for _, c := range list {
		c.Close()
	}
}
