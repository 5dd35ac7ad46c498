// Package console groups one editor per admin section for a signed-in
// session and ties their live subscriptions to the session's lifetime.
package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"church/internal/application/collection"
	"church/internal/application/sections"
	"church/internal/domain/announcement"
	"church/internal/domain/event"
	"church/internal/domain/override"
	"church/internal/domain/subscriber"
	"church/internal/domain/verse"
)

// ErrUnknownSection is returned for a section name outside sections.Names.
var ErrUnknownSection = errors.New("unknown admin section")

// Section is the type-erased view of a collection.Editor.
type Section interface {
	Name() string
	Open(ctx context.Context) error
	Close()
	Updates() <-chan struct{}
	New() (string, error)
	SetField(id string, f collection.SetField) error
	Discard(id string) error
	Save(ctx context.Context, id string) (collection.SaveResult, error)
	Confirm(ctx context.Context, id string, accept bool) (collection.SaveResult, error)
	Delete(ctx context.Context, id string) error
	SetExpanded(id string, expanded bool) error
	View() collection.View
}

// Compile-time check that *collection.Editor satisfies Section.
var _ Section = (*collection.Editor[event.Event])(nil)

// Console owns the editors of one admin session.
type Console struct {
	sections map[string]Section
	updates  chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// New builds a console with one editor per admin section.
// PRE: deps.Store is non-nil
// POST: editors are created but not subscribed; call Open
func New(deps collection.Deps) *Console {
	list := []Section{
		collection.NewEditor[event.Event](sections.EventKind{}, deps),
		collection.NewEditor[verse.Verse](sections.VerseKind{}, deps),
		collection.NewEditor[subscriber.Subscriber](sections.NewsletterKind{}, deps),
		collection.NewEditor[override.Override](sections.OverrideKind{}, deps),
		collection.NewEditor[announcement.Announcement](sections.AnnouncementKind{}, deps),
	}
	return FromSections(list...)
}

// FromSections builds a console from prepared sections.
func FromSections(list ...Section) *Console {
	c := &Console{
		sections: make(map[string]Section, len(list)),
		updates:  make(chan struct{}, 1),
	}
	for _, s := range list {
		c.sections[s.Name()] = s
	}
	return c
}

// Open subscribes every section and fans their updates into Updates.
// PRE: Open is called once
// POST: on error every section opened so far is closed again
func (c *Console) Open(ctx context.Context) error {
	opened := make([]Section, 0, len(c.sections))
	for _, name := range c.names() {
		s := c.sections[name]
		if err := s.Open(ctx); err != nil {
			for _, o := range opened {
				o.Close()
			}
			return err
		}
		opened = append(opened, s)
	}
	for _, s := range opened {
		c.wg.Add(1)
		go func(s Section) {
			defer c.wg.Done()
			for range s.Updates() {
				select {
				case c.updates <- struct{}{}:
				default:
				}
			}
		}(s)
	}
	return nil
}

// Close tears down every subscription and pending timer.
// POST: Updates is closed
func (c *Console) Close() {
	c.once.Do(func() {
		for _, s := range c.sections {
			s.Close()
		}
		c.wg.Wait()
		close(c.updates)
		slog.Info("console_event", "event", "closed")
	})
}

// Updates signals that some section changed. Signals coalesce.
func (c *Console) Updates() <-chan struct{} {
	return c.updates
}

// Section looks up a section by collection name.
func (c *Console) Section(name string) (Section, error) {
	s, ok := c.sections[name]
	if !ok {
		return nil, ErrUnknownSection
	}
	return s, nil
}

// Views returns every section's view in console order.
func (c *Console) Views() []collection.View {
	views := make([]collection.View, 0, len(c.sections))
	for _, name := range c.names() {
		views = append(views, c.sections[name].View())
	}
	return views
}

// names returns section names in console order followed by any others.
func (c *Console) names() []string {
	out := make([]string, 0, len(c.sections))
	seen := make(map[string]bool, len(c.sections))
	for _, n := range sections.Names {
		if _, ok := c.sections[n]; ok {
			out = append(out, n)
			seen[n] = true
		}
	}
	for n := range c.sections {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}
