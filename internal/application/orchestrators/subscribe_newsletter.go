package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"church/internal/adapters/storage/document"
	"church/internal/application/sections"
	"church/internal/domain/localized"
	"church/internal/domain/subscriber"
)

// DocumentStoreForSubscribe defines the store interface needed by Subscribe.
type DocumentStoreForSubscribe interface {
	Get(ctx context.Context, collection, id string) (document.Document, bool, error)
	Set(ctx context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error
}

// SubscribeInput carries the public newsletter form.
type SubscribeInput struct {
	Email string
	Lang  localized.Lang
}

// SubscribeResult reports the stored subscriber.
type SubscribeResult struct {
	ID string
	// Existing is true when the address was already subscribed.
	Existing bool
}

// SubscribeDeps holds dependencies for Subscribe.
type SubscribeDeps struct {
	Store DocumentStoreForSubscribe
	Now   func() time.Time
}

// ExecuteSubscribe adds an address to the newsletter.
// PRE: input comes from the public newsletter form
// POST: newsletter/{email} exists; subscribedAt is set once and never moved
// INVARIANT: the document id is the normalized email
func ExecuteSubscribe(ctx context.Context, input SubscribeInput, deps SubscribeDeps) (SubscribeResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	sub := subscriber.Subscriber{Email: input.Email, Lang: input.Lang}
	if err := sub.Validate(); err != nil {
		return SubscribeResult{}, err
	}
	if _, err := localized.ParseLang(string(sub.Lang)); err != nil {
		sub.Lang = localized.LangRO
	}
	id := sub.DocumentID()

	_, exists, err := deps.Store.Get(ctx, sections.NewsletterCollection, id)
	if err != nil {
		return SubscribeResult{}, err
	}

	fields := map[string]any{
		"email": id,
		"lang":  string(sub.Lang),
	}
	if !exists {
		fields["subscribedAt"] = now().UTC().Format(time.RFC3339)
	}
	if err := deps.Store.Set(ctx, sections.NewsletterCollection, id, fields, document.SetOptions{Merge: true}); err != nil {
		return SubscribeResult{}, err
	}

	slog.Info("newsletter_event", "event", "subscribed", "existing", exists, "lang", sub.Lang)
	return SubscribeResult{ID: id, Existing: exists}, nil
}
