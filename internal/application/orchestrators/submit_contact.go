package orchestrators

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"church/internal/domain/contact"
	"church/internal/domain/localized"
	domainOutbox "church/internal/domain/outbox"
)

// OutboxStoreForContact defines the store interface needed by SubmitContact.
type OutboxStoreForContact interface {
	Save(ctx context.Context, e domainOutbox.Entry) error
}

// ContactDelivery attempts an enqueued entry right away.
type ContactDelivery interface {
	ProcessSingle(ctx context.Context, entryID string) (domainOutbox.Entry, error)
}

// SubmitContactInput carries the contact form.
type SubmitContactInput struct {
	Name    string
	Email   string
	Message string
	Lang    localized.Lang
}

// SubmitContactResult reports what happened to the submission.
type SubmitContactResult struct {
	MessageID   string
	FieldErrors []contact.FieldError
	// Delivered is false when the immediate send failed; the outbox retries later.
	Delivered bool
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	OutboxStore OutboxStoreForContact
	Delivery    ContactDelivery
	Now         func() time.Time
}

// ExecuteSubmitContact validates a contact message, enqueues it in the outbox
// and tries one immediate delivery.
// PRE: input comes from the public contact form
// POST: on valid input an outbox entry exists whatever the delivery outcome
// INVARIANT: invalid input never reaches the outbox
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (SubmitContactResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	at := now()

	msg := contact.Message{Name: input.Name, Email: input.Email, Body: input.Message, Lang: input.Lang, CreatedAt: at}
	msg.Normalize()
	if errs := msg.Validate(); len(errs) > 0 {
		return SubmitContactResult{FieldErrors: errs}, nil
	}
	if msg.Lang == "" {
		msg.Lang = localized.LangRO
	}
	msg.ID = ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()

	payload, err := json.Marshal(ContactEmailPayload{
		MessageID: msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Body:      msg.Body,
		Lang:      string(msg.Lang),
		SentAt:    at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return SubmitContactResult{}, err
	}

	entry := domainOutbox.Entry{
		ID:         msg.ID,
		ActionType: domainOutbox.ActionTypeContactEmail,
		Payload:    string(payload),
		Status:     domainOutbox.StatusPending,
		CreatedAt:  at,
	}
	if err := entry.Validate(); err != nil {
		return SubmitContactResult{}, err
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return SubmitContactResult{}, err
	}
	slog.Info("contact_event", "event", "enqueued", "message_id", msg.ID, "lang", msg.Lang)

	result := SubmitContactResult{MessageID: msg.ID}
	if _, err := deps.Delivery.ProcessSingle(ctx, msg.ID); err != nil {
		slog.Warn("contact_event", "event", "immediate_send_failed", "message_id", msg.ID, "error", err)
		return result, nil
	}
	result.Delivered = true
	return result, nil
}
