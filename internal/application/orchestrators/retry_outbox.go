package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"church/internal/adapters/email"
	"church/internal/adapters/metrics"
	domain "church/internal/domain/outbox"
)

// OutboxStoreForProcessor defines the store interface needed by the processor.
type OutboxStoreForProcessor interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the external ID (e.g. provider message id) and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor delivers outbox entries with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStoreForProcessor
	executors map[string]ActionExecutor
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStoreForProcessor, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		now:       time.Now,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
	}
}

// ProcessPending attempts every due pending entry.
// PRE: Context is valid
// POST: Due entries are attempted; failures stay pending until MaxAttempts
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if !entry.Due(p.now(), p.baseDelay, p.maxDelay) {
			continue
		}
		if err := p.attempt(ctx, entry); err != nil {
			slog.Error("outbox_event", "event", "process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err)
		}
	}
	return nil
}

// ProcessSingle attempts one entry now, ignoring backoff.
// PRE: entryID is non-empty
// POST: Entry is attempted and saved; returns the delivery error if any
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return entry, domain.ErrTerminal
	}
	err = p.attempt(ctx, entry)
	if saved, getErr := p.store.GetByID(ctx, entryID); getErr == nil {
		entry = saved
	}
	return entry, err
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// attempt runs one delivery and persists the outcome. The returned error is
// the delivery failure, or the save failure when delivery succeeded.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.Attempts = entry.MaxAttempts
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		if err := p.store.Save(ctx, entry); err != nil {
			return err
		}
		return fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	}

	entry.MarkAttempt(p.now())
	externalID, execErr := executor.Execute(ctx, entry.Payload)
	if execErr != nil {
		entry.MarkFailed(execErr)
		metrics.OutboxDeliveries.WithLabelValues("failed").Inc()
		slog.Warn("outbox_event", "event", "action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", execErr)
	} else {
		entry.MarkSuccess(externalID)
		metrics.OutboxDeliveries.WithLabelValues("delivered").Inc()
		slog.Info("outbox_event", "event", "action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}

	if err := p.store.Save(ctx, entry); err != nil {
		if execErr != nil {
			return execErr
		}
		return err
	}
	return execErr
}

// --- Contact Email Executor ---

// ContactEmailPayload is the JSON structure of a contact delivery.
type ContactEmailPayload struct {
	MessageID string `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Body      string `json:"body"`
	Lang      string `json:"lang"`
	SentAt    string `json:"sent_at"`
}

// ContactEmailExecutor forwards contact messages to the church inbox.
type ContactEmailExecutor struct {
	Sender email.Sender
	Inbox  string
}

// Execute sends the contact message with the visitor as reply-to.
// PRE: payload is valid JSON matching ContactEmailPayload
// POST: email accepted by the provider; returns its message ID
// INVARIANT: outbox entry status managed by caller
func (e *ContactEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p ContactEmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	subject := "Mesaj nou de pe site de la " + p.Name
	body := fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; (%s)</p><p>%s</p>",
		html.EscapeString(p.Name), html.EscapeString(p.Email), html.EscapeString(p.Lang),
		strings.ReplaceAll(html.EscapeString(p.Body), "\n", "<br>"))

	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:       []string{e.Inbox},
		Subject:  subject,
		HTML:     body,
		Text:     p.Name + " <" + p.Email + ">\n\n" + p.Body,
		ReplyTo:  p.Email,
		Ref:      p.MessageID,
		Category: "contact",
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}
