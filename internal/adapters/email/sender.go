// Package email delivers outbound mail. Contact messages are the only
// traffic; retries are driven by the outbox, not here.
package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipients is returned for a request without recipients.
var ErrNoRecipients = errors.New("email has no recipients")

// SendRequest is one message to deliver.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default address
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	// Ref identifies the message across retries, e.g. a contact message ULID.
	Ref string
	// Category groups messages in the provider dashboard.
	Category string
}

// SendResult is what the provider reported back.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

func (r SendRequest) check() error {
	for _, to := range r.To {
		if to != "" {
			return nil
		}
	}
	return ErrNoRecipients
}
