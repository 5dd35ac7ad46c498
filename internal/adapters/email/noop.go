package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender only logs. It stands in for Resend when no API key is configured.
type NoopSender struct{}

func NewNoopSender() *NoopSender { return &NoopSender{} }

func (NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if err := req.check(); err != nil {
		return SendResult{}, err
	}
	slog.Info("email_event", "event", "skipped", "provider", "noop", "ref", req.Ref, "subject", req.Subject)
	return SendResult{MessageID: "noop-" + uuid.NewString(), SentAt: time.Now()}, nil
}
