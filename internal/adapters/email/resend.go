package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// refHeader carries SendRequest.Ref so mail clients do not thread retries together.
const refHeader = "X-Entity-Ref-ID"

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	now    func() time.Time
}

// NewResendSender builds a sender for apiKey with from as the default From.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, now: time.Now}
}

// toResend maps a request onto the Resend payload.
func toResend(defaultFrom string, req SendRequest) *resend.SendEmailRequest {
	params := &resend.SendEmailRequest{
		From:    defaultFrom,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	}
	if req.From != "" {
		params.From = req.From
	}
	if req.Category != "" {
		params.Tags = []resend.Tag{{Name: "category", Value: req.Category}}
	}
	if req.Ref != "" {
		params.Headers = map[string]string{refHeader: req.Ref}
	}
	return params
}

// Send hands one message to Resend.
// PRE: req has at least one recipient
// POST: on success the provider accepted the message; MessageID is its id
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := req.check(); err != nil {
		return SendResult{}, err
	}
	sent, err := s.client.Emails.SendWithContext(ctx, toResend(s.from, req))
	if err != nil {
		slog.Warn("email_event", "event", "send_failed", "provider", "resend", "ref", req.Ref, "error", err)
		return SendResult{}, fmt.Errorf("resend: %w", err)
	}
	slog.Info("email_event", "event", "sent", "provider", "resend", "ref", req.Ref, "message_id", sent.Id)
	return SendResult{MessageID: sent.Id, SentAt: s.now()}, nil
}
