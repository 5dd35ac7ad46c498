package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// OutboxRetryConfig holds configuration for the retry scheduler.
type OutboxRetryConfig struct {
	Interval time.Duration
	Enabled  bool
}

// DefaultOutboxRetryConfig returns the production defaults.
func DefaultOutboxRetryConfig() OutboxRetryConfig {
	return OutboxRetryConfig{
		Interval: time.Minute,
		Enabled:  true,
	}
}

// StartOutboxRetryScheduler starts a background goroutine that periodically processes pending outbox entries.
// PRE: Context is valid, processor is initialized
// POST: Goroutine started; the returned func stops it and waits for it to exit
func StartOutboxRetryScheduler(ctx context.Context, processor *OutboxProcessor, cfg OutboxRetryConfig) func() {
	if !cfg.Enabled || cfg.Interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("outbox_event", "event", "scheduler_stopped")
				return
			case <-ticker.C:
				runCtx, runCancel := context.WithTimeout(ctx, 5*time.Minute)
				if err := processor.ProcessPending(runCtx); err != nil {
					slog.Error("outbox_event", "event", "scheduler_error", "error", err)
				}
				runCancel()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
