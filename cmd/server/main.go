package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"church/internal/adapters/blob"
	"church/internal/adapters/email"
	"church/internal/adapters/geo"
	web "church/internal/adapters/http"
	"church/internal/adapters/http/middleware"
	"church/internal/adapters/http/perf"
	"church/internal/adapters/storage"
	accountStore "church/internal/adapters/storage/account"
	"church/internal/adapters/storage/document"
	outboxStore "church/internal/adapters/storage/outbox"
	"church/internal/application/collection"
	"church/internal/application/console"
	"church/internal/application/orchestrators"
	"church/internal/config"
	"church/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownGrace = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_event", "event", "load_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server_event", "event", "exit", "error", err)
		os.Exit(1)
	}
}

func newSender(cfg config.Config) email.Sender {
	if cfg.ResendKey != "" {
		slog.Info("email_event", "event", "sender_configured", "provider", "resend")
		return email.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
	}
	if cfg.IsProduction() {
		slog.Warn("email_event", "event", "delivery_disabled", "hint", "set CHURCH_RESEND_KEY")
	}
	return email.NewNoopSender()
}

// wireBlobs fills the gallery deps for the configured blob driver.
func wireBlobs(ctx context.Context, cfg config.Config, d *web.Deps) error {
	if cfg.BlobDriver == "s3" {
		s3, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:    cfg.BlobS3Bucket,
			Region:    cfg.BlobS3Region,
			Endpoint:  cfg.BlobS3Endpoint,
			PathStyle: cfg.BlobS3Path,
			URLExpiry: time.Hour,
		})
		if err != nil {
			return fmt.Errorf("s3 gallery: %w", err)
		}
		d.Gallery = s3
		return nil
	}
	fs, err := blob.NewFSStore(cfg.BlobDir, "")
	if err != nil {
		slog.Warn("gallery_event", "event", "disabled", "dir", cfg.BlobDir, "error", err)
		return nil
	}
	d.Gallery, d.Files = fs, fs
	return nil
}

func run(ctx context.Context, cfg config.Config) error {
	db, driver, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("db_event", "event", "ready", "driver", cfg.DBDriver, "schema", storage.LatestSchemaVersion())

	collector := perf.NewCollector(perf.DefaultRingSize)
	docs := document.NewSQLStore(storage.NewTimedDB(db, collector, cfg.SlowQueryMS), document.DialectFor(driver))
	outboxes := outboxStore.NewDocumentStore(docs)

	processor := orchestrators.NewOutboxProcessor(outboxes, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeContactEmail: &orchestrators.ContactEmailExecutor{Sender: newSender(cfg), Inbox: cfg.ContactInbox},
	})
	stopRetries := orchestrators.StartOutboxRetryScheduler(ctx, processor, orchestrators.OutboxRetryConfig{
		Interval: cfg.OutboxEvery,
		Enabled:  cfg.OutboxEvery > 0,
	})
	defer stopRetries()

	consoles := console.NewRegistry(ctx, func() *console.Console {
		return console.New(collection.Deps{Store: docs, Clock: collection.SystemClock{}})
	})
	defer consoles.CloseAll()
	sessions := middleware.NewSessionStore(cfg.SessionTTL, consoles.Release)
	sessions.StartSweeper(ctx, time.Minute)

	d := &web.Deps{
		Docs:     docs,
		Accounts: accountStore.NewDocumentStore(docs),
		Outbox:   outboxes,
		Delivery: processor,
		Consoles: consoles,
		Sessions: sessions,
	}
	if cfg.GeoEnabled {
		d.Locator = geo.NewLocator(cfg.GeoTimeout, &geo.IPAPIProvider{}, &geo.IPWhoProvider{})
	}
	if err := wireBlobs(ctx, cfg, d); err != nil {
		return err
	}

	handler, err := web.NewMux(ctx, cfg, d, collector)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server_event", "event", "listening", "addr", cfg.Addr, "version", version, "env", cfg.Env)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
