package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/docopt/docopt-go"

	"church/internal/adapters/storage"
	accountStore "church/internal/adapters/storage/account"
	"church/internal/adapters/storage/document"
	"church/internal/application/orchestrators"
	"church/internal/application/sections"
	"church/internal/config"
	"church/internal/domain/event"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const usage = `Church control.

Reads the same CHURCH_* environment as the server to find the database.

Usage:
    churchctl create-admin --email=<email> --password=<password> [--reset]
    churchctl list-admins
    churchctl export-events [--all]
    churchctl -h | --help
    churchctl --version

Options:
    -h --help                Show this screen.
    --version                Show version.
    --email=<email>          Sign-in email of the admin.
    --password=<password>    At least 12 characters.
    --reset                  Overwrite the password of an existing account.
    --all                    Include past events.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	db, driver, err := storage.Open(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	docs := document.NewSQLStore(db, document.DialectFor(driver))
	err = dispatch(context.Background(), opts, docs, os.Stdout, time.Now)
	db.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dispatch runs the command named in opts.
func dispatch(ctx context.Context, opts docopt.Opts, docs document.Store, out io.Writer, now func() time.Time) error {
	accounts := accountStore.NewDocumentStore(docs)
	if ok, _ := opts.Bool("create-admin"); ok {
		return createAdmin(ctx, opts, accounts, out, now)
	}
	if ok, _ := opts.Bool("list-admins"); ok {
		return listAdmins(ctx, accounts, out)
	}
	if ok, _ := opts.Bool("export-events"); ok {
		all, _ := opts.Bool("--all")
		return exportEvents(ctx, docs, all, out, now())
	}
	return errors.New("no command given")
}

func createAdmin(ctx context.Context, opts docopt.Opts, accounts *accountStore.DocumentStore, out io.Writer, now func() time.Time) error {
	email, _ := opts.String("--email")
	password, _ := opts.String("--password")
	reset, _ := opts.Bool("--reset")
	id, err := orchestrators.ExecuteCreateAdmin(ctx, orchestrators.CreateAdminInput{
		Email:         email,
		Password:      password,
		ResetPassword: reset,
	}, orchestrators.CreateAdminDeps{AccountStore: accounts, Now: now})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(out, "admin %s ready\n", id)
	return nil
}

func listAdmins(ctx context.Context, accounts *accountStore.DocumentStore, out io.Writer) error {
	list, err := accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range list {
		admin, err := accounts.IsAdmin(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("admin membership for %s: %w", a.ID, err)
		}
		if admin {
			fmt.Fprintf(out, "%s\t%s\n", a.Email, a.CreatedAt.UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// exportEvents writes events as a JSON array, soonest first.
func exportEvents(ctx context.Context, docs document.Store, all bool, out io.Writer, now time.Time) error {
	raw, err := docs.List(ctx, sections.EventsCollection)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	kind := sections.EventKind{}
	events := make([]event.Event, 0, len(raw))
	for _, d := range raw {
		e := kind.Decode(d.ID, d.Fields)
		if all || !e.IsPast(now) {
			events = append(events, e)
		}
	}
	slices.SortFunc(events, func(a, b event.Event) int {
		if event.Less(&a, &b, false) {
			return -1
		}
		if event.Less(&b, &a, false) {
			return 1
		}
		return 0
	})

	rows := make([]map[string]any, 0, len(events))
	for _, e := range events {
		row := kind.Encode(e)
		row["id"] = e.ID
		rows = append(rows, row)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
