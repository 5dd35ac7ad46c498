package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"church/internal/adapters/http/perf"
	"church/internal/adapters/metrics"
)

// SQLDB is what the document store needs from a database handle.
// *sql.DB and *TimedDB both satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is used when NewTimedDB gets a non-positive threshold.
const DefaultSlowQueryMs = 50

// TimedDB times every call on a *sql.DB. Calls are labelled by the leading
// SQL verb ("db.select", "db.insert", ...) so the query histogram keeps a
// handful of series whatever the statement text.
type TimedDB struct {
	*sql.DB
	collector *perf.Collector
	slow      time.Duration
}

// NewTimedDB wraps db. collector may be nil.
// PRE: db is open
func NewTimedDB(db *sql.DB, collector *perf.Collector, slowMs int) *TimedDB {
	if slowMs <= 0 {
		slowMs = DefaultSlowQueryMs
	}
	return &TimedDB{DB: db, collector: collector, slow: time.Duration(slowMs) * time.Millisecond}
}

// statementLabel names a query by its first keyword.
func statementLabel(query string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	verb = strings.ToLower(strings.TrimRight(verb, "(\n\t"))
	switch verb {
	case "select", "insert", "update", "delete", "create", "pragma", "with":
		return "db." + verb
	case "":
		return "db.empty"
	}
	return "db.other"
}

func (t *TimedDB) observe(ctx context.Context, label string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.QueryDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	ms := float64(elapsed.Microseconds()) / 1000

	level, msg := slog.LevelDebug, "query"
	if elapsed >= t.slow {
		level, msg = slog.LevelWarn, "slow_query"
	}
	attrs := []any{"op", label, "duration_ms", ms}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	slog.Log(ctx, level, msg, attrs...)

	if t.collector != nil {
		t.collector.Record(perf.Entry{Kind: perf.KindQuery, Label: label, DurationMs: ms, Timestamp: start})
	}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.DB.ExecContext(ctx, query, args...)
	t.observe(ctx, statementLabel(query), start, err)
	return res, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.DB.QueryContext(ctx, query, args...)
	t.observe(ctx, statementLabel(query), start, err)
	return rows, err
}

func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.DB.QueryRowContext(ctx, query, args...)
	t.observe(ctx, statementLabel(query), start, row.Err())
	return row
}

// BeginTx times only the BEGIN; statements inside the transaction go
// through *sql.Tx directly.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.DB.BeginTx(ctx, opts)
	t.observe(ctx, "db.begin", start, err)
	return tx, err
}
