package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"church/internal/adapters/metrics"
	"church/internal/adapters/storage"
)

// Dialect selects placeholder and locking syntax for the SQL backend.
type Dialect int

// Supported SQL dialects.
const (
	SQLite Dialect = iota
	Postgres
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) Dialect {
	if driver == storage.DriverPostgres {
		return Postgres
	}
	return SQLite
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) lockSuffix() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// SQLStore implements Store on a single documents table.
// Fields are stored as a JSON object; watchers are notified in-process.
type SQLStore struct {
	db      storage.SQLDB
	dialect Dialect
	broker  *broker
	now     func() time.Time
}

// Compile-time check that *SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a document store over db.
// PRE: storage.MigrateDB has created the documents table
func NewSQLStore(db storage.SQLDB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, broker: newBroker(), now: time.Now}
}

// Watch streams snapshots of a collection: one immediately, then one after
// each change. Changes that land while a snapshot is pending coalesce.
// PRE: collection is non-empty
// POST: channel closes once ctx is done
func (s *SQLStore) Watch(ctx context.Context, collection string) (<-chan Snapshot, error) {
	if collection == "" {
		return nil, errors.New("watch: collection is required")
	}
	metrics.DocumentWatchers.WithLabelValues(collection).Inc()
	ch := s.broker.watch(ctx, collection, s.List)
	go func() {
		<-ctx.Done()
		metrics.DocumentWatchers.WithLabelValues(collection).Dec()
	}()
	return ch, nil
}

// Get retrieves one document.
// PRE: collection and id are non-empty
// POST: found is false when the document does not exist
func (s *SQLStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT fields FROM documents WHERE collection = ? AND id = ?"), collection, id)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return Document{}, false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Fields: fields}, true, nil
}

// List returns every document of a collection ordered by id.
func (s *SQLStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind("SELECT id, fields FROM documents WHERE collection = ? ORDER BY id"), collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// Set upserts a document. With Merge the fields are deep-merged into the
// stored document inside one transaction; otherwise the document is replaced.
// PRE: collection and id are non-empty
// POST: watchers of collection are notified on success
func (s *SQLStore) Set(ctx context.Context, collection, id string, fields map[string]any, opts SetOptions) error {
	if collection == "" || id == "" {
		return errors.New("set: collection and id are required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	next := Clone(fields)
	if opts.Merge {
		var raw string
		err := tx.QueryRowContext(ctx,
			s.dialect.rebind("SELECT fields FROM documents WHERE collection = ? AND id = ?"+s.dialect.lockSuffix()),
			collection, id).Scan(&raw)
		switch {
		case err == nil:
			stored, derr := decodeFields(raw)
			if derr != nil {
				return fmt.Errorf("decode %s/%s: %w", collection, id, derr)
			}
			next = Merge(stored, fields)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("read %s/%s: %w", collection, id, err)
		}
	}
	if next == nil {
		next = map[string]any{}
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	query := "INSERT INTO documents (collection, id, fields, updated_at) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT (collection, id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at"
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(query),
		collection, id, string(payload), s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metrics.DocumentWrites.WithLabelValues(collection, "set").Inc()
	s.broker.notify(collection)
	return nil
}

// Delete removes a document.
// PRE: collection and id are non-empty
// POST: Returns ErrNotFound when nothing was deleted; watchers notified otherwise
func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		s.dialect.rebind("DELETE FROM documents WHERE collection = ? AND id = ?"), collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	metrics.DocumentWrites.WithLabelValues(collection, "delete").Inc()
	s.broker.notify(collection)
	return nil
}

func decodeFields(raw string) (map[string]any, error) {
	fields := map[string]any{}
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
