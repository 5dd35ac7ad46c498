package storage

import (
	"database/sql"
	"fmt"
)

// Driver names accepted by MigrateDB. They match the database/sql driver registrations.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// migration is one schema step. Statements run in order inside a transaction.
type migration struct {
	version int
	stmts   []string
}

// migrations is the ordered schema history. Both dialects share it: fields
// are stored as JSON text so no dialect-specific column types are needed.
var migrations = []migration{
	{version: 1, stmts: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			fields TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
	}},
	{version: 2, stmts: []string{
		`CREATE INDEX IF NOT EXISTS documents_updated_at ON documents (collection, updated_at)`,
	}},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion reports the applied schema version; 0 when nothing is applied.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies pending migrations.
// PRE: db is a valid database connection; driver is DriverSQLite or DriverPostgres
// POST: schema is at LatestSchemaVersion; SQLite runs in WAL mode
func MigrateDB(db *sql.DB, driver string) error {
	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	insert := "INSERT INTO schema_version (version) VALUES (?)"
	if driver == DriverPostgres {
		insert = "INSERT INTO schema_version (version) VALUES ($1)"
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(insert, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
	}
	return nil
}
