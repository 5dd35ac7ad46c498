package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"church/internal/config"
)

// sqlitePragmas are applied to every pooled SQLite connection.
const sqlitePragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Open connects to the configured database and migrates it.
// It returns the database/sql driver name alongside the handle.
// PRE: cfg passed Validate
// POST: schema is at LatestSchemaVersion
func Open(cfg config.Config) (*sql.DB, string, error) {
	driver, dsn := DriverSQLite, cfg.DBPath+sqlitePragmas
	if cfg.DBDriver == "postgres" {
		driver, dsn = DriverPostgres, cfg.DBURL
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("database unreachable: %w", err)
	}
	if err := MigrateDB(db, driver); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("migrate database: %w", err)
	}
	return db, driver, nil
}
