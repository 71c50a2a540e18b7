// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so no C
// toolchain is needed. Queries go through sqlx on top of database/sql.
//
// CONNECTION SETTINGS:
// PRAGMAs are passed in the DSN (_pragma=...) rather than executed once after
// opening. database/sql keeps a pool, and a PRAGMA run with Exec only reaches
// whichever connection happened to serve it.
//   - journal_mode(WAL): readers do not block the single writer
//   - busy_timeout(5000): a writer waits up to 5s for the lock instead of
//     failing with SQLITE_BUSY when signups arrive concurrently
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// DB wraps a sqlx connection pool and provides repository methods.
type DB struct {
	conn *sqlx.DB
}

// New opens the SQLite database at dbPath and creates the schema if it is absent.
//
// dbPath examples:
//   - "data/mailinglist.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database, lost on Close
//
// An in-memory database lives inside a single connection, so the pool is
// pinned to one connection for it.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if dbPath == memoryPath {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// modernc registers itself as "sqlite"; sqlx only needs the name to pick
	// the "?" bindvar style, which it knows as "sqlite3".
	db := &DB{conn: sqlx.NewDb(sqlDB, "sqlite3")}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func dsn(dbPath string) string {
	pragmas := []string{"_pragma=busy_timeout(5000)"}
	if dbPath != memoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return dbPath + "?" + strings.Join(pragmas, "&")
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS subscribers (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			band          INTEGER DEFAULT 0,
			choir         INTEGER DEFAULT 0,
			summerMusical INTEGER DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("creating subscribers table: %w", err)
	}

	return nil
}
