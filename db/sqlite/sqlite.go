// Package sqlite is the hand-written SQL storage layer. Lookups that
// find nothing return (nil, nil); callers branch on the nil record.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	dbinit "inkwell/cms/db/init"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDB wraps the database handle and owns schema initialization.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (and if needed creates) the database at dbPath.
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client := &SQLiteDB{db: db}

	if err := dbinit.InitSQLiteSchema(db); err != nil {
		return nil, err
	}
	if err := dbinit.CreateTriggers(db); err != nil {
		return nil, err
	}

	return client, nil
}

// Close closes the underlying handle.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Get exposes the raw *sql.DB for callers that need it.
func (s *SQLiteDB) Get() *sql.DB {
	return s.db
}
