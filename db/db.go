package db

import (
	"inkwell/cms/db/sqlite"
)

// DB bundles the persistent stores. SQLite is the only one today.
type DB struct {
	SQLite *sqlite.SQLiteDB
}

// NewDB creates the store bundle.
func NewDB(sqliteDB *sqlite.SQLiteDB) *DB {
	return &DB{SQLite: sqliteDB}
}

// Close closes the persistent stores.
func (db *DB) Close() error {
	if db.SQLite != nil {
		return db.SQLite.Close()
	}
	return nil
}
