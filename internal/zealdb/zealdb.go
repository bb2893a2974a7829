// Package zealdb writes the SQLite search index consumed by Zeal and Dash.
//
// The searchIndex table layout is fixed by the Dash docset format: readers
// look up exactly these table and column names, so they must not change.
// All inserts between Open and Close run in a single transaction; a run
// that dies before Close leaves no partially committed rows behind.
package zealdb

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotOpen is returned by Insert when no database connection is open.
// Inserting before Open is a caller bug, not a recoverable condition.
var ErrNotOpen = errors.New("zealdb: insert attempted before Open")

// schemaSQL is the Dash-compatible search index schema.
const schemaSQL = `
CREATE TABLE searchIndex (id INTEGER PRIMARY KEY, name TEXT, type TEXT, path TEXT);
CREATE UNIQUE INDEX anchor ON searchIndex (name, type, path);
`

// DB is a search index store. Construct with New, then call Open before
// Insert and Close when done. Open and Close may be paired repeatedly, but
// every Open drops whatever a previous run wrote.
type DB struct {
	filename string
	verbose  bool

	db     *sql.DB
	tx     *sql.Tx
	insert *sql.Stmt
}

// New returns an unopened search index store backed by the SQLite database
// at filename.
func New(filename string, verbose bool) *DB {
	return &DB{filename: filename, verbose: verbose}
}

// Open connects to the database and prepares a fresh searchIndex table,
// dropping any existing one. If a connection is already open it is
// committed and closed first, so Open is always a destructive reset.
func (z *DB) Open() error {
	if z.db != nil {
		if err := z.Close(); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite3", z.filename)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", z.filename, err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var existing int
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'searchIndex'",
	).Scan(&existing)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to inspect database schema: %w", err)
	}

	if existing > 0 {
		if _, err := tx.Exec("DROP TABLE searchIndex"); err != nil {
			db.Close()
			return fmt.Errorf("failed to drop existing searchIndex table: %w", err)
		}
		if z.verbose {
			log.Println("Dropped existing searchIndex table")
		}
	}

	if _, err := tx.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("failed to create searchIndex table: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO searchIndex(name, type, path) VALUES (?, ?, ?)")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	z.db = db
	z.tx = tx
	z.insert = stmt
	return nil
}

// Insert records one search index entry. An entry whose (name, type, path)
// triple already exists is silently ignored.
func (z *DB) Insert(name, entryType, path string) error {
	if z.insert == nil {
		return ErrNotOpen
	}

	if z.verbose {
		log.Printf("Inserting %s %q -> %s", entryType, name, path)
	}

	if _, err := z.insert.Exec(name, entryType, path); err != nil {
		return fmt.Errorf("failed to insert %q: %w", name, err)
	}
	return nil
}

// Close commits all inserts since Open and releases the connection. Closing
// an unopened store is a no-op.
func (z *DB) Close() error {
	if z.db == nil {
		return nil
	}

	db := z.db
	tx := z.tx
	stmt := z.insert
	z.db, z.tx, z.insert = nil, nil, nil

	if stmt != nil {
		stmt.Close()
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			db.Close()
			return fmt.Errorf("failed to commit search index: %w", err)
		}
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
