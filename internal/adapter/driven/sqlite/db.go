// Package sqlite implements the RunStore port on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB holds separate writer and reader handles to the ledger database.
// The writer is limited to one connection so appends from a run never race.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// Open opens (creating if needed) the ledger at dbPath and applies pending
// migrations before returning.
func Open(dbPath string) (*DB, error) {
	db, err := NewDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewDB opens the writer and reader handles with WAL mode and a busy timeout.
func NewDB(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		dbPath,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping ledger %s: %w", dbPath, err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open ledger reader: %w", err)
	}
	reader.SetMaxOpenConns(2)

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
	}, nil
}

// Path returns the file the ledger was opened from.
func (db *DB) Path() string {
	return db.path
}

// Close closes both handles and returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
