package reload

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger persists reload history to a sqlite database, grounded on
// the teacher's storage/sqlite.go (same driver, same
// open-then-CREATE-TABLE-IF-NOT-EXISTS style). It is optional: a
// Coordinator with no Ledger configured simply doesn't record
// history.
type Ledger struct {
	db *sql.DB
}

// NewLedger opens (creating if necessary) a sqlite database at path.
// Pass ":memory:" for a non-persistent ledger, useful in tests.
func NewLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS reload (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    reloaded_at TIMESTAMP NOT NULL,
    connection_count INTEGER NOT NULL
)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating reload table: %w", err)
	}

	return &Ledger{db: db}, nil
}

// RecordReload appends one row recording a successful reload.
func (l *Ledger) RecordReload(connectionCount int) error {
	_, err := l.db.Exec(
		`INSERT INTO reload (reloaded_at, connection_count) VALUES (?, ?)`,
		time.Now().UTC(), connectionCount,
	)
	if err != nil {
		return fmt.Errorf("inserting reload record: %w", err)
	}
	return nil
}

// LastReload returns the timestamp of the most recent recorded
// reload, or the zero Time if none has been recorded yet.
func (l *Ledger) LastReload() (time.Time, error) {
	var t time.Time
	err := l.db.QueryRow(`SELECT reloaded_at FROM reload ORDER BY id DESC LIMIT 1`).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying last reload: %w", err)
	}
	return t, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
