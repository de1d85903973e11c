// Package sqlite opens and migrates the SQLite database behind the sqlite
// store backend.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Open opens the database file at path, creating parent directories and the
// schema as needed. Every connection gets a busy timeout, WAL journaling and
// immediate write transactions.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.InvalidArgument("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	if err := verifyWALMode(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies schema migrations based on user_version. It is safe to run
// on every start.
func Migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS records (
		  entity_type TEXT NOT NULL,
		  id          TEXT NOT NULL,
		  payload     BLOB NOT NULL,
		  PRIMARY KEY (entity_type, id)
		);

		CREATE TABLE IF NOT EXISTS record_index (
		  index_name TEXT NOT NULL,
		  id         TEXT NOT NULL,
		  seq        INTEGER NOT NULL,
		  PRIMARY KEY (index_name, id)
		);

		CREATE INDEX IF NOT EXISTS idx_record_index_seq
		ON record_index(index_name, seq);
		`
		if _, err := db.Exec(schema); err != nil {
			return errors.Wrap(err, "migration 1 failed")
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return errors.Wrap(err, "failed to verify journal mode")
	}
	if journalMode != "wal" {
		return errors.Internalf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, errors.Wrap(err, "failed to get user_version")
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return errors.Wrap(err, "failed to set user_version")
	}
	return nil
}
