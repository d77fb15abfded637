package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS organizations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	password_hash   TEXT NOT NULL,
	role            TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS users_single_admin ON users (role) WHERE role = 'Admin';
CREATE INDEX IF NOT EXISTS users_organization_id ON users (organization_id);

CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL,
	status          TEXT NOT NULL,
	due_date        TEXT,
	organization_id TEXT NOT NULL,
	created_by      TEXT NOT NULL,
	assigned_to     TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS tasks_organization_id ON tasks (organization_id);
CREATE INDEX IF NOT EXISTS tasks_assigned_to ON tasks (assigned_to);
`

// sqliteConstraintUnique is SQLITE_CONSTRAINT_UNIQUE.
const sqliteConstraintUnique = 2067

var sqliteDialect = dialect{
	name:   "sqlite",
	schema: sqliteSchema,
	uniqueViolation: func(err error) (string, bool) {
		var se *sqlite.Error
		if !errors.As(err, &se) || se.Code() != sqliteConstraintUnique {
			return "", false
		}
		msg := se.Error()
		switch {
		case strings.Contains(msg, "users.email"):
			return constraintUserEmail, true
		case strings.Contains(msg, "users.role"), strings.Contains(msg, "users_single_admin"):
			return constraintSingleAdmin, true
		}
		return "", true
	},
}

// OpenSQLite opens (creating if needed) a SQLite database at path. Use
// ":memory:" for a throwaway in-memory store.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLDatabase, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory: stable.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return newSQLDatabase(db, sqliteDialect, logger), nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
