package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const (
	constraintUserEmail   = "users_email_key"
	constraintSingleAdmin = "users_single_admin"
)

// pqUniqueViolation is the SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS organizations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL,
	password_hash   TEXT NOT NULL,
	role            TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	CONSTRAINT users_email_key UNIQUE (email)
);

CREATE UNIQUE INDEX IF NOT EXISTS users_single_admin ON users (role) WHERE role = 'Admin';
CREATE INDEX IF NOT EXISTS users_organization_id ON users (organization_id);

CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL,
	status          TEXT NOT NULL,
	due_date        TIMESTAMPTZ,
	organization_id TEXT NOT NULL,
	created_by      TEXT NOT NULL,
	assigned_to     TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS tasks_organization_id ON tasks (organization_id);
CREATE INDEX IF NOT EXISTS tasks_assigned_to ON tasks (assigned_to);
`

var postgresDialect = dialect{
	name:     "postgres",
	numbered: true,
	schema:   postgresSchema,
	uniqueViolation: func(err error) (string, bool) {
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
			return "", false
		}
		return pqErr.Constraint, true
	},
}

// OpenPostgres connects to PostgreSQL, trying progressively more explicit
// connection parameters before giving up.
func OpenPostgres(ctx context.Context, dsn string, logger zerolog.Logger) (*SQLDatabase, error) {
	// Env values sometimes carry a trailing CR/LF.
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&connect_timeout=10"),
		dsn,
	}

	var lastErr error
	for i, strategy := range strategies {
		log := logger.With().Int("strategy", i+1).Logger()

		db, err := sql.Open("postgres", strategy)
		if err != nil {
			log.Warn().Err(err).Msg("failed to open postgres connection")
			lastErr = err
			continue
		}

		// Small pool; the service may run in short-lived serverless instances.
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("failed to ping postgres")
			db.Close()
			lastErr = err
			continue
		}

		log.Info().Msg("postgres connection established")
		return newSQLDatabase(db, postgresDialect, logger), nil
	}

	return nil, fmt.Errorf("failed to connect to postgres with all strategies: %w", lastErr)
}

// addConnectionParams appends query parameters to a URL-style DSN.
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}
	// key=value DSNs take space-separated parameters.
	if !strings.Contains(dsn, "://") {
		return dsn + " " + strings.ReplaceAll(params, "&", " ")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + params
}
