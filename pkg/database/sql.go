package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskhub-backend/pkg/apperr"

	"github.com/rs/zerolog"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	schema   string
	// uniqueViolation reports the constraint behind a unique-constraint error.
	uniqueViolation func(err error) (constraint string, ok bool)
}

// SQLDatabase implements DatabaseInterface on database/sql.
type SQLDatabase struct {
	db      *sql.DB
	dialect dialect
	logger  zerolog.Logger
	now     func() time.Time
}

func newSQLDatabase(db *sql.DB, d dialect, logger zerolog.Logger) *SQLDatabase {
	return &SQLDatabase{
		db:      db,
		dialect: d,
		logger:  logger.With().Str("component", "database").Str("dialect", d.name).Logger(),
		now:     time.Now,
	}
}

// Migrate applies the dialect's schema. Every statement is idempotent.
func (s *SQLDatabase) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(s.dialect.schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	s.logger.Debug().Msg("schema applied")
	return nil
}

// HealthCheck pings the database.
func (s *SQLDatabase) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLDatabase) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying pool.
func (s *SQLDatabase) DB() *sql.DB {
	return s.db
}

// rebind rewrites ? placeholders for dialects with numbered parameters.
func (s *SQLDatabase) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLDatabase) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLDatabase) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLDatabase) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// classify turns unique-constraint violations into Conflict errors and wraps
// everything else.
func (s *SQLDatabase) classify(err error, op string) error {
	if constraint, ok := s.dialect.uniqueViolation(err); ok {
		switch constraint {
		case constraintUserEmail:
			return ErrEmailInUse
		case constraintSingleAdmin:
			return ErrAdminExists
		}
		return apperr.Conflict("Duplicate value")
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// where joins conditions into a WHERE clause.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Timestamps are stored as fixed-width RFC 3339 text on SQLite, so they sort
// lexically, and as TIMESTAMPTZ on PostgreSQL. Both scan into strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// lib/pq renders timestamps without the T separator in some configurations.
	return time.Parse("2006-01-02 15:04:05.999999999Z07:00", s)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func required(fields map[string]string) error {
	for _, name := range []string{"name", "email", "password", "title", "description", "organization", "createdBy", "assignedTo"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			return apperr.Validation(fmt.Sprintf("The field '%s' is required.", name))
		}
	}
	return nil
}
