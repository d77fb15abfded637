package database

import (
	"context"
	"fmt"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/models"

	"github.com/rs/zerolog"
)

// Conflicts raised by the store's unique constraints.
var (
	ErrEmailInUse  = apperr.Conflict("Email already in use")
	ErrAdminExists = apperr.Conflict("An admin already exists")
)

// OrganizationFilter selects organizations. It currently has no criteria.
type OrganizationFilter struct{}

// UserFilter selects users. Zero-valued fields are ignored.
type UserFilter struct {
	OrganizationID string
	Email          string
	Role           models.Role
}

// TaskFilter selects tasks. Zero-valued fields are ignored.
type TaskFilter struct {
	OrganizationID string
	AssignedTo     string
	CreatedBy      string
}

// OrganizationRepository persists organizations.
//
// Get and Update return (nil, nil) when the organization does not exist;
// Delete returns false.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]models.Organization, error)
	UpdateOrganization(ctx context.Context, id string, patch models.OrganizationPatch) (*models.Organization, error)
	DeleteOrganization(ctx context.Context, id string) (bool, error)
}

// UserRepository persists users. Email uniqueness and the single-admin rule
// are enforced by the store and reported as ErrEmailInUse / ErrAdminExists.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
}

// TaskRepository persists tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
}

// DatabaseInterface is the full data-store surface consumed by the service.
type DatabaseInterface interface {
	OrganizationRepository
	UserRepository
	TaskRepository

	// Migrate creates tables and indexes if they do not exist.
	Migrate(ctx context.Context) error
	// HealthCheck pings the store.
	HealthCheck(ctx context.Context) error
	// Close releases the connection pool.
	Close() error
}

// DatabaseConfig selects and configures the store.
type DatabaseConfig struct {
	PostgresDSN string
	SQLitePath  string
	Debug       bool
}

// NewDatabase opens the configured store and applies the schema. PostgreSQL
// is preferred; SQLite is used when no DSN is configured.
func NewDatabase(ctx context.Context, config DatabaseConfig, logger zerolog.Logger) (DatabaseInterface, error) {
	var (
		db  *SQLDatabase
		err error
	)
	switch {
	case config.PostgresDSN != "":
		logger.Info().Msg("using PostgreSQL database")
		db, err = OpenPostgres(ctx, config.PostgresDSN, logger)
	case config.SQLitePath != "":
		logger.Info().Str("path", config.SQLitePath).Msg("using SQLite database")
		db, err = OpenSQLite(config.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("no database configured: set POSTGRES_DSN or SQLITE_PATH")
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
