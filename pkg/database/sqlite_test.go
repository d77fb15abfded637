package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLDatabase {
	t.Helper()
	db, err := OpenSQLite(":memory:", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "taskhub.db")
	store, err := NewDatabase(context.Background(), DatabaseConfig{SQLitePath: path}, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
}

func TestNewDatabaseRequiresBackend(t *testing.T) {
	_, err := NewDatabase(context.Background(), DatabaseConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOrganizationCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	org := &models.Organization{Name: "Acme"}
	require.NoError(t, db.CreateOrganization(ctx, org))
	assert.NotEmpty(t, org.ID)
	assert.False(t, org.CreatedAt.IsZero())

	got, err := db.GetOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name)

	updated, err := db.UpdateOrganization(ctx, org.ID, models.OrganizationPatch{Name: strPtr("Acme Corp")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Acme Corp", updated.Name)

	orgs, err := db.ListOrganizations(ctx, OrganizationFilter{})
	require.NoError(t, err)
	assert.Len(t, orgs, 1)

	ok, err := db.DeleteOrganization(ctx, org.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.DeleteOrganization(ctx, org.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = db.GetOrganization(ctx, org.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	updated, err = db.UpdateOrganization(ctx, org.ID, models.OrganizationPatch{Name: strPtr("Gone")})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestCreateOrganizationRequiresName(t *testing.T) {
	db := newTestDB(t)
	err := db.CreateOrganization(context.Background(), &models.Organization{Name: "  "})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
}

func TestListOrganizationsEmpty(t *testing.T) {
	db := newTestDB(t)
	orgs, err := db.ListOrganizations(context.Background(), OrganizationFilter{})
	require.NoError(t, err)
	assert.NotNil(t, orgs)
	assert.Empty(t, orgs)
}

func newUser(name, email string, role models.Role, orgID string) *models.User {
	return &models.User{Name: name, Email: email, PasswordHash: "hash", Role: role, OrganizationID: orgID}
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.CreateUser(ctx, newUser("Ann", "ann@x.com", models.RoleAdmin, "o1")))

	err := db.CreateUser(ctx, newUser("Ann2", "ann@x.com", models.RoleUser, "o1"))
	assert.ErrorIs(t, err, ErrEmailInUse)

	err = db.CreateUser(ctx, newUser("Bob", "bob@x.com", models.RoleAdmin, "o1"))
	assert.ErrorIs(t, err, ErrAdminExists)

	bob := newUser("Bob", "bob@x.com", models.RoleUser, "o1")
	require.NoError(t, db.CreateUser(ctx, bob))

	admin := models.RoleAdmin
	_, err = db.UpdateUser(ctx, bob.ID, models.UserPatch{Role: &admin})
	assert.ErrorIs(t, err, ErrAdminExists)

	_, err = db.UpdateUser(ctx, bob.ID, models.UserPatch{Email: strPtr("ann@x.com")})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestConcurrentAdminCreation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser("Admin", string(rune('a'+i))+"@x.com", models.RoleAdmin, "o1")
			if err := db.CreateUser(ctx, u); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrAdminExists)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	admins, err := db.ListUsers(ctx, UserFilter{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestUserLookupsAndUpdate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	ann := newUser("Ann", "ann@x.com", models.RoleManager, "o1")
	require.NoError(t, db.CreateUser(ctx, ann))
	require.NoError(t, db.CreateUser(ctx, newUser("Bob", "bob@x.com", models.RoleUser, "o2")))

	byEmail, err := db.GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, ann.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	missing, err := db.GetUserByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	inOrg, err := db.ListUsers(ctx, UserFilter{OrganizationID: "o2"})
	require.NoError(t, err)
	require.Len(t, inOrg, 1)
	assert.Equal(t, "Bob", inOrg[0].Name)

	updated, err := db.UpdateUser(ctx, ann.ID, models.UserPatch{Name: strPtr("Annie")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "ann@x.com", updated.Email)
	assert.Equal(t, models.RoleManager, updated.Role)

	bad := models.Role("Root")
	_, err = db.UpdateUser(ctx, ann.ID, models.UserPatch{Role: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)

	none, err := db.UpdateUser(ctx, "missing", models.UserPatch{Name: strPtr("X")})
	require.NoError(t, err)
	assert.Nil(t, none)

	ok, err := db.DeleteUser(ctx, ann.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTaskCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		Title:          "Write report",
		Description:    "Q1 numbers",
		DueDate:        &due,
		OrganizationID: "o1",
		CreatedBy:      "u1",
		AssignedTo:     "u2",
	}
	require.NoError(t, db.CreateTask(ctx, task))
	assert.Equal(t, models.DefaultTaskStatus, task.Status)

	got, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, "u2", got.AssignedTo)

	status := "Done"
	updated, err := db.UpdateTask(ctx, task.ID, models.TaskPatch{Status: &status, AssignedTo: strPtr("u3")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Done", updated.Status)
	assert.Equal(t, "u3", updated.AssignedTo)
	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, "u1", updated.CreatedBy)
	require.NotNil(t, updated.DueDate, "due date untouched by an unrelated patch")

	cleared, err := db.UpdateTask(ctx, task.ID, models.TaskPatch{ClearDueDate: true})
	require.NoError(t, err)
	require.NotNil(t, cleared)
	assert.Nil(t, cleared.DueDate)

	require.NoError(t, db.CreateTask(ctx, &models.Task{
		Title: "Other", Description: "d", OrganizationID: "o2", CreatedBy: "u1", AssignedTo: "u3",
	}))

	assigned, err := db.ListTasks(ctx, TaskFilter{AssignedTo: "u3"})
	require.NoError(t, err)
	assert.Len(t, assigned, 2)

	inOrg, err := db.ListTasks(ctx, TaskFilter{OrganizationID: "o1"})
	require.NoError(t, err)
	require.Len(t, inOrg, 1)
	assert.Equal(t, task.ID, inOrg[0].ID)

	ok, err := db.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	none, err := db.UpdateTask(ctx, task.ID, models.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreateTaskRequiresFields(t *testing.T) {
	db := newTestDB(t)
	err := db.CreateTask(context.Background(), &models.Task{Title: "t", OrganizationID: "o1", CreatedBy: "u1", AssignedTo: "u2"})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.Equal(t, "The field 'description' is required.", apperr.MessageOf(err))
}

func TestRebind(t *testing.T) {
	pg := &SQLDatabase{dialect: postgresDialect}
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", pg.rebind("UPDATE t SET a = ?, b = ? WHERE id = ?"))

	lite := &SQLDatabase{dialect: sqliteDialect}
	assert.Equal(t, "SELECT * FROM t WHERE id = ?", lite.rebind("SELECT * FROM t WHERE id = ?"))
}

func TestAddConnectionParams(t *testing.T) {
	assert.Equal(t, "postgres://h/db?connect_timeout=10", addConnectionParams("postgres://h/db", "connect_timeout=10"))
	assert.Equal(t, "postgres://h/db?sslmode=disable&connect_timeout=10", addConnectionParams("postgres://h/db?sslmode=disable", "connect_timeout=10"))
	assert.Equal(t, "host=h dbname=db sslmode=require connect_timeout=10", addConnectionParams("host=h dbname=db", "sslmode=require&connect_timeout=10"))
}

func TestGetDatabaseReusesConnection(t *testing.T) {
	ctx := context.Background()
	cfg := DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "pool.db")}
	t.Cleanup(func() { ClosePool() })

	first, err := GetDatabase(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	second, err := GetDatabase(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "sqlite", GetConnectionStats().Backend)

	require.NoError(t, ClosePool())
	assert.Equal(t, "no_connection", GetConnectionStats().Status)
}
