package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskhub-backend/pkg/config"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/graph"
	"taskhub-backend/pkg/middleware"
	"taskhub-backend/pkg/models"
	"taskhub-backend/pkg/service"
	"taskhub-backend/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type graphQLEnv struct {
	store   database.DatabaseInterface
	tokens  *utils.JWTService
	handler http.Handler
}

func newGraphQLEnv(t *testing.T, limiter *middleware.IPRateLimiter) *graphQLEnv {
	t.Helper()
	store, err := database.OpenSQLite(filepath.Join(t.TempDir(), "handlers.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { store.Close() })

	tokens := utils.NewJWTService("handlers-test-secret", time.Hour)
	svc := service.New(service.Options{
		Store:  store,
		Hasher: utils.NewPasswordHasher(bcrypt.MinCost),
		Tokens: tokens,
		Logger: zerolog.Nop(),
	})
	schema, err := graph.NewSchema(svc, zerolog.Nop())
	require.NoError(t, err)

	h := NewGraphQLHandler(schema, limiter, zerolog.Nop())
	return &graphQLEnv{
		store:   store,
		tokens:  tokens,
		handler: middleware.Authenticate(tokens, zerolog.Nop())(h),
	}
}

func (e *graphQLEnv) post(t *testing.T, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:5555"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func gqlBody(t *testing.T, query string, vars map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(graph.Request{Query: query, Variables: vars})
	require.NoError(t, err)
	return string(raw)
}

type gqlResult struct {
	Data   map[string]map[string]any `json:"data"`
	Errors []map[string]any          `json:"errors"`
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) gqlResult {
	t.Helper()
	var out gqlResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const registerMutation = `mutation($name: String!, $email: String!, $password: String!, $org: ID!, $role: String) {
	register(name: $name, email: $email, password: $password, organizationId: $org, role: $role) { success message }
}`

func TestGraphQLPublicOperationWithoutToken(t *testing.T) {
	env := newGraphQLEnv(t, nil)
	org := &models.Organization{Name: "Acme"}
	require.NoError(t, env.store.CreateOrganization(context.Background(), org))

	rec := env.post(t, gqlBody(t, registerMutation, map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "secret1", "org": org.ID, "role": "Admin",
	}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data["register"]["success"])

	rec = env.post(t, gqlBody(t, `mutation { login(email: "ada@example.com", password: "secret1") { success message token } }`, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeResult(t, rec)
	assert.Equal(t, "Login successful", res.Data["login"]["message"])
	assert.NotEmpty(t, res.Data["login"]["token"])
}

func TestGraphQLRequiresAuthentication(t *testing.T) {
	env := newGraphQLEnv(t, nil)

	tests := []struct {
		name  string
		query string
	}{
		{name: "protected query", query: `{ getTasks { success } }`},
		{name: "public field mixed with protected", query: `mutation { login(email: "a@b.c", password: "x") { success } deleteTask(id: "1") { success } }`},
		{name: "unparseable", query: `{ login(`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.post(t, gqlBody(t, tt.query, nil), "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var resp utils.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, "Authentication required", resp.Message)
		})
	}
}

func TestGraphQLAuthenticatedQuery(t *testing.T) {
	env := newGraphQLEnv(t, nil)
	ctx := context.Background()
	org := &models.Organization{Name: "Acme"}
	require.NoError(t, env.store.CreateOrganization(ctx, org))
	user := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleAdmin, OrganizationID: org.ID}
	require.NoError(t, env.store.CreateUser(ctx, user))

	token, _, err := env.tokens.IssueToken(user.ID, user.Role, org.ID)
	require.NoError(t, err)

	rec := env.post(t, gqlBody(t, `{ getOrganizations { success message data { id name } } }`, nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data["getOrganizations"]["success"])
	assert.Len(t, res.Data["getOrganizations"]["data"], 1)
}

func TestGraphQLInvalidToken(t *testing.T) {
	env := newGraphQLEnv(t, nil)

	expired, _, err := utils.NewJWTService("handlers-test-secret", time.Nanosecond).IssueToken("user-1", models.RoleUser, "org-1")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{name: "garbage", token: "not-a-token", wantMsg: "Invalid token"},
		{name: "bad signature", token: "eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjF9.invalid", wantMsg: "Invalid token"},
		{name: "expired", token: expired, wantMsg: "Token expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.post(t, gqlBody(t, `{ getTasks { success } }`, nil), tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var resp utils.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestGraphQLPublicOperationIgnoresStaleToken(t *testing.T) {
	env := newGraphQLEnv(t, nil)
	org := &models.Organization{Name: "Acme"}
	require.NoError(t, env.store.CreateOrganization(context.Background(), org))

	expired, _, err := utils.NewJWTService("handlers-test-secret", time.Nanosecond).IssueToken("user-1", models.RoleUser, org.ID)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	rec := env.post(t, gqlBody(t, registerMutation, map[string]any{
		"name": "Ada", "email": "a@x.com", "password": "secret1", "org": org.ID,
	}), "eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjF9.invalid")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeResult(t, rec).Data["register"]["success"])

	login := gqlBody(t, `mutation { login(email: "a@x.com", password: "secret1") { success token } }`, nil)
	for _, token := range []string{"eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjF9.invalid", expired, "not-a-token"} {
		rec = env.post(t, login, token)
		require.Equal(t, http.StatusOK, rec.Code, token)
		res := decodeResult(t, rec)
		assert.Equal(t, true, res.Data["login"]["success"])
		assert.NotEmpty(t, res.Data["login"]["token"])
	}

	// A malformed header does not block a public operation either.
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic YTpi")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGraphQLBadRequests(t *testing.T) {
	env := newGraphQLEnv(t, nil)

	rec := env.post(t, `{"query":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.post(t, `{"query":"   "}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphQLBodyTooLarge(t *testing.T) {
	env := newGraphQLEnv(t, nil)
	handler := middleware.MaxBodySize(16)(env.handler)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(gqlBody(t, `{ getTasks { success message } }`, nil)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGraphQLRateLimitsPublicOperations(t *testing.T) {
	limiter, err := middleware.NewIPRateLimiter("2-M", false)
	require.NoError(t, err)
	env := newGraphQLEnv(t, limiter)

	login := gqlBody(t, `mutation { login(email: "nobody@example.com", password: "x") { success message } }`, nil)
	for i := 0; i < 2; i++ {
		rec := env.post(t, login, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User not found", decodeResult(t, rec).Data["login"]["message"])
	}

	rec := env.post(t, login, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// A forged forwarding header does not buy a fresh budget.
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.99")
	req.RemoteAddr = "192.0.2.10:5555"
	forged := httptest.NewRecorder()
	env.handler.ServeHTTP(forged, req)
	assert.Equal(t, http.StatusTooManyRequests, forged.Code)

	// Authenticated operations do not consume the public budget.
	token, _, err := env.tokens.IssueToken("user-1", models.RoleUser, "org-1")
	require.NoError(t, err)
	rec = env.post(t, gqlBody(t, `{ getTasks { success } }`, nil), token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakeStore struct{ err error }

func (f fakeStore) HealthCheck(context.Context) error { return f.err }

func TestHealthCheck(t *testing.T) {
	cfg := &config.Config{Environment: "test"}

	t.Run("healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(cfg, fakeStore{}).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Success bool           `json:"success"`
			Data    map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "healthy", resp.Data["db_status"])
		assert.Equal(t, "sqlite", resp.Data["database"])
	})

	t.Run("store down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(cfg, fakeStore{err: errors.New("connection refused")}).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "unhealthy: connection refused")
	})
}

func TestActorReachesResolvers(t *testing.T) {
	env := newGraphQLEnv(t, nil)
	token, _, err := env.tokens.IssueToken("ghost", models.RoleUser, "org-1")
	require.NoError(t, err)

	rec := env.post(t, gqlBody(t, `{ getUser(id: "ghost") { success message } }`, nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User not found", decodeResult(t, rec).Data["getUser"]["message"])
}
