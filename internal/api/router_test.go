package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"inkwell/cms/db"
	dbinit "inkwell/cms/db/init"
	"inkwell/cms/internal/api/middleware"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/config"
	"inkwell/cms/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	app    *App
	router *gin.Engine
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbManager, err := db.NewManager(&db.Config{
		SQLitePath: filepath.Join(t.TempDir(), "cms.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { dbManager.Close() })

	limiter := ratelimit.New()
	limiter.Start()
	t.Cleanup(limiter.Stop)

	auditWriter := audit.NewWriter(dbManager.DB.SQLite)
	auditWriter.Start()
	t.Cleanup(auditWriter.Stop)

	cfg := config.DefaultConfig()
	cfg.Auth.JWTSecret = "router-test-secret"

	app := NewApp(cfg, dbManager, limiter, auditWriter)
	return &testEnv{app: app, router: SetupRouter(app), cfg: cfg}
}

// seedUser creates an enabled account with the given role and returns
// its ID and a valid bearer token.
func (env *testEnv) seedUser(t *testing.T, username, role string) (string, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &dbinit.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Email:        username + "@example.com",
		Role:         role,
		Enabled:      true,
	}
	require.NoError(t, env.app.DB.DB.SQLite.CreateUser(user))

	token, err := middleware.GenerateJWT(user.ID, username, role, env.cfg.Auth.JWTSecret, 1)
	require.NoError(t, err)
	return user.ID, token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestPublicReadsNeedNoToken(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/v1/posts", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/v1/categories", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/v1/tags", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/health", "", nil).Code)
}

func TestMutationsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "POST", "/api/v1/categories", "", map[string]string{"name": "News"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, "POST", "/api/v1/admin/posts", "not-a-jwt", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoryCreateGatedByRole(t *testing.T) {
	env := newTestEnv(t)
	_, subToken := env.seedUser(t, "reader", "subscriber")
	_, adminToken := env.seedUser(t, "root", "admin")

	w := env.do(t, "POST", "/api/v1/categories", subToken, map[string]string{"name": "News"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "POST", "/api/v1/categories", adminToken, map[string]string{"name": "News"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthorOwnsOnlyOwnPosts(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.seedUser(t, "alice", "author")
	_, bobToken := env.seedUser(t, "bob", "author")

	w := env.do(t, "POST", "/api/v1/admin/posts", aliceToken, map[string]string{"title": "Hello"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	path := "/api/v1/admin/posts/" + created.Data.ID
	update := map[string]string{"title": "Hello again"}

	assert.Equal(t, http.StatusForbidden, env.do(t, "PUT", path, bobToken, update).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "PUT", path, aliceToken, update).Code)
}

func TestSubscriberCannotListUsers(t *testing.T) {
	env := newTestEnv(t)
	_, subToken := env.seedUser(t, "reader", "subscriber")
	_, editorToken := env.seedUser(t, "ed", "editor")

	assert.Equal(t, http.StatusForbidden, env.do(t, "GET", "/api/v1/users", subToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/v1/users", editorToken, nil).Code)
}

func TestAuditRoutesAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, editorToken := env.seedUser(t, "ed", "editor")
	_, adminToken := env.seedUser(t, "root", "admin")

	assert.Equal(t, http.StatusForbidden, env.do(t, "GET", "/api/v1/audit", editorToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/v1/audit", adminToken, nil).Code)
}

func TestLoginThrottledAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "victim", "subscriber")

	bad := map[string]string{"username": "victim", "password": "wrong password"}
	for i := 0; i < env.cfg.RateLimit.MaxAttempts; i++ {
		w := env.do(t, "POST", "/api/v1/auth/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i)
	}

	w := env.do(t, "POST", "/api/v1/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// The correct password is throttled too while the window is open.
	good := map[string]string{"username": "victim", "password": "correct horse"}
	w = env.do(t, "POST", "/api/v1/auth/login", "", good)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "writer", "author")

	w := env.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": "writer", "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.Token)

	w = env.do(t, "GET", "/api/v1/me", login.Data.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublishedPostVisibleToGuests(t *testing.T) {
	env := newTestEnv(t)
	userID, adminToken := env.seedUser(t, "root", "admin")

	post := &dbinit.Post{
		ID:     uuid.New().String(),
		Title:  "Launch notes",
		Slug:   "launch-notes",
		Status: "draft",
		UserID: userID,
	}
	require.NoError(t, env.app.DB.DB.SQLite.CreatePost(post))

	// Draft is invisible to guests.
	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/api/v1/posts/launch-notes", "", nil).Code)

	w := env.do(t, "POST", fmt.Sprintf("/api/v1/admin/posts/%s/publish", post.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/v1/posts/launch-notes", "", nil).Code)
}
