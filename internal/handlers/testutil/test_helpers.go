package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/api"
	"github.com/virtualstage/backlot/internal/app"
	iauth "github.com/virtualstage/backlot/internal/auth"
	sharedtestutil "github.com/virtualstage/backlot/internal/database/testutil"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/pkg/crypto"
	"github.com/virtualstage/backlot/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	return NewEnvWithDeps(t, api.Deps{})
}

// NewEnvWithDeps builds the environment around caller-supplied router deps,
// letting story tests plug in a fake parser or media store.
func NewEnvWithDeps(t *testing.T, deps api.Deps) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	jwtSecret := "test-suite-super-secret-key-32-bytes!!"
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         jwtSecret,
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: jwtSecret,
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
			Session: app.SessionSettings{
				RefreshTTL:    24 * time.Hour,
				RefreshLength: 48,
			},
		},
	}
	cfg.Monitoring.Health.Enabled = true

	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, cfg.Auth.SessionServiceConfig())
	require.NoError(t, err)

	if deps.RateStore == nil {
		deps.RateStore = middleware.NewMemoryRateStore()
	}

	router, err := api.NewRouter(db, jwtSvc, cfg, sessionSvc, deps)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
	}
}

// CreateSuperuser inserts an active superuser with a random username and
// returns the record. Superusers pass every permission check.
func (e *Env) CreateSuperuser(password string) *models.User {
	e.T.Helper()

	username := "root-" + uuid.NewString()
	hashed, err := crypto.HashPassword(password)
	require.NoError(e.T, err)

	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    hashed,
		IsActive:    true,
		IsSuperuser: true,
	}

	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// CreateUser inserts an active user holding the given seeded role
// ("admin", "project-manager", "artist", "reviewer", "viewer").
func (e *Env) CreateUser(password, roleID string) *models.User {
	e.T.Helper()

	var role models.Role
	require.NoError(e.T, e.DB.First(&role, "id = ?", roleID).Error, "seeded role %s", roleID)

	username := "user-" + uuid.NewString()
	hashed, err := crypto.HashPassword(password)
	require.NoError(e.T, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		IsActive: true,
		RoleID:   &role.ID,
	}

	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// TokenPair mirrors the token object nested in auth responses.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RolePayload captures the role fields auth endpoints return.
type RolePayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserPayload captures the subset of user fields returned from auth endpoints.
type UserPayload struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	IsSuperuser bool         `json:"is_superuser"`
	IsActive    bool         `json:"is_active"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Role        *RolePayload `json:"role"`
}

// LoginResult bundles the JSON response from POST /api/auth/login.
type LoginResult struct {
	Tokens      TokenPair   `json:"tokens"`
	User        UserPayload `json:"user"`
	Permissions []string    `json:"permissions"`
}

// Login authenticates against the local provider and returns the issued tokens.
func (e *Env) Login(username, password string) LoginResult {
	e.T.Helper()

	payload := map[string]string{
		"identifier": username,
		"password":   password,
	}

	w := e.Request(http.MethodPost, "/api/auth/login", payload, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result LoginResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.Tokens.AccessToken)
	require.NotEmpty(e.T, result.Tokens.RefreshToken)
	require.Equal(e.T, username, result.User.Username)

	return result
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON
// encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
