package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/database"
	"tierraalta/internal/middleware"
	"tierraalta/internal/pkg/jwt"
	"tierraalta/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.Connect(config.DatabaseConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	tokens := jwt.New("test-secret", "tierraalta", time.Hour)
	h := NewHandler(NewService(repository.NewUserRepository(db), tokens, bcrypt.MinCost, nil))

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1, nil)
	protected := v1.Group("", middleware.JWTAuth(tokens))
	h.RegisterProtectedRoutes(protected)
	return r
}

func call(r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandler_RegisterLoginProfile(t *testing.T) {
	r := newRouter(t)

	w, env := call(r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Ana", "email": "ana@example.com", "password": "sunny-days",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session struct {
		Token string `json:"token"`
		User  struct {
			ID   int64  `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "USER", session.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w, env = call(r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Ana", "email": "ANA@example.com", "password": "sunny-days",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	w, env = call(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	w, env = call(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ana@example.com", "password": "sunny-days"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &session))

	w, _ = call(r, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = call(r, http.MethodPatch, "/api/v1/users/me", session.Token, gin.H{"phone": "+34 600 000 000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = call(r, http.MethodGet, "/api/v1/users/me", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"phone":"+34 600 000 000"`)
}

func TestHandler_LockoutAfterRepeatedFailures(t *testing.T) {
	r := newRouter(t)
	w, _ := call(r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Ana", "email": "ana@example.com", "password": "sunny-days",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	for i := 1; i < maxFailedLoginAttempts; i++ {
		w, _ = call(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong-pass"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ = call(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ana@example.com", "password": "sunny-days"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_RegisterValidation(t *testing.T) {
	r := newRouter(t)
	w, env := call(r, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Ana", "email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
