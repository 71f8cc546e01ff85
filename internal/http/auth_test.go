package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarium/internal/entities"
)

func TestAuthController_Register(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	recorder := env.request(t, http.MethodPost, "/auth/register", "", gin.H{
		"username":  "reader",
		"email":     "reader@example.com",
		"full_name": "A Reader",
		"password":  "secret123",
	})

	requireStatus(t, recorder, http.StatusCreated)

	var user entities.User
	decode(t, recorder, &user)
	assert.Equal(t, "reader", user.Username)
	assert.Equal(t, entities.UserRoleUser, user.Role)
	assert.NotContains(t, recorder.Body.String(), "password_hash")
}

func TestAuthController_Register_IgnoresRequestedRole(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	// Self-registration cannot mint admins.
	recorder := env.request(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": "sneaky",
		"email":    "sneaky@example.com",
		"password": "secret123",
		"role":     "admin",
	})

	requireStatus(t, recorder, http.StatusCreated)

	var user entities.User
	decode(t, recorder, &user)
	assert.Equal(t, entities.UserRoleUser, user.Role)
}

func TestAuthController_Register_Duplicate(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.registerUser(t, "reader", entities.UserRoleUser)

	recorder := env.request(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": "reader",
		"email":    "other@example.com",
		"password": "secret123",
	})

	requireStatus(t, recorder, http.StatusBadRequest)
}

func TestAuthController_Register_MissingFields(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	recorder := env.request(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": "reader",
	})

	requireStatus(t, recorder, http.StatusBadRequest)
}

func TestAuthController_Login(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.registerUser(t, "reader", entities.UserRoleUser)

	recorder := env.request(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "reader",
		"password": "secret123",
	})

	requireStatus(t, recorder, http.StatusOK)

	var token TokenResponse
	decode(t, recorder, &token)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)

	// The issued token must open protected endpoints.
	me := env.request(t, http.MethodGet, "/users/me", token.AccessToken, nil)
	requireStatus(t, me, http.StatusOK)
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.registerUser(t, "reader", entities.UserRoleUser)

	recorder := env.request(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "reader",
		"password": "wrong-password",
	})

	requireStatus(t, recorder, http.StatusUnauthorized)
	assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))
}

func TestAuthController_Login_UnknownUser(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	recorder := env.request(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "nobody",
		"password": "secret123",
	})

	requireStatus(t, recorder, http.StatusUnauthorized)
}

func TestAuthController_Login_DeactivatedUser(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	user, _ := env.registerUser(t, "reader", entities.UserRoleUser)
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	recorder := env.request(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "reader",
		"password": "secret123",
	})

	requireStatus(t, recorder, http.StatusForbidden)
}

func TestMiddleware_RejectsMissingToken(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	recorder := env.request(t, http.MethodGet, "/borrowings", "", nil)

	requireStatus(t, recorder, http.StatusUnauthorized)
	assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))
}

func TestMiddleware_RejectsGarbageToken(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	recorder := env.request(t, http.MethodGet, "/borrowings", "not.a.token", nil)

	requireStatus(t, recorder, http.StatusUnauthorized)
}
