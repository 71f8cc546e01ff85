package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarium/internal/database"
)

func TestHealthController_Status(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_health_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer func() {
		db.Close()
		os.Remove(dbPath)
	}()

	router := gin.New()
	router.GET("/health", NewHealthController(db, "test").Status)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	requireStatus(t, recorder, http.StatusOK)

	var health HealthResponse
	decode(t, recorder, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, "ok", health.Checks["database"])
}

func TestHealthController_Status_ClosedDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_health_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	defer os.Remove(dbPath)

	router := gin.New()
	router.GET("/health", NewHealthController(db, "").Status)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	requireStatus(t, recorder, http.StatusServiceUnavailable)

	var health HealthResponse
	decode(t, recorder, &health)
	assert.Equal(t, "unhealthy", health.Status)
}

func TestHealthEndpointsArePublic(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	requireStatus(t, env.request(t, http.MethodGet, "/health", "", nil), http.StatusOK)
	requireStatus(t, env.request(t, http.MethodGet, "/ping", "", nil), http.StatusOK)
}
