package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database/books"
	"librarium/internal/database/borrowings"
	"librarium/internal/database/users"
	"librarium/internal/entities"
	"librarium/internal/ledger"
)

// testEnv wires a full router against a throwaway database so handler tests
// exercise the real middleware, policy checks and repositories.
type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *auth.Service
	books  *books.Repository
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Borrowing{},
	)
	require.NoError(t, err)

	authConfig := config.Auth{
		SecretKey:   "test-secret-key",
		TokenExpiry: time.Minute,
		BcryptCost:  bcrypt.MinCost,
	}
	authService := auth.NewService(db, authConfig)
	booksRepo := books.NewRepository(db)

	router := NewRouter(RouterConfig{
		Books:          booksRepo,
		Users:          users.NewRepository(db),
		Borrowings:     borrowings.NewRepository(db, ledger.New()),
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(authService),
		AuthConfig:     authConfig,
		Version:        "test",
	})

	env := &testEnv{
		db:     db,
		router: router,
		auth:   authService,
		books:  booksRepo,
	}
	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

// registerUser creates an account and returns it together with a bearer token.
func (e *testEnv) registerUser(t *testing.T, username string, role entities.UserRole) (*entities.User, string) {
	t.Helper()
	user, err := e.auth.Register(username, username+"@example.com", "", "secret123", role)
	require.NoError(t, err)
	token, err := e.auth.IssueToken(user)
	require.NoError(t, err)
	return user, token
}

// request performs an HTTP request against the test router. An empty token
// leaves the request unauthenticated.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

// decode unmarshals a response body into out.
func decode(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

// createBook seeds a catalog entry directly through the repository.
func (e *testEnv) createBook(t *testing.T, title string, quantity int) *entities.Book {
	t.Helper()
	book, err := e.books.Create(title, "Test Author", "", 2000, quantity)
	require.NoError(t, err)
	return book
}

// requireStatus fails the test with the response body when the status differs.
func requireStatus(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	require.Equal(t, expected, recorder.Code,
		fmt.Sprintf("unexpected status, body: %s", recorder.Body.String()))
}
