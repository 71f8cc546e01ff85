package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarium/internal/entities"
)

func TestBorrowingsController_Create(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	user, userToken := env.registerUser(t, "reader", entities.UserRoleUser)
	book := env.createBook(t, "Invisible Cities", 2)

	recorder := env.request(t, http.MethodPost, "/borrowings", userToken, gin.H{
		"book_id": book.ID,
	})

	requireStatus(t, recorder, http.StatusCreated)

	var record entities.Borrowing
	decode(t, recorder, &record)
	assert.Equal(t, user.ID, record.UserID)
	assert.Equal(t, book.ID, record.BookID)
	assert.Equal(t, entities.BorrowingStatusBorrowed, record.Status)

	remaining, err := env.books.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining.Available)
}

func TestBorrowingsController_Create_NoCopies(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, userToken := env.registerUser(t, "reader", entities.UserRoleUser)
	book := env.createBook(t, "Invisible Cities", 1)

	recorder := env.request(t, http.MethodPost, "/borrowings", userToken, gin.H{"book_id": book.ID})
	requireStatus(t, recorder, http.StatusCreated)

	recorder = env.request(t, http.MethodPost, "/borrowings", userToken, gin.H{"book_id": book.ID})
	requireStatus(t, recorder, http.StatusBadRequest)
}

func TestBorrowingsController_Create_UnknownBook(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, userToken := env.registerUser(t, "reader", entities.UserRoleUser)

	recorder := env.request(t, http.MethodPost, "/borrowings", userToken, gin.H{"book_id": 42})

	requireStatus(t, recorder, http.StatusBadRequest)
}

func TestBorrowingsController_List_ScopedByRole(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, adminToken := env.registerUser(t, "boss", entities.UserRoleAdmin)
	_, aliceToken := env.registerUser(t, "alice", entities.UserRoleUser)
	_, bobToken := env.registerUser(t, "bob", entities.UserRoleUser)
	book := env.createBook(t, "Invisible Cities", 5)

	requireStatus(t, env.request(t, http.MethodPost, "/borrowings", aliceToken, gin.H{"book_id": book.ID}), http.StatusCreated)
	requireStatus(t, env.request(t, http.MethodPost, "/borrowings", bobToken, gin.H{"book_id": book.ID}), http.StatusCreated)

	var records []entities.Borrowing

	// Admins see every borrowing.
	recorder := env.request(t, http.MethodGet, "/borrowings", adminToken, nil)
	requireStatus(t, recorder, http.StatusOK)
	decode(t, recorder, &records)
	assert.Len(t, records, 2)

	// Regular users only see their own.
	recorder = env.request(t, http.MethodGet, "/borrowings", aliceToken, nil)
	requireStatus(t, recorder, http.StatusOK)
	decode(t, recorder, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", usernameOf(t, env, records[0].UserID))
}

func TestBorrowingsController_My(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	admin, adminToken := env.registerUser(t, "boss", entities.UserRoleAdmin)
	_, userToken := env.registerUser(t, "reader", entities.UserRoleUser)
	book := env.createBook(t, "Invisible Cities", 5)

	requireStatus(t, env.request(t, http.MethodPost, "/borrowings", userToken, gin.H{"book_id": book.ID}), http.StatusCreated)
	requireStatus(t, env.request(t, http.MethodPost, "/borrowings", adminToken, gin.H{"book_id": book.ID}), http.StatusCreated)

	// /borrowings/my is scoped to the caller even for admins.
	recorder := env.request(t, http.MethodGet, "/borrowings/my", adminToken, nil)
	requireStatus(t, recorder, http.StatusOK)

	var records []entities.Borrowing
	decode(t, recorder, &records)
	require.Len(t, records, 1)
	assert.Equal(t, admin.ID, records[0].UserID)
}

func TestBorrowingsController_Get_OwnerOnly(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, aliceToken := env.registerUser(t, "alice", entities.UserRoleUser)
	_, bobToken := env.registerUser(t, "bob", entities.UserRoleUser)
	_, adminToken := env.registerUser(t, "boss", entities.UserRoleAdmin)
	book := env.createBook(t, "Invisible Cities", 1)

	created := env.request(t, http.MethodPost, "/borrowings", aliceToken, gin.H{"book_id": book.ID})
	requireStatus(t, created, http.StatusCreated)
	var record entities.Borrowing
	decode(t, created, &record)
	path := fmt.Sprintf("/borrowings/%d", record.ID)

	requireStatus(t, env.request(t, http.MethodGet, path, aliceToken, nil), http.StatusOK)
	requireStatus(t, env.request(t, http.MethodGet, path, adminToken, nil), http.StatusOK)
	requireStatus(t, env.request(t, http.MethodGet, path, bobToken, nil), http.StatusForbidden)
}

func TestBorrowingsController_Update_ReturnFlow(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, userToken := env.registerUser(t, "reader", entities.UserRoleUser)
	book := env.createBook(t, "Invisible Cities", 1)

	created := env.request(t, http.MethodPost, "/borrowings", userToken, gin.H{"book_id": book.ID})
	requireStatus(t, created, http.StatusCreated)
	var record entities.Borrowing
	decode(t, created, &record)
	path := fmt.Sprintf("/borrowings/%d", record.ID)

	recorder := env.request(t, http.MethodPut, path, userToken, gin.H{"status": "returned"})
	requireStatus(t, recorder, http.StatusOK)

	var updated entities.Borrowing
	decode(t, recorder, &updated)
	assert.Equal(t, entities.BorrowingStatusReturned, updated.Status)

	freed, err := env.books.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, freed.Available)

	// Flipping a returned record back to borrowed is rejected.
	recorder = env.request(t, http.MethodPut, path, userToken, gin.H{"status": "borrowed"})
	requireStatus(t, recorder, http.StatusBadRequest)

	// Bogus status values never reach the repository.
	recorder = env.request(t, http.MethodPut, path, userToken, gin.H{"status": "lost"})
	requireStatus(t, recorder, http.StatusBadRequest)
}

func TestBorrowingsController_Delete_AdminOnly(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, userToken := env.registerUser(t, "reader", entities.UserRoleUser)
	_, adminToken := env.registerUser(t, "boss", entities.UserRoleAdmin)
	book := env.createBook(t, "Invisible Cities", 1)

	created := env.request(t, http.MethodPost, "/borrowings", userToken, gin.H{"book_id": book.ID})
	requireStatus(t, created, http.StatusCreated)
	var record entities.Borrowing
	decode(t, created, &record)
	path := fmt.Sprintf("/borrowings/%d", record.ID)

	requireStatus(t, env.request(t, http.MethodDelete, path, userToken, nil), http.StatusForbidden)
	requireStatus(t, env.request(t, http.MethodDelete, path, adminToken, nil), http.StatusNoContent)

	// The copy went back on the shelf with the record gone.
	freed, err := env.books.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, freed.Available)

	requireStatus(t, env.request(t, http.MethodDelete, path, adminToken, nil), http.StatusNotFound)
}

func usernameOf(t *testing.T, env *testEnv, userID uint) string {
	t.Helper()
	var user entities.User
	require.NoError(t, env.db.First(&user, userID).Error)
	return user.Username
}
