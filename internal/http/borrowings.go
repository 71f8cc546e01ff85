package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"librarium/internal/database/borrowings"
	"librarium/internal/entities"
	"librarium/internal/ledger"
	"librarium/internal/policy"
)

// BorrowingsController handles the borrowing lifecycle endpoints.
type BorrowingsController struct {
	borrowings *borrowings.Repository
}

func NewBorrowingsController(repo *borrowings.Repository) *BorrowingsController {
	return &BorrowingsController{borrowings: repo}
}

type borrowingCreateRequest struct {
	BookID     uint       `json:"book_id" binding:"required"`
	BorrowDate *time.Time `json:"borrow_date"`
}

type borrowingUpdateRequest struct {
	Status     *entities.BorrowingStatus `json:"status" binding:"omitempty,oneof=borrowed returned"`
	ReturnDate *time.Time                `json:"return_date"`
}

// Create borrows a book for the caller.
// POST /borrowings
func (bc *BorrowingsController) Create(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionBorrowingCreate, 0) {
		return
	}

	var req borrowingCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	borrowDate := time.Now()
	if req.BorrowDate != nil {
		borrowDate = *req.BorrowDate
	}

	record, err := bc.borrowings.Create(principal.UserID, req.BookID, borrowDate)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrBookNotFound), errors.Is(err, ledger.ErrNoAvailableCopies):
			respondBadRequest(c, "book is not available or does not exist")
		case errors.Is(err, borrowings.ErrConflict):
			respondConflict(c)
		default:
			respondInternalError(c, err, "create borrowing")
		}
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List returns borrowings. Admins see everything; regular users see their own.
// GET /borrowings
func (bc *BorrowingsController) List(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	filter := borrowings.Filter{
		Status: entities.BorrowingStatus(c.Query("status")),
	}
	if principal.Role != entities.UserRoleAdmin {
		filter.UserID = principal.UserID
	}

	offset, limit := parsePagination(c)
	records, err := bc.borrowings.List(filter, offset, limit)
	if err != nil {
		respondInternalError(c, err, "list borrowings")
		return
	}

	c.JSON(http.StatusOK, records)
}

// My returns the caller's own borrowings regardless of role.
// GET /borrowings/my
func (bc *BorrowingsController) My(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	records, err := bc.borrowings.List(borrowings.Filter{UserID: principal.UserID}, offset, limit)
	if err != nil {
		respondInternalError(c, err, "list my borrowings")
		return
	}

	c.JSON(http.StatusOK, records)
}

// Get returns a single borrowing, visible to its owner and admins.
// GET /borrowings/:id
func (bc *BorrowingsController) Get(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := bc.borrowings.GetByID(id)
	if err != nil {
		if errors.Is(err, borrowings.ErrNotFound) {
			respondNotFound(c, "borrowing")
			return
		}
		respondInternalError(c, err, "get borrowing")
		return
	}
	if !authorize(c, principal, policy.ActionBorrowingRead, record.UserID) {
		return
	}

	c.JSON(http.StatusOK, record)
}

// Update patches a borrowing, typically to return a book or correct a return
// date. Owner or admin.
// PUT /borrowings/:id
func (bc *BorrowingsController) Update(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := bc.borrowings.GetByID(id)
	if err != nil {
		if errors.Is(err, borrowings.ErrNotFound) {
			respondNotFound(c, "borrowing")
			return
		}
		respondInternalError(c, err, "get borrowing")
		return
	}
	if !authorize(c, principal, policy.ActionBorrowingUpdate, record.UserID) {
		return
	}

	var req borrowingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	updated, err := bc.borrowings.Update(id, borrowings.Patch{
		Status:     req.Status,
		ReturnDate: req.ReturnDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, borrowings.ErrNotFound):
			respondNotFound(c, "borrowing")
		case errors.Is(err, borrowings.ErrInvalidTransition):
			respondBadRequest(c, err.Error())
		case errors.Is(err, borrowings.ErrConflict):
			respondConflict(c)
		default:
			respondInternalError(c, err, "update borrowing")
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes a borrowing record (admin only). Deleting an active borrowing
// puts the copy back on the shelf.
// DELETE /borrowings/:id
func (bc *BorrowingsController) Delete(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionBorrowingDelete, 0) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.borrowings.Delete(id); err != nil {
		switch {
		case errors.Is(err, borrowings.ErrNotFound):
			respondNotFound(c, "borrowing")
		case errors.Is(err, borrowings.ErrConflict):
			respondConflict(c)
		default:
			respondInternalError(c, err, "delete borrowing")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
