package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/database/books"
	"librarium/internal/policy"
)

// BooksController handles catalog CRUD.
type BooksController struct {
	books *books.Repository
}

func NewBooksController(repo *books.Repository) *BooksController {
	return &BooksController{books: repo}
}

type bookCreateRequest struct {
	Title         string `json:"title" binding:"required,min=1,max=200"`
	Author        string `json:"author" binding:"required,min=1,max=100"`
	ISBN          string `json:"isbn" binding:"max=20"`
	PublishedYear int    `json:"published_year" binding:"omitempty,gte=1000,lte=2100"`
	Quantity      int    `json:"quantity" binding:"omitempty,gte=1"`
}

type bookUpdateRequest struct {
	Title         *string `json:"title" binding:"omitempty,min=1,max=200"`
	Author        *string `json:"author" binding:"omitempty,min=1,max=100"`
	ISBN          *string `json:"isbn" binding:"omitempty,max=20"`
	PublishedYear *int    `json:"published_year" binding:"omitempty,gte=1000,lte=2100"`
	Quantity      *int    `json:"quantity" binding:"omitempty,gte=1"`
}

// Create adds a new book to the catalog (admin only).
// POST /books
func (bc *BooksController) Create(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionBookCreate, 0) {
		return
	}

	var req bookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	book, err := bc.books.Create(req.Title, req.Author, req.ISBN, req.PublishedYear, req.Quantity)
	if err != nil {
		if errors.Is(err, books.ErrISBNExists) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	c.JSON(http.StatusCreated, book)
}

// List returns books with optional title/author search.
// GET /books
func (bc *BooksController) List(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionBookRead, 0) {
		return
	}

	offset, limit := parsePagination(c)

	result, err := bc.books.List(c.Query("search"), offset, limit)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns a single book.
// GET /books/:id
func (bc *BooksController) Get(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionBookRead, 0) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.GetByID(id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// Update patches book fields (admin only).
// PUT /books/:id
func (bc *BooksController) Update(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionBookUpdate, 0) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := bc.books.Update(id, books.Patch{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
		Quantity:      req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, books.ErrNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrISBNExists), errors.Is(err, books.ErrQuantityTooLow):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "update book")
		}
		return
	}

	c.JSON(http.StatusOK, book)
}

// Delete removes a book (admin only).
// DELETE /books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionBookDelete, 0) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.books.Delete(id); err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	c.Status(http.StatusNoContent)
}
