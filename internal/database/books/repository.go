// Package books provides database operations for the book catalog.
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"librarium/internal/entities"
)

var (
	ErrNotFound       = errors.New("book not found")
	ErrISBNExists     = errors.New("book with this ISBN already exists")
	ErrQuantityTooLow = errors.New("quantity is below the number of checked-out copies")
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Patch carries partial updates for a book. Nil fields are left untouched.
type Patch struct {
	Title         *string
	Author        *string
	ISBN          *string
	PublishedYear *int
	Quantity      *int
}

// Create inserts a new book with all copies available. ISBN uniqueness is
// enforced here when an ISBN is set; empty ISBNs are allowed to repeat.
func (r *Repository) Create(title, author, isbn string, publishedYear, quantity int) (*entities.Book, error) {
	if quantity < 1 {
		quantity = 1
	}
	book := &entities.Book{
		Title:         title,
		Author:        author,
		ISBN:          isbn,
		PublishedYear: publishedYear,
		Quantity:      quantity,
		Available:     quantity,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if isbn != "" {
			var count int64
			if err := tx.Model(&entities.Book{}).Where("isbn = ?", isbn).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrISBNExists
			}
		}
		return tx.Create(book).Error
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetByID retrieves a book by ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// GetByISBN retrieves a book by ISBN.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// List returns books in id order, optionally filtered by a title/author
// substring match.
func (r *Repository) List(search string, offset, limit int) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", pattern, pattern)
	}

	var books []entities.Book
	err := query.Order("id").Offset(offset).Limit(limit).Find(&books).Error
	return books, err
}

// Update applies a partial update. Changing the quantity re-derives available
// from the count of currently borrowed copies, so the counters stay consistent;
// shrinking quantity below the checked-out count is rejected.
func (r *Repository) Update(id uint, patch Patch) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]any{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Author != nil {
			updates["author"] = *patch.Author
		}
		if patch.ISBN != nil && *patch.ISBN != book.ISBN {
			if *patch.ISBN != "" {
				var count int64
				if err := tx.Model(&entities.Book{}).
					Where("isbn = ? AND id != ?", *patch.ISBN, id).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return ErrISBNExists
				}
			}
			updates["isbn"] = *patch.ISBN
		}
		if patch.PublishedYear != nil {
			updates["published_year"] = *patch.PublishedYear
		}
		if patch.Quantity != nil {
			if *patch.Quantity < 1 {
				return fmt.Errorf("quantity must be at least 1")
			}
			var borrowed int64
			if err := tx.Model(&entities.Borrowing{}).
				Where("book_id = ? AND status = ?", id, entities.BorrowingStatusBorrowed).
				Count(&borrowed).Error; err != nil {
				return err
			}
			if int64(*patch.Quantity) < borrowed {
				return ErrQuantityTooLow
			}
			updates["quantity"] = *patch.Quantity
			updates["available"] = *patch.Quantity - int(borrowed)
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&book).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Delete removes a book and its borrowing history.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("book_id = ?", id).Delete(&entities.Borrowing{}).Error
	})
}
