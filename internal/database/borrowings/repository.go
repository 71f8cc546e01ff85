// Package borrowings manages the borrowing lifecycle. Every mutation pairs a
// row change with the matching ledger adjustment in a single transaction, so
// no partial counter update can survive a failed insert or vice versa.
package borrowings

import (
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"librarium/internal/entities"
	"librarium/internal/ledger"
)

const (
	maxRetries = 3
	retryDelay = 50 * time.Millisecond
)

var (
	ErrNotFound          = errors.New("borrowing not found")
	ErrInvalidTransition = errors.New("borrowing cannot move from returned back to borrowed")
	ErrConflict          = errors.New("storage conflict, retries exhausted")
)

// Repository handles all borrowing database operations.
type Repository struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

// NewRepository creates a new borrowings repository.
func NewRepository(db *gorm.DB, l *ledger.Ledger) *Repository {
	return &Repository{db: db, ledger: l}
}

// Filter restricts List results. Zero values mean "no filter".
type Filter struct {
	UserID uint
	Status entities.BorrowingStatus
}

// Patch carries partial updates for a borrowing. Nil fields are left untouched.
type Patch struct {
	Status     *entities.BorrowingStatus
	ReturnDate *time.Time
}

// Create reserves a copy and inserts the borrowing row as one transaction.
// Fails with ledger.ErrBookNotFound or ledger.ErrNoAvailableCopies without
// side effects.
func (r *Repository) Create(userID, bookID uint, borrowDate time.Time) (*entities.Borrowing, error) {
	var record *entities.Borrowing
	err := r.withRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			if err := r.ledger.Reserve(tx, bookID); err != nil {
				return err
			}
			b := &entities.Borrowing{
				UserID:     userID,
				BookID:     bookID,
				BorrowDate: borrowDate,
				Status:     entities.BorrowingStatusBorrowed,
			}
			if err := tx.Create(b).Error; err != nil {
				return err
			}
			record = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// MarkReturned transitions a borrowing to returned and releases its copy. The
// transition is idempotent with respect to inventory: an already-returned
// record accepts return date edits but triggers no further ledger call.
func (r *Repository) MarkReturned(id uint, returnDate time.Time) (*entities.Borrowing, error) {
	status := entities.BorrowingStatusReturned
	return r.Update(id, Patch{Status: &status, ReturnDate: &returnDate})
}

// Update applies a partial update. Changing status to returned from borrowed
// releases the copy; moving a returned record back to borrowed is rejected, the
// state machine is one-directional.
func (r *Repository) Update(id uint, patch Patch) (*entities.Borrowing, error) {
	var record entities.Borrowing
	err := r.withRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&record, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}

			updates := map[string]any{}
			if patch.Status != nil {
				switch {
				case *patch.Status == entities.BorrowingStatusReturned &&
					record.Status != entities.BorrowingStatusReturned:
					if err := r.ledger.Release(tx, record.BookID); err != nil {
						return err
					}
				case *patch.Status == entities.BorrowingStatusBorrowed &&
					record.Status == entities.BorrowingStatusReturned:
					return ErrInvalidTransition
				}
				updates["status"] = *patch.Status
			}
			if patch.ReturnDate != nil {
				updates["return_date"] = *patch.ReturnDate
			}

			if len(updates) == 0 {
				return nil
			}
			if err := tx.Model(&record).Updates(updates).Error; err != nil {
				return err
			}
			if patch.Status != nil {
				record.Status = *patch.Status
			}
			if patch.ReturnDate != nil {
				record.ReturnDate = patch.ReturnDate
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a borrowing. Deleting a borrowed record counts as an implicit
// return and releases the copy; deleting a returned record leaves the counter
// alone.
func (r *Repository) Delete(id uint) error {
	return r.withRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			var record entities.Borrowing
			if err := tx.First(&record, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if record.Status == entities.BorrowingStatusBorrowed {
				if err := r.ledger.Release(tx, record.BookID); err != nil {
					return err
				}
			}
			return tx.Delete(&record).Error
		})
	})
}

// GetByID retrieves a borrowing by ID.
func (r *Repository) GetByID(id uint) (*entities.Borrowing, error) {
	var record entities.Borrowing
	err := r.db.First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// List returns borrowings matching the filter in stable id order.
func (r *Repository) List(filter Filter, offset, limit int) ([]entities.Borrowing, error) {
	query := r.db.Model(&entities.Borrowing{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var records []entities.Borrowing
	err := query.Order("id").Offset(offset).Limit(limit).Find(&records).Error
	return records, err
}

// CountActiveForBook returns the number of borrowed records for a book. Used
// by the inventory audit to check quantity - available against reality.
func (r *Repository) CountActiveForBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Borrowing{}).
		Where("book_id = ? AND status = ?", bookID, entities.BorrowingStatusBorrowed).
		Count(&count).Error
	return count, err
}

// withRetry re-runs fn when SQLite reports a busy or locked database, a
// bounded number of times. Business errors pass through untouched.
func (r *Repository) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(retryDelay * time.Duration(attempt+1))
	}
	return ErrConflict
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
