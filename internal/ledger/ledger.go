// Package ledger owns the available/quantity counters on books. It answers
// "is a copy available?" and applies signed adjustments to the available
// counter inside a caller-supplied transaction, so that a reservation and the
// borrowing row it pairs with commit or roll back together.
package ledger

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"librarium/internal/entities"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrNoAvailableCopies = errors.New("no available copies")
)

type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

// Reserve decrements the book's available counter by one. The decrement is
// guarded in SQL (available > 0), so concurrent callers racing for the last
// copy cannot drive the counter below zero: exactly one of them updates a row,
// the rest see no rows affected and get ErrNoAvailableCopies.
func (l *Ledger) Reserve(tx *gorm.DB, bookID uint) error {
	result := tx.Model(&entities.Book{}).
		Where("id = ? AND available > 0", bookID).
		UpdateColumn("available", gorm.Expr("available - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return l.classifyMiss(tx, bookID, ErrNoAvailableCopies)
	}
	return nil
}

// Release increments the book's available counter by one, clamped at quantity.
// A release that would push available past quantity indicates a double-release
// upstream; it is logged and absorbed rather than inflating the counter.
func (l *Ledger) Release(tx *gorm.DB, bookID uint) error {
	result := tx.Model(&entities.Book{}).
		Where("id = ? AND available < quantity", bookID).
		UpdateColumn("available", gorm.Expr("available + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := l.classifyMiss(tx, bookID, nil); err != nil {
			return err
		}
		log.Printf("ledger: release for book %d ignored, available already at quantity", bookID)
	}
	return nil
}

// classifyMiss distinguishes "book does not exist" from "guard condition not
// met" after a guarded update touched no rows.
func (l *Ledger) classifyMiss(tx *gorm.DB, bookID uint, guardErr error) error {
	var count int64
	if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrBookNotFound
	}
	return guardErr
}
