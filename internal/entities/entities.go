package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type BorrowingStatus string

const (
	BorrowingStatusBorrowed BorrowingStatus = "borrowed"
	BorrowingStatusReturned BorrowingStatus = "returned"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	FullName     string    `gorm:"size:255" json:"full_name,omitempty"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	Role         UserRole  `gorm:"size:16;default:'user'" json:"role"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	Borrowings []Borrowing `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Book carries the inventory counters. Quantity is the number of copies the
// library owns, Available the number currently loanable. Available moves only
// through borrowing transitions, never by direct assignment; at all times
// Quantity - Available equals the count of borrowed records for the book.
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"index;size:200" json:"title"`
	Author        string    `gorm:"index;size:100" json:"author"`
	ISBN          string    `gorm:"index;size:20" json:"isbn,omitempty"`
	PublishedYear int       `json:"published_year,omitempty"`
	Quantity      int       `json:"quantity"`
	Available     int       `json:"available"`
	CreatedAt     time.Time `json:"created_at"`

	Borrowings []Borrowing `gorm:"foreignKey:BookID" json:"-"`
}

// Borrowing links a user and a book copy-slot. The status state machine is
// one-directional: borrowed -> returned, with idempotent re-entry into
// returned.
type Borrowing struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index" json:"user_id"`
	BookID     uint            `gorm:"index" json:"book_id"`
	BorrowDate time.Time       `json:"borrow_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty"`
	Status     BorrowingStatus `gorm:"size:16;index;default:'borrowed'" json:"status"`
	CreatedAt  time.Time       `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`
}
