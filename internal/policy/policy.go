// Package policy decides which caller may invoke which operation. All access
// rules live in one declarative table instead of role conditionals scattered
// across handlers.
package policy

import (
	"errors"

	"librarium/internal/entities"
)

var ErrForbidden = errors.New("access forbidden")

type Action string

const (
	ActionBorrowingCreate Action = "borrowing.create"
	ActionBorrowingRead   Action = "borrowing.read"
	ActionBorrowingUpdate Action = "borrowing.update"
	ActionBorrowingDelete Action = "borrowing.delete"

	ActionBookCreate Action = "book.create"
	ActionBookRead   Action = "book.read"
	ActionBookUpdate Action = "book.update"
	ActionBookDelete Action = "book.delete"

	ActionUserList   Action = "user.list"
	ActionUserRead   Action = "user.read"
	ActionUserUpdate Action = "user.update"
	ActionUserDelete Action = "user.delete"
)

// Rule describes who may perform an action.
type Rule int

const (
	// AnyUser allows every authenticated caller.
	AnyUser Rule = iota
	// OwnerOrAdmin allows the owner of the target resource and admins.
	OwnerOrAdmin
	// AdminOnly allows admins.
	AdminOnly
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uint
	Role   entities.UserRole
}

var rules = map[Action]Rule{
	ActionBorrowingCreate: AnyUser,
	ActionBorrowingRead:   OwnerOrAdmin,
	ActionBorrowingUpdate: OwnerOrAdmin,
	ActionBorrowingDelete: AdminOnly,

	ActionBookCreate: AdminOnly,
	ActionBookRead:   AnyUser,
	ActionBookUpdate: AdminOnly,
	ActionBookDelete: AdminOnly,

	ActionUserList:   AdminOnly,
	ActionUserRead:   AdminOnly,
	ActionUserUpdate: AdminOnly,
	ActionUserDelete: AdminOnly,
}

// Authorize checks the principal against the rule table. ownerID is the user
// owning the target resource; pass zero for resources without an owner.
// Unknown actions are denied.
func Authorize(p Principal, action Action, ownerID uint) error {
	rule, ok := rules[action]
	if !ok {
		return ErrForbidden
	}

	switch rule {
	case AnyUser:
		return nil
	case OwnerOrAdmin:
		if p.Role == entities.UserRoleAdmin || (ownerID != 0 && p.UserID == ownerID) {
			return nil
		}
	case AdminOnly:
		if p.Role == entities.UserRoleAdmin {
			return nil
		}
	}
	return ErrForbidden
}
