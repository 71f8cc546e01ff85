// Package users provides database operations for user administration.
// Registration and credential checks live in internal/auth; this package
// covers the admin-facing user management surface.
package users

import (
	"errors"

	"gorm.io/gorm"

	"librarium/internal/entities"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("user with this email already exists")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Patch carries partial updates for a user. Nil fields are left untouched.
type Patch struct {
	Email        *string
	FullName     *string
	PasswordHash *string
	IsActive     *bool
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns users in id order.
func (r *Repository) List(offset, limit int) ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("id").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Update applies a partial update and returns the updated user. Email changes
// are checked for duplicates here so the conflict surfaces as a business error
// instead of a driver constraint violation.
func (r *Repository) Update(id uint, patch Patch) (*entities.User, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if patch.Email != nil && *patch.Email != user.Email {
			var count int64
			if err := tx.Model(&entities.User{}).
				Where("email = ? AND id != ?", *patch.Email, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrEmailExists
			}
			updates["email"] = *patch.Email
		}
		if patch.FullName != nil {
			updates["full_name"] = *patch.FullName
		}
		if patch.PasswordHash != nil {
			updates["password_hash"] = *patch.PasswordHash
		}
		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	return user, nil
}

// Delete removes a user.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
