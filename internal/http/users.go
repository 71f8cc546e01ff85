package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database/users"
	"librarium/internal/policy"
)

// UsersController handles the admin user management surface plus /users/me.
type UsersController struct {
	users      *users.Repository
	authConfig config.Auth
}

func NewUsersController(repo *users.Repository, authConfig config.Auth) *UsersController {
	return &UsersController{users: repo, authConfig: authConfig}
}

type userUpdateRequest struct {
	Email    *string `json:"email" binding:"omitempty,max=254"`
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

// Me returns the authenticated user.
// GET /users/me
func (uc *UsersController) Me(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	user, err := uc.users.GetByID(principal.UserID)
	if err != nil {
		respondInternalError(c, err, "get current user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// List returns all users (admin only).
// GET /users
func (uc *UsersController) List(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionUserList, 0) {
		return
	}

	offset, limit := parsePagination(c)
	result, err := uc.users.List(offset, limit)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns a user by id (admin only).
// GET /users/:id
func (uc *UsersController) Get(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionUserRead, 0) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := uc.users.GetByID(id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update patches user fields (admin only).
// PUT /users/:id
func (uc *UsersController) Update(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionUserUpdate, 0) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	patch := users.Patch{
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, uc.authConfig.BcryptCost)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		patch.PasswordHash = &hash
	}

	user, err := uc.users.Update(id, patch)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, users.ErrEmailExists):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "update user")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes a user (admin only).
// DELETE /users/:id
func (uc *UsersController) Delete(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if !authorize(c, principal, policy.ActionUserDelete, 0) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := uc.users.Delete(id); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}

	c.Status(http.StatusNoContent)
}
