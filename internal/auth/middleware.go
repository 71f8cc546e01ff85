package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"librarium/internal/entities"
	"librarium/internal/policy"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
)

// Middleware handles bearer token authentication for HTTP requests.
type Middleware struct {
	service     *Service
	publicPaths map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service) *Middleware {
	publicPaths := map[string]bool{
		"/health":        true,
		"/ping":          true,
		"/auth/login":    true,
		"/auth/register": true,
	}

	return &Middleware{
		service:     service,
		publicPaths: publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		user := m.tryBearerAuth(c)
		if user == nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUsername, user.Username)
		c.Set(ContextKeyRole, user.Role)
		c.Next()
	}
}

// tryBearerAuth attempts to authenticate using a Bearer token.
func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	user, err := m.service.ValidateToken(parts[1])
	if err != nil {
		return nil
	}

	return user
}

// CurrentPrincipal extracts the authenticated caller from the Gin context.
// The second return value is false on unauthenticated requests.
func CurrentPrincipal(c *gin.Context) (policy.Principal, bool) {
	userID, ok := c.Get(ContextKeyUserID)
	if !ok {
		return policy.Principal{}, false
	}
	role, ok := c.Get(ContextKeyRole)
	if !ok {
		return policy.Principal{}, false
	}
	return policy.Principal{
		UserID: userID.(uint),
		Role:   role.(entities.UserRole),
	}, true
}
