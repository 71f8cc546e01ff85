package http

import (
	"github.com/gin-gonic/gin"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/books"
	"librarium/internal/database/borrowings"
	"librarium/internal/database/users"
)

// RouterConfig carries all dependencies for NewRouter, keeping the constructor
// signature stable as the dependency set grows.
type RouterConfig struct {
	Database       *database.Database
	Books          *books.Repository
	Users          *users.Repository
	Borrowings     *borrowings.Repository
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService)
	booksController := NewBooksController(cfg.Books)
	usersController := NewUsersController(cfg.Users, cfg.AuthConfig)
	borrowingsController := NewBorrowingsController(cfg.Borrowings)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Authentication endpoints
	router.POST("/auth/register", authController.Register)
	router.POST("/auth/login", authController.Login)

	// User management endpoints
	router.GET("/users/me", usersController.Me)
	router.GET("/users", usersController.List)
	router.GET("/users/:id", usersController.Get)
	router.PUT("/users/:id", usersController.Update)
	router.DELETE("/users/:id", usersController.Delete)

	// Book catalog endpoints
	router.POST("/books", booksController.Create)
	router.GET("/books", booksController.List)
	router.GET("/books/:id", booksController.Get)
	router.PUT("/books/:id", booksController.Update)
	router.DELETE("/books/:id", booksController.Delete)

	// Borrowing endpoints
	router.POST("/borrowings", borrowingsController.Create)
	router.GET("/borrowings", borrowingsController.List)
	router.GET("/borrowings/my", borrowingsController.My)
	router.GET("/borrowings/:id", borrowingsController.Get)
	router.PUT("/borrowings/:id", borrowingsController.Update)
	router.DELETE("/borrowings/:id", borrowingsController.Delete)

	return router
}
