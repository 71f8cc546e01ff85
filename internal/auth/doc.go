// Package auth provides authentication for the application.
//
// Callers authenticate with a JWT bearer token obtained from /auth/login.
// Tokens are signed with HS256 and carry the username as subject; the
// middleware resolves them back to an active user on every request.
//
// # Configuration
//
//	SECRET_KEY=<signing-secret>   # Required for token issuance
//	ACCESS_TOKEN_EXPIRY=30m       # Token lifetime
//	BCRYPT_COST=12                # bcrypt cost factor
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(db.DB, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService)
//	router.Use(authMiddleware.Handler())
//
// Extract the caller in handlers:
//
//	principal, ok := auth.CurrentPrincipal(c)
package auth
