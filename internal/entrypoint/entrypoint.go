package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/books"
	"librarium/internal/database/borrowings"
	"librarium/internal/database/users"
	http_controllers "librarium/internal/http"
	"librarium/internal/ledger"
	"librarium/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown: wait for an interrupt, then give in-flight requests
	// a bounded window to complete.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarium v%s", version)

	if cfg.Auth.SecretKey == "" {
		log.Fatalf("SECRET_KEY is not set; refusing to issue unsigned tokens")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	inventory := ledger.New()
	booksRepo := books.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	borrowingsRepo := borrowings.NewRepository(db.DB, inventory)

	authService := auth.NewService(db.DB, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService)

	hasAdmin, err := authService.HasAdmin()
	if err == nil && !hasAdmin {
		log.Printf("No admin account found. Run '%s create-admin' to create one.", os.Args[0])
	}

	// Start the inventory audit if enabled
	var audit *scheduler.InventoryAudit
	var auditCancel context.CancelFunc
	if cfg.Audit.Enabled {
		audit = scheduler.NewInventoryAudit(db, cfg.Audit.Schedule)

		var auditCtx context.Context
		auditCtx, auditCancel = context.WithCancel(context.Background())
		if err := audit.Start(auditCtx); err != nil {
			log.Fatalf("Failed to start inventory audit: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Books:          booksRepo,
		Users:          usersRepo,
		Borrowings:     borrowingsRepo,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		AuthConfig:     cfg.Auth,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if audit != nil {
			audit.Stop()
			auditCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
