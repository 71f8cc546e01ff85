package cli

import (
	"flag"
	"fmt"
	"os"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/entities"
)

// CreateAdminCommand bootstraps the first administrator account.
type CreateAdminCommand struct {
	DatabasePath string
	Username     string
	Email        string
	FullName     string
	Password     string
}

// NewCreateAdminCommand creates a new CreateAdminCommand
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "username", "admin", "Administrator username")
	fs.StringVar(&cmd.Email, "email", "admin@library.com", "Administrator email")
	fs.StringVar(&cmd.FullName, "full-name", "System Administrator", "Administrator display name")
	fs.StringVar(&cmd.Password, "password", "", "Administrator password (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the first administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -password 'change-me-soon'\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run creates the administrator account.
func (cmd *CreateAdminCommand) Run() error {
	if cmd.Password == "" {
		return fmt.Errorf("-password is required")
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, cfg.Auth)

	if _, err := service.GetUserByUsername(cmd.Username); err == nil {
		return fmt.Errorf("user %q already exists", cmd.Username)
	}

	admin, err := service.Register(cmd.Username, cmd.Email, cmd.FullName, cmd.Password, entities.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Printf("Successfully created admin!\n")
	fmt.Printf("   Username: %s\n", admin.Username)
	fmt.Printf("   Email: %s\n", admin.Email)
	fmt.Printf("   Role: %s\n", admin.Role)
	fmt.Printf("\nWARNING: Change password after first login!\n")
	return nil
}
