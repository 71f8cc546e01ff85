package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/books"
	"librarium/internal/database/borrowings"
	"librarium/internal/entities"
	"librarium/internal/ledger"
)

type seedBook struct {
	Title         string
	Author        string
	ISBN          string
	PublishedYear int
	Quantity      int
}

type seedUser struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     entities.UserRole
}

var seedUsers = []seedUser{
	{"admin", "admin@library.com", "System Administrator", "admin123", entities.UserRoleAdmin},
	{"user1", "user1@example.com", "John Doe", "user123", entities.UserRoleUser},
	{"user2", "user2@example.com", "Jane Smith", "user123", entities.UserRoleUser},
}

var seedBooks = []seedBook{
	{"To Kill a Mockingbird", "Harper Lee", "978-0-06-112008-4", 1960, 5},
	{"1984", "George Orwell", "978-0-452-28423-4", 1949, 3},
	{"Pride and Prejudice", "Jane Austen", "978-0-14-143951-8", 1813, 4},
	{"The Great Gatsby", "F. Scott Fitzgerald", "978-0-7432-7356-5", 1925, 2},
	{"Harry Potter and the Philosopher's Stone", "J.K. Rowling", "978-0-7475-3269-9", 1997, 6},
	{"The Catcher in the Rye", "J.D. Salinger", "978-0-316-76948-0", 1951, 3},
	{"The Lord of the Rings", "J.R.R. Tolkien", "978-0-618-00222-1", 1954, 4},
}

// SeedCommand populates the database with demo users, books and borrowings.
type SeedCommand struct {
	DatabasePath   string
	WithBorrowings bool
}

// NewSeedCommand creates a new SeedCommand
func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

// ParseFlags parses command line flags
func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.WithBorrowings, "borrowings", true, "Also create demo borrowings")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Seed the database with demo users, books and borrowings.\n")
		fmt.Fprintf(os.Stderr, "Existing records are left untouched.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run seeds the database, skipping records that already exist.
func (cmd *SeedCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	authService := auth.NewService(db.DB, cfg.Auth)
	booksRepo := books.NewRepository(db.DB)
	borrowingsRepo := borrowings.NewRepository(db.DB, ledger.New())

	fmt.Println("Seeding database with test data...")

	fmt.Println("\nCreating users...")
	createdUsers := make([]*entities.User, 0, len(seedUsers))
	for _, u := range seedUsers {
		existing, err := authService.GetUserByUsername(u.Username)
		if err == nil {
			createdUsers = append(createdUsers, existing)
			fmt.Printf("   Already exists: %s\n", u.Username)
			continue
		}
		user, err := authService.Register(u.Username, u.Email, u.FullName, u.Password, u.Role)
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.Username, err)
		}
		createdUsers = append(createdUsers, user)
		fmt.Printf("   Created: %s (%s)\n", user.Username, user.Role)
	}

	fmt.Println("\nCreating books...")
	createdBooks := make([]*entities.Book, 0, len(seedBooks))
	for _, b := range seedBooks {
		existing, err := booksRepo.GetByISBN(b.ISBN)
		if err == nil {
			createdBooks = append(createdBooks, existing)
			fmt.Printf("   Already exists: %s\n", b.Title)
			continue
		}
		book, err := booksRepo.Create(b.Title, b.Author, b.ISBN, b.PublishedYear, b.Quantity)
		if err != nil {
			return fmt.Errorf("failed to create book %s: %w", b.Title, err)
		}
		createdBooks = append(createdBooks, book)
		fmt.Printf("   Added: %s - %s\n", book.Title, book.Author)
	}

	if cmd.WithBorrowings && len(createdUsers) >= 3 && len(createdBooks) >= 3 {
		fmt.Println("\nCreating test borrowings...")
		now := time.Now()

		if _, err := borrowingsRepo.Create(createdUsers[1].ID, createdBooks[0].ID, now.AddDate(0, 0, -7)); err == nil {
			fmt.Printf("   %s borrowed: %s\n", createdUsers[1].Username, createdBooks[0].Title)
		}

		returned, err := borrowingsRepo.Create(createdUsers[1].ID, createdBooks[1].ID, now.AddDate(0, 0, -20))
		if err == nil {
			if _, err := borrowingsRepo.MarkReturned(returned.ID, now.AddDate(0, 0, -6)); err == nil {
				fmt.Printf("   %s returned: %s\n", createdUsers[1].Username, createdBooks[1].Title)
			}
		}

		if _, err := borrowingsRepo.Create(createdUsers[2].ID, createdBooks[2].ID, now.AddDate(0, 0, -3)); err == nil {
			fmt.Printf("   %s borrowed: %s\n", createdUsers[2].Username, createdBooks[2].Title)
		}
	}

	fmt.Println("\nDone. Demo credentials:")
	fmt.Println("   admin / admin123")
	fmt.Println("   user1 / user123")
	fmt.Println("   user2 / user123")
	return nil
}
