package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	// ErrLoginNotFound indicates that no login row exists for the given email.
	ErrLoginNotFound = errors.New("login not found")
	// ErrUserNotFound indicates that no user row exists for the given email or id.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail indicates that the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// DB defines the interface for database operations.
type DB interface {
	CreateUser(ctx context.Context, name, email, hash string) (*User, error)
	GetLoginByEmail(ctx context.Context, email string) (*Login, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	IncrementEntries(ctx context.Context, id uint) (*User, error)
}

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New connects to postgres using the given connection string and performs
// migrations. The connection is verified before the client is returned.
func New(url string) (*Client, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newClient(db)
}

func newClient(db *gorm.DB) (*Client, error) {
	if err := db.AutoMigrate(
		&Login{},
		&User{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}
