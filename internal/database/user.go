package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// CreateUser inserts the login and user rows for a new registration as a
// single transaction. If either insert fails, neither row is retained.
func (c *Client) CreateUser(ctx context.Context, name, email, hash string) (*User, error) {
	user := &User{
		Name:    name,
		Email:   email,
		Entries: 0,
		Joined:  time.Now(),
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&Login{Email: email, Hash: hash}).Error; err != nil {
			return err
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		log.Error("failed to create user", "error", err)
		return nil, err
	}
	return user, nil
}

// GetLoginByEmail returns the stored credentials for the given email.
func (c *Client) GetLoginByEmail(ctx context.Context, email string) (*Login, error) {
	var login Login
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&login).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoginNotFound
		}
		log.Error("failed to get login by email", "error", err)
		return nil, err
	}
	return &login, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by email", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by ID", "error", err)
		return nil, err
	}
	return &user, nil
}

// IncrementEntries atomically increments the entries counter of the given
// user by one and returns the updated record.
func (c *Client) IncrementEntries(ctx context.Context, id uint) (*User, error) {
	res := c.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("entries", gorm.Expr("entries + ?", 1))
	if res.Error != nil {
		log.Error("failed to increment entries", "error", res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return c.GetUserByID(ctx, id)
}
