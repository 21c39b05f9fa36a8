package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartbrain/smartbrain/internal/database"
)

// SignIn verifies the email/password pair and returns the matching user
// record. It has no side effects.
func (e *Engine) SignIn(ctx context.Context, email, password string) (*database.User, error) {
	login, err := e.db.GetLoginByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrLoginNotFound) {
			log.Debug("sign-in attempt for unknown email", "email", email)
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up login", "error", err)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(login.Hash), []byte(password)); err != nil {
		log.Debug("sign-in password mismatch", "email", email)
		return nil, ErrInvalidCredentials
	}

	user, err := e.db.GetUserByEmail(ctx, email)
	if err != nil {
		// A login without a user row is an inconsistency, not a bad password.
		log.Error("user record missing for login", "email", email, "error", err)
		return nil, ErrUserLookup
	}
	return user, nil
}

// Register creates the login and user rows for a new account and returns the
// created user. The two inserts happen in one transaction.
func (e *Engine) Register(ctx context.Context, name, email, password string) (*database.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPasswordHash, err)
	}

	user, err := e.db.CreateUser(ctx, name, email, string(hash))
	if err != nil {
		return nil, err
	}

	log.Info("registered new user", "id", user.ID, "email", user.Email)
	return user, nil
}
