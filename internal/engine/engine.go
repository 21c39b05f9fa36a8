package engine

import (
	"context"
	"errors"

	"github.com/smartbrain/smartbrain/internal/config"
	"github.com/smartbrain/smartbrain/internal/database"
	"github.com/smartbrain/smartbrain/internal/replicate"
)

var (
	// ErrInvalidCredentials indicates a failed sign-in attempt. It covers both
	// an unknown email and a wrong password so the response doesn't leak which
	// check failed.
	ErrInvalidCredentials = errors.New("wrong credentials")
	// ErrUserLookup indicates that a login row exists but the matching user
	// row could not be fetched.
	ErrUserLookup = errors.New("unable to get user")
	// ErrMissingFields indicates a registration request with empty fields.
	ErrMissingFields = errors.New("missing required fields")
	// ErrPasswordHash indicates that hashing the password failed.
	ErrPasswordHash = errors.New("error during password hashing")
	// ErrPromptRequired indicates a generation request without a prompt.
	ErrPromptRequired = errors.New("prompt is required")
	// ErrUserIDRequired indicates a generation request without a user id.
	ErrUserIDRequired = errors.New("user ID is required")
	// ErrGenerationCanceled indicates that the provider canceled the prediction.
	ErrGenerationCanceled = errors.New("image generation was canceled")
	// ErrGenerationTimeout indicates that the prediction did not reach a
	// terminal state within the polling budget.
	ErrGenerationTimeout = errors.New("image generation timed out")
)

// GenerationError indicates that the provider reported a failed prediction.
// It carries the provider's error detail.
type GenerationError struct {
	Detail string
}

func (e *GenerationError) Error() string {
	return "image generation failed: " + e.Detail
}

// ImageProvider is the subset of the replicate client used by the engine.
type ImageProvider interface {
	CreatePrediction(ctx context.Context, input replicate.PredictionInput) (*replicate.Prediction, error)
	GetPrediction(ctx context.Context, id string) (*replicate.Prediction, error)
}

// Engine implements the smartbrain services: sign-in, registration and the
// image generation proxy.
type Engine struct {
	cfg      *config.Config
	db       database.DB
	provider ImageProvider
	poll     PollPolicy
}

// New creates a new Engine instance.
func New(cfg *config.Config, db database.DB, provider ImageProvider) *Engine {
	return &Engine{
		cfg:      cfg,
		db:       db,
		provider: provider,
		poll: PollPolicy{
			Interval:    cfg.Replicate.PollInterval,
			MaxAttempts: cfg.Replicate.MaxPollAttempts,
		},
	}
}

// Profile returns the user record for the given id.
func (e *Engine) Profile(ctx context.Context, id uint) (*database.User, error) {
	return e.db.GetUserByID(ctx, id)
}
