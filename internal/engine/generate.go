package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/smartbrain/smartbrain/internal/replicate"
)

// PollPolicy bounds the status polling of a running prediction.
type PollPolicy struct {
	// Interval is the delay between two status polls.
	Interval time.Duration
	// MaxAttempts is the maximum number of status polls before giving up.
	MaxAttempts int
}

// GenerationResult is the outcome of a successful image generation.
type GenerationResult struct {
	ImageURL string
	Entries  int64
	Name     string
}

// GenerateImage submits a prediction for the given prompt, waits for it to
// reach a terminal state and, on success, increments the user's entries
// counter. The counter is only touched after the provider reported success.
func (e *Engine) GenerateImage(ctx context.Context, prompt string, userID uint) (*GenerationResult, error) {
	if prompt == "" {
		return nil, ErrPromptRequired
	}
	if userID == 0 {
		return nil, ErrUserIDRequired
	}

	prediction, err := e.provider.CreatePrediction(ctx, replicate.PredictionInput{
		Prompt:            prompt,
		NumOutputs:        1,
		NumInferenceSteps: 30,
		GuidanceScale:     7.5,
		Scheduler:         "DPMSolverMultistep",
		Width:             768,
		Height:            768,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit prediction: %w", err)
	}
	log.Info("prediction started", "id", prediction.ID, "status", prediction.Status)

	final, err := e.poll.Wait(ctx, e.provider, prediction.ID)
	if err != nil {
		return nil, err
	}

	imageURL := final.Output.First()
	if imageURL == "" {
		return nil, &GenerationError{Detail: "no output received from image generation"}
	}

	user, err := e.db.IncrementEntries(ctx, userID)
	if err != nil {
		// The prediction succeeded but can't be attributed to a user.
		log.Error("failed to update entries after successful generation", "user", userID, "error", err)
		return nil, err
	}

	return &GenerationResult{
		ImageURL: imageURL,
		Entries:  user.Entries,
		Name:     user.Name,
	}, nil
}

// Wait polls the prediction status until it reaches a terminal state or the
// attempt budget is exhausted.
func (p PollPolicy) Wait(ctx context.Context, provider ImageProvider, id string) (*replicate.Prediction, error) {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		prediction, err := provider.GetPrediction(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to poll prediction: %w", err)
		}
		log.Debug("waiting for prediction", "id", id, "status", prediction.Status, "attempt", attempt, "max", p.MaxAttempts)

		switch prediction.Status {
		case replicate.StatusSucceeded:
			return prediction, nil
		case replicate.StatusFailed:
			return nil, &GenerationError{Detail: prediction.Error}
		case replicate.StatusCanceled:
			return nil, ErrGenerationCanceled
		}

		time.Sleep(p.Interval)
	}
	return nil, ErrGenerationTimeout
}
