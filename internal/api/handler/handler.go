package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/smartbrain/smartbrain/internal/api/models"
	"github.com/smartbrain/smartbrain/internal/database"
	"github.com/smartbrain/smartbrain/internal/engine"
)

type Handler struct {
	engine *engine.Engine
}

func New(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// SignIn verifies credentials and returns the user record. Both an unknown
// email and a wrong password produce the same response.
func (h *Handler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, "wrong credentials")
		return
	}

	user, err := h.engine.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, engine.ErrUserLookup) {
			c.JSON(http.StatusBadRequest, "unable to get user")
			return
		}
		c.JSON(http.StatusBadRequest, "wrong credentials")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Register creates a new account and returns the created user record.
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := h.engine.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		case errors.Is(err, database.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		case errors.Is(err, engine.ErrPasswordHash):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error during password hashing"})
		default:
			log.Error("registration failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to register"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// Profile returns the user record for the given id.
func (h *Handler) Profile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user, err := h.engine.Profile(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Error("failed to fetch user", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GenerateImage proxies an image generation request to the provider and, on
// success, returns the image URL together with the updated entries counter.
func (h *Handler) GenerateImage(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	// The poll loop runs to completion even if the caller disconnects.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.engine.GenerateImage(ctx, req.Prompt, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrPromptRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		case errors.Is(err, engine.ErrUserIDRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		case errors.Is(err, database.ErrUserNotFound):
			log.Error("generation succeeded but user is unknown", "id", req.ID)
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			log.Error("image generation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate image", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, models.GenerateImageResponse{
		ImageURL: result.ImageURL,
		Entries:  result.Entries,
		Name:     result.Name,
	})
}
