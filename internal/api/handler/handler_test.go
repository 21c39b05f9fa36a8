package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbrain/smartbrain/internal/config"
	"github.com/smartbrain/smartbrain/internal/database"
	dbmock "github.com/smartbrain/smartbrain/internal/database/mock"
	"github.com/smartbrain/smartbrain/internal/engine"
	"github.com/smartbrain/smartbrain/internal/replicate"
)

// mockProvider always reports the same status sequence, one status per poll.
type mockProvider struct {
	statuses    []replicate.Status
	output      replicate.Output
	failDetail  string
	createCalls int
	getCalls    int
}

func (m *mockProvider) CreatePrediction(_ context.Context, _ replicate.PredictionInput) (*replicate.Prediction, error) {
	m.createCalls++
	return &replicate.Prediction{ID: "pred-1", Status: replicate.StatusStarting}, nil
}

func (m *mockProvider) GetPrediction(_ context.Context, id string) (*replicate.Prediction, error) {
	idx := m.getCalls
	if idx >= len(m.statuses) {
		idx = len(m.statuses) - 1
	}
	m.getCalls++

	p := &replicate.Prediction{ID: id, Status: m.statuses[idx]}
	if p.Status == replicate.StatusSucceeded {
		p.Output = m.output
	}
	if p.Status == replicate.StatusFailed {
		p.Error = m.failDetail
	}
	return p, nil
}

func setupRouter(db database.DB, provider engine.ImageProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Replicate: &config.ReplicateConfig{
			PollInterval:    0,
			MaxPollAttempts: 30,
		},
	}
	h := New(engine.New(cfg, db, provider))

	r := gin.New()
	r.POST("/signin", h.SignIn)
	r.POST("/register", h.Register)
	r.GET("/profile/:id", h.Profile)
	r.POST("/generate-image", h.GenerateImage)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, r *gin.Engine) database.User {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/register", gin.H{
		"name":     "Ann",
		"email":    "ann@example.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user database.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func TestRegisterEndpoint(t *testing.T) {
	r := setupRouter(dbmock.NewMockDB(), nil)

	user := registerUser(t, r)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Ann", user.Name)
	assert.EqualValues(t, 0, user.Entries)
	assert.False(t, user.Joined.IsZero())
}

func TestRegisterEndpoint_MissingFields(t *testing.T) {
	r := setupRouter(dbmock.NewMockDB(), nil)

	w := doJSON(t, r, http.MethodPost, "/register", gin.H{"email": "ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, w.Body.String())
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	r := setupRouter(dbmock.NewMockDB(), nil)
	registerUser(t, r)

	w := doJSON(t, r, http.MethodPost, "/register", gin.H{
		"name":     "Other Ann",
		"email":    "ann@example.com",
		"password": "hunter3",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"User already exists"}`, w.Body.String())
}

func TestSignInEndpoint(t *testing.T) {
	r := setupRouter(dbmock.NewMockDB(), nil)
	user := registerUser(t, r)

	w := doJSON(t, r, http.MethodPost, "/signin", gin.H{
		"email":    "ann@example.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got database.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)
}

func TestSignInEndpoint_WrongCredentials(t *testing.T) {
	r := setupRouter(dbmock.NewMockDB(), nil)
	registerUser(t, r)

	tests := []struct {
		name string
		body gin.H
	}{
		{"wrong password", gin.H{"email": "ann@example.com", "password": "wrong"}},
		{"unknown email", gin.H{"email": "nobody@example.com", "password": "hunter2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/signin", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			// Both failures look identical to the caller.
			assert.JSONEq(t, `"wrong credentials"`, w.Body.String())
		})
	}
}

func TestProfileEndpoint(t *testing.T) {
	r := setupRouter(dbmock.NewMockDB(), nil)
	user := registerUser(t, r)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/profile/%d", user.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got database.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.Email, got.Email)
}

func TestProfileEndpoint_NotFound(t *testing.T) {
	r := setupRouter(dbmock.NewMockDB(), nil)

	w := doJSON(t, r, http.MethodGet, "/profile/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}

func TestGenerateImageEndpoint(t *testing.T) {
	provider := &mockProvider{
		statuses: []replicate.Status{replicate.StatusStarting, replicate.StatusProcessing, replicate.StatusSucceeded},
		output:   replicate.Output{"https://img.example.com/1.png"},
	}
	r := setupRouter(dbmock.NewMockDB(), provider)
	user := registerUser(t, r)

	w := doJSON(t, r, http.MethodPost, "/generate-image", gin.H{
		"prompt": "a cat",
		"id":     user.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ImageURL string `json:"imageUrl"`
		Entries  int64  `json:"entries"`
		Name     string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://img.example.com/1.png", resp.ImageURL)
	assert.EqualValues(t, 1, resp.Entries)
	assert.Equal(t, "Ann", resp.Name)
}

func TestGenerateImageEndpoint_EmptyPrompt(t *testing.T) {
	provider := &mockProvider{}
	r := setupRouter(dbmock.NewMockDB(), provider)
	user := registerUser(t, r)

	w := doJSON(t, r, http.MethodPost, "/generate-image", gin.H{
		"prompt": "",
		"id":     user.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Prompt is required"}`, w.Body.String())
	assert.Zero(t, provider.createCalls)
}

func TestGenerateImageEndpoint_MissingUserID(t *testing.T) {
	provider := &mockProvider{}
	r := setupRouter(dbmock.NewMockDB(), provider)

	w := doJSON(t, r, http.MethodPost, "/generate-image", gin.H{"prompt": "a cat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"User ID is required"}`, w.Body.String())
	assert.Zero(t, provider.createCalls)
}

func TestGenerateImageEndpoint_Failed(t *testing.T) {
	provider := &mockProvider{
		statuses:   []replicate.Status{replicate.StatusFailed},
		failDetail: "NSFW content detected",
	}
	r := setupRouter(dbmock.NewMockDB(), provider)
	user := registerUser(t, r)

	w := doJSON(t, r, http.MethodPost, "/generate-image", gin.H{
		"prompt": "a cat",
		"id":     user.ID,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to generate image", resp["error"])
	assert.Contains(t, resp["details"], "NSFW content detected")
}

func TestGenerateImageEndpoint_UnknownUser(t *testing.T) {
	provider := &mockProvider{
		statuses: []replicate.Status{replicate.StatusSucceeded},
		output:   replicate.Output{"https://img.example.com/1.png"},
	}
	r := setupRouter(dbmock.NewMockDB(), provider)

	w := doJSON(t, r, http.MethodPost, "/generate-image", gin.H{
		"prompt": "a cat",
		"id":     99,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}
