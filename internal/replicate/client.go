package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smartbrain/smartbrain/internal/config"
)

// Status is the lifecycle state of a prediction.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether polling can stop at this status.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// Client represents a Replicate API client.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
}

// New creates a new Replicate API client.
func New(cfg *config.ReplicateConfig) *Client {
	return &Client{
		baseURL:    cfg.URL,
		token:      cfg.Token,
		version:    cfg.ModelVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PredictionInput holds the model input of a prediction.
type PredictionInput struct {
	Prompt            string  `json:"prompt"`
	NumOutputs        int     `json:"num_outputs"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`
	Scheduler         string  `json:"scheduler,omitempty"`
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
}

// predictionRequest is the request body for creating a prediction.
type predictionRequest struct {
	Version string          `json:"version"`
	Input   PredictionInput `json:"input"`
}

// Prediction represents a submitted prediction and its current state.
type Prediction struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Output Output `json:"output"`
	Error  string `json:"error"`
}

// Output is the prediction output. The API returns either a single URL or a
// list of URLs depending on the model.
type Output []string

func (o *Output) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*o = Output{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*o = Output(list)
	return nil
}

// First returns the first output URL, or an empty string if there is none.
func (o Output) First() string {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}

// doRequest performs an HTTP request to the Replicate API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close() //nolint:errcheck
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp, nil
}

// CreatePrediction submits a new prediction for the configured model version.
func (c *Client) CreatePrediction(ctx context.Context, input PredictionInput) (*Prediction, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/predictions", predictionRequest{
		Version: c.version,
		Input:   input,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("error decoding prediction response: %w", err)
	}

	return &prediction, nil
}

// GetPrediction fetches the current state of a prediction.
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/predictions/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("error decoding prediction response: %w", err)
	}

	return &prediction, nil
}
