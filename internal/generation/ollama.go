// Package generation adapts the Ollama text-generation API to the
// Generator interface. Responses are requested as a stream and accumulated
// into a single answer string before returning; streaming stays internal so
// the backend can start emitting tokens before the generation completes.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gnss-assistant/internal/domain"
)

var _ domain.Generator = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "phi3"
)

// Config holds configuration for the Ollama generation client.
type Config struct {
	BaseURL string
	Model   string

	// Timeout bounds the whole call including stream consumption.
	// Zero means no timeout: a hung backend blocks the caller.
	Timeout time.Duration
}

// Client calls the Ollama /api/generate endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	model   string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature,omitempty"`
}

// fragment is one element of the streamed NDJSON response.
type fragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewClient creates a generation client with defaults applied.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// ModelName returns the generation model identifier.
func (c *Client) ModelName() string { return c.model }

// Generate sends the prompt and accumulates the streamed completion into
// one string. A non-success status is ErrBackendUnavailable; a stream that
// cannot be parsed is ErrMalformedResponse. No partial answer is returned
// alongside an error.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: true,
		Options: &options{
			Temperature: temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrBackendUnavailable, resp.StatusCode, string(body))
	}

	answer, err := accumulate(resp.Body)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// accumulate consumes the NDJSON fragment stream and concatenates the
// response fields until the backend reports done or the stream ends.
func accumulate(r io.Reader) (string, error) {
	dec := json.NewDecoder(r)
	var sb strings.Builder
	fragments := 0
	for {
		var frag fragment
		if err := dec.Decode(&frag); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		fragments++
		sb.WriteString(frag.Response)
		if frag.Done {
			break
		}
	}
	if fragments == 0 {
		return "", fmt.Errorf("%w: empty response stream", domain.ErrMalformedResponse)
	}
	return strings.TrimSpace(sb.String()), nil
}
