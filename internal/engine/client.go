// Package engine provides the HTTP client for the external synthesis model.
//
// The model runs as a standalone service; this package observes its call
// contract and nothing else: encode a reference clip into a style
// representation, batch-generate a waveform for N sentences with N style
// representations, and a health probe used at startup.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/mira-studio/internal/core"
)

// API endpoints and paths.
const (
	apiEncodeAudio   = "/v1/encode/audio"
	apiGenerateBatch = "/v1/generate/batch"
	apiHealth        = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
)

// Static errors.
var (
	ErrReferencePathEmpty = errors.New("reference path cannot be empty")
	ErrNoSentences        = errors.New("sentence list cannot be empty")
	ErrStyleCountMismatch = errors.New("style count must match sentence count")
	ErrEmptyStyle         = errors.New("model returned an empty style representation")
	ErrEmptyWaveform      = errors.New("model returned an empty waveform")
)

// Client is an HTTP client for the synthesis model service. It imposes no
// deadline of its own beyond the configured request timeout: a hang in the
// model propagates as a hang in the in-flight request.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// encodeRequest asks the model to encode a reference clip the service can
// read from the shared filesystem.
type encodeRequest struct {
	ReferencePath string `json:"reference_path"`
}

type encodeResponse struct {
	Style core.StyleTokens `json:"style"`
}

// generateRequest carries one style representation per sentence; the model
// amortizes its overhead across the whole batch in a single call.
type generateRequest struct {
	Sentences []string           `json:"sentences"`
	Styles    []core.StyleTokens `json:"styles"`
}

type generateResponse struct {
	Samples    []float64 `json:"samples"`
	SampleRate int       `json:"sample_rate"`
}

// errorResponse represents a structured error response from the model
// service, preserved verbatim for the user.
type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// NewClient creates an HTTP client for the model service. The baseURL
// should include the protocol and port (e.g. "http://localhost:8000").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// EncodeAudio encodes the reference clip at referencePath into a style
// representation reusable across the sentences of one request.
func (c *Client) EncodeAudio(ctx context.Context, referencePath string) (core.StyleTokens, error) {
	if referencePath == "" {
		return nil, ErrReferencePathEmpty
	}

	var resp encodeResponse

	err := c.postJSON(ctx, apiEncodeAudio, encodeRequest{ReferencePath: referencePath}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reference audio: %w", err)
	}

	if len(resp.Style) == 0 {
		return nil, ErrEmptyStyle
	}

	return resp.Style, nil
}

// BatchGenerate synthesizes every sentence in one model call and returns
// the concatenated waveform as a one-dimensional sample buffer.
func (c *Client) BatchGenerate(
	ctx context.Context,
	sentences []string,
	styles []core.StyleTokens,
) ([]float64, error) {
	if len(sentences) == 0 {
		return nil, ErrNoSentences
	}

	if len(styles) != len(sentences) {
		return nil, ErrStyleCountMismatch
	}

	var resp generateResponse

	err := c.postJSON(ctx, apiGenerateBatch, generateRequest{Sentences: sentences, Styles: styles}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}

	if len(resp.Samples) == 0 {
		return nil, ErrEmptyWaveform
	}

	return resp.Samples, nil
}

// HealthCheck verifies that the model service is running. The studio
// treats a failed check at startup as fatal.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := c.baseURL + apiHealth

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed for model service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// postJSON sends a JSON request to the given path and decodes a JSON
// response into target, with explicit headers and structured error
// handling.
func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeJSON)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to model service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}

	err = json.NewDecoder(resp.Body).Decode(target)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// model service, falling back to the raw body so diagnostics are never
// lost.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errorResp errorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil && errorResp.Detail != "" {
		return fmt.Errorf("model service error (%s): %s (code: %s)",
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf("model service returned non-OK status: %s, body: %s", resp.Status, string(body))
}
