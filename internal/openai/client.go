// Package openai is a thin client for the legacy text-completion endpoint.
// It issues one blocking request per call and surfaces every failure as a
// typed error; retrying is the caller's decision, never the client's.
package openai

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
)

// DefaultTimeout bounds each request so a hung service cannot block the
// pipeline indefinitely.
const DefaultTimeout = 30 * time.Second

// Client calls the completion service. The embedded http.Client is safe
// for concurrent use, which the batch path relies on. Zero value is not
// valid; use NewClient.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a Client for the given API root (e.g.
// "https://api.openai.com/v1"). token is sent as a bearer credential.
// A nil httpClient gets a default with DefaultTimeout.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// CompletionRequest is the sampling configuration for one request. Field
// names follow the wire contract exactly.
type CompletionRequest struct {
	Model            string   `json:"model"`
	Prompt           string   `json:"prompt"`
	Suffix           string   `json:"suffix,omitempty"`
	MaxTokens        int      `json:"max_tokens"`
	Temperature      float64  `json:"temperature"`
	TopP             float64  `json:"top_p"`
	N                int      `json:"n"`
	Stop             []string `json:"stop,omitempty"`
	PresencePenalty  float64  `json:"presence_penalty"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	BestOf           int      `json:"best_of,omitempty"`
}

// Validate checks the request invariants: n must be positive and best_of,
// when set, must be at least n.
func (r CompletionRequest) Validate() error {
	if r.N < 1 {
		return fmt.Errorf("n must be >= 1, got %d", r.N)
	}
	if r.BestOf != 0 && r.BestOf < r.N {
		return fmt.Errorf("best_of (%d) must be >= n (%d)", r.BestOf, r.N)
	}
	return nil
}

// Choice is one generated candidate.
type Choice struct {
	Text         string   `json:"text"`
	Index        int      `json:"index"`
	Logprobs     *float64 `json:"logprobs"`
	FinishReason string   `json:"finish_reason"`
}

// Usage is the token accounting attached to a response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is one full response: the ordered candidates plus usage.
type Completion struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Models lists the models the service offers, keyed by model id. Used for
// connectivity testing.
func (c *Client) Models(ctx context.Context) (map[string]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("building models request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &DecodeError{Err: err}
	}

	models := make(map[string]json.RawMessage, len(parsed.Data))
	var raw struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}
	for i, m := range parsed.Data {
		models[m.ID] = raw.Data[i]
	}
	return models, nil
}

// Complete sends one completion request and blocks until the service
// responds. The returned completion carries len == n choices absent
// partial failures on the remote side. Errors are *TransportError,
// *StatusError or *DecodeError; none are retried here.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid completion request: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var completion Completion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &completion, nil
}

// do executes the request with bearer auth and returns the 2xx body.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// context cancellation is the caller's doing, not a transport fault
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
