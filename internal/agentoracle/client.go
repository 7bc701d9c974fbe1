// Package agentoracle lets a text-generation backend participate in a
// running city: it proposes actions through the same queue a player or a
// replay uses, and narrates notable events into short human-readable prose.
// Genericized from a provider-specific chat API client into a pluggable
// HTTP backend so any compatible text-completion endpoint can sit behind
// it.
package agentoracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Client calls a configured text-completion endpoint, rate-limited to a
// conservative calls-per-minute budget so a misbehaving agent loop cannot
// hammer the backend.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client

	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// Config selects the backend endpoint, credential, and model name. Any
// HTTP endpoint accepting this package's request shape works; Endpoint and
// Model are both caller-supplied rather than hardcoded so the backend can
// be swapped without a code change.
type Config struct {
	Endpoint  string
	APIKey    string
	Model     string
	MaxPerMin int
}

// NewClient creates a client from cfg. Returns nil if APIKey is empty,
// disabling oracle features entirely — callers must check Enabled before
// calling Complete.
func NewClient(cfg Config) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	maxPerMin := cfg.MaxPerMin
	if maxPerMin <= 0 {
		maxPerMin = 20
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxPerMin:  maxPerMin,
	}
}

// Enabled reports whether c is non-nil and configured with credentials.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Message is one turn of a chat-style completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a single-turn prompt and returns the backend's response
// text.
func (c *Client) Complete(system, userPrompt string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("agent oracle: client not configured")
	}

	c.mu.Lock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		c.mu.Unlock()
		return "", fmt.Errorf("agent oracle: rate limit exceeded (%d calls/min)", c.maxPerMin)
	}
	c.callCount++
	c.mu.Unlock()

	req := request{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []Message{{Role: "user", Content: userPrompt}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	slog.Debug("agent oracle completion",
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)

	return apiResp.Content[0].Text, nil
}
