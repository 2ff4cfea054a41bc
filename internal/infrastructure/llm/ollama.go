package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"Paperboy/internal/config"
	"Paperboy/internal/ports"
)

// OllamaClient talks to an Ollama-style /api/generate endpoint.
type OllamaClient struct {
	endpoint string
	model    string
	http     *http.Client
}

var _ ports.TextGenerator = (*OllamaClient)(nil)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// NewOllamaClient builds a client from configuration.
func NewOllamaClient(cfg config.ModelConfig) *OllamaClient {
	return &OllamaClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Name,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate issues one non-streaming generation request.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.endpoint == "" || c.model == "" {
		return "", errors.New("ollama client misconfigured")
	}

	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("model endpoint error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Response == nil {
		return "", errors.New("decode response: missing response field")
	}

	return *out.Response, nil
}
