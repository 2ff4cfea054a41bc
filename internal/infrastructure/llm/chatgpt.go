package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"Paperboy/internal/config"
	"Paperboy/internal/ports"
)

const systemPrompt = "You are a newsletter editor who writes short, accurate story summaries."

// ChatGPTClient implements ports.TextGenerator backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	client *openai.Client
	model  string
	apiKey string
}

var _ ports.TextGenerator = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. An empty endpoint
// uses the public OpenAI API.
func NewChatGPTClient(cfg config.ModelConfig) *ChatGPTClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &ChatGPTClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Name,
		apiKey: cfg.APIKey,
	}
}

// Generate sends the prompt as a single user message.
func (c *ChatGPTClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("chatgpt client is nil")
	}
	if c.apiKey == "" || c.model == "" {
		return "", errors.New("chatgpt client misconfigured")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// NewGenerator selects the model client named by cfg.Provider.
func NewGenerator(cfg config.ModelConfig) (ports.TextGenerator, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg), nil
	case "openai":
		return NewChatGPTClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
}
