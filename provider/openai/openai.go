package openai_provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsreel/provider/prompts"
	"github.com/sashabaranov/go-openai"
)

const DefaultModel = openai.GPT4oMini

// client writes scripts through OpenAI chat completions
type client struct {
	api         *openai.Client
	model       string
	words       int
	temperature float32
	maxTokens   int
}

// NewOpenAIClient creates a new OpenAI client. An empty baseURL targets api.openai.com.
func NewOpenAIClient(apiKey, baseURL, model string, words int, temperature float32, maxTokens int, timeout time.Duration) *client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if model == "" {
		model = DefaultModel
	}
	return &client{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		words:       words,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// WriteScript sends the fixed script prompt for title and returns the trimmed reply.
func (c *client) WriteScript(ctx context.Context, title string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompts.Script(title, c.words)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai returned status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	script := strings.TrimSpace(resp.Choices[0].Message.Content)
	if script == "" {
		return "", fmt.Errorf("empty script in response")
	}
	return script, nil
}

// Name identifies the provider in logs and metrics.
func (c *client) Name() string { return "openai" }
