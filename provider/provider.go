package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/newsreel/config"
	gemini_provider "github.com/mohammad-safakhou/newsreel/provider/gemini"
	openai_provider "github.com/mohammad-safakhou/newsreel/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
	Gemini Client = "gemini"
)

// Provider is the interface that all script generators must satisfy
type Provider interface {
	WriteScript(ctx context.Context, title string) (string, error)
	Name() string
}

// NewProvider creates a script generator for client. The key comes from the operator's
// session, everything else from configuration.
func NewProvider(client Client, apiKey string, cfg config.LLMConfig) (Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key not set")
	}
	switch Client(strings.ToLower(string(client))) {
	case OpenAI, "":
		return openai_provider.NewOpenAIClient(
			apiKey,
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.Model,
			cfg.ScriptWords,
			cfg.OpenAI.Temperature,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Timeout,
		), nil
	case Gemini:
		return gemini_provider.NewGeminiClient(apiKey, cfg.Gemini.Model, cfg.ScriptWords, cfg.Gemini.Temperature), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", client)
	}
}
