package gemini_provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mohammad-safakhou/newsreel/provider/prompts"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

// client writes scripts through the Gemini API
type client struct {
	apiKey      string
	model       string
	words       int
	temperature float32
	opts        []option.ClientOption
}

// NewGeminiClient creates a Gemini backed script writer. Extra options are passed to the SDK
// client (endpoints, http clients).
func NewGeminiClient(apiKey, model string, words int, temperature float32, opts ...option.ClientOption) *client {
	if model == "" {
		model = DefaultModel
	}
	return &client{apiKey: apiKey, model: model, words: words, temperature: temperature, opts: opts}
}

// WriteScript sends the fixed script prompt for title and returns the trimmed reply.
func (c *client) WriteScript(ctx context.Context, title string) (string, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)
	gc, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer gc.Close()

	model := gc.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompts.Script(title, c.words)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	script, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return script, nil
}

// Name identifies the provider in logs and metrics.
func (c *client) Name() string { return "gemini" }

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts in response")
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	script := strings.TrimSpace(b.String())
	if script == "" {
		return "", fmt.Errorf("empty script in response")
	}
	return script, nil
}
