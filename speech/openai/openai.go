package openai_speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// MaxInput is the longest text the speech endpoint accepts.
const MaxInput = 4096

// Client narrates text with OpenAI text-to-speech
type Client struct {
	api   *openai.Client
	model openai.SpeechModel
	voice openai.SpeechVoice
	speed float64
}

func New(apiKey, baseURL, model, voice string, speed float64, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: openai.SpeechModel(model),
		voice: openai.SpeechVoice(voice),
		speed: speed,
	}
}

func (c *Client) Name() string { return "openai" }

// Synthesize writes the MP3 narration of text to w.
func (c *Client) Synthesize(ctx context.Context, text string, w io.Writer) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no text to speak")
	}
	if len(text) > MaxInput {
		return fmt.Errorf("text too long for speech: %d > %d characters", len(text), MaxInput)
	}

	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          c.speed,
	})
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	defer resp.Close()

	n, err := io.Copy(w, resp)
	if err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("speech returned no audio")
	}
	return nil
}
