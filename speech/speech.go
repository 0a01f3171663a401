package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/speech/gtts"
	openai_speech "github.com/mohammad-safakhou/newsreel/speech/openai"
)

// Synthesizer turns narration text into MP3 audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, w io.Writer) error
	Name() string
}

type Provider string

const (
	GTTS   Provider = "gtts"
	OpenAI Provider = "openai"
)

// NewSynthesizer picks the configured voice. apiKey is the operator's generation key and is
// only needed by the OpenAI voice.
func NewSynthesizer(cfg config.SpeechConfig, llm config.LLMConfig, apiKey string) (Synthesizer, error) {
	switch Provider(strings.ToLower(cfg.Provider)) {
	case GTTS, "":
		return gtts.New(cfg.GTTS.Endpoint, cfg.Language, &http.Client{Timeout: cfg.Timeout}), nil
	case OpenAI:
		if strings.TrimSpace(apiKey) == "" {
			return nil, errors.New("openai speech needs an api key")
		}
		return openai_speech.New(apiKey, llm.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Voice, cfg.OpenAI.Speed, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported speech provider %q", cfg.Provider)
	}
}
