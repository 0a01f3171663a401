package models

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingNewsKey is returned when a fetch is attempted without a NewsAPI key
	ErrMissingNewsKey = errors.New("newsapi key is required")
	// ErrMissingLLMKey is returned when a production is attempted without a generation key
	ErrMissingLLMKey = errors.New("script generation key is required")
	// ErrNoHeadlines is returned when the provider answered but nothing usable came back
	ErrNoHeadlines = errors.New("no headlines available")
	// ErrNoSelection is returned when a production is attempted before a headline is chosen
	ErrNoSelection = errors.New("no headline selected")
	// ErrHeadlineNotFound is returned when the selected title is not in the fetched list
	ErrHeadlineNotFound = errors.New("headline not in fetched list")
	// ErrRenderInProgress is returned when a session already has a production running
	ErrRenderInProgress = errors.New("a production is already running for this session")
	// ErrSessionNotFound is returned when a session id is unknown or has expired
	ErrSessionNotFound = errors.New("session not found")
)

// Operator-facing messages.
const (
	MissingNewsKeyMessage = "Enter NewsAPI key first!"
	MissingLLMKeyMessage  = "Enter OpenAI key first!"
	NoNewsMessage         = "No news found. Check your API key."
)

// OperatorMessage maps gate errors to the short text shown to the operator. Other errors are
// returned as is.
func OperatorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingNewsKey):
		return MissingNewsKeyMessage
	case errors.Is(err, ErrMissingLLMKey):
		return MissingLLMKeyMessage
	case errors.Is(err, ErrNoHeadlines):
		return NoNewsMessage
	}
	return err.Error()
}

type Headline struct {
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// HasImage reports whether the headline carries a lead image URL.
func (h Headline) HasImage() bool { return strings.TrimSpace(h.ImageURL) != "" }

// Production is what the operator sees once a video has been produced.
type Production struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Headline  Headline      `json:"headline"`
	Script    string        `json:"script"`
	Words     int           `json:"words"`
	Duration  time.Duration `json:"duration"`
	VideoPath string        `json:"video_path"`
	ImageUsed bool          `json:"image_used"`
	ImageSkip string        `json:"image_skip,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// LengthLabel renders the narration length the way the results view shows it.
func (p Production) LengthLabel() string {
	return "~" + p.Duration.Round(time.Second).String()
}

type RenderStatus string

const (
	RenderCompleted RenderStatus = "completed"
	RenderFailed    RenderStatus = "failed"
)

// RenderRecord is the metadata kept about a production attempt. It never carries the script
// or any credential.
type RenderRecord struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	Headline    string        `json:"headline"`
	Status      RenderStatus  `json:"status"`
	FailedStage string        `json:"failed_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
	VideoPath   string        `json:"video_path,omitempty"`
	Duration    time.Duration `json:"duration"`
	Words       int           `json:"words"`
	ImageUsed   bool          `json:"image_used"`
	CreatedAt   time.Time     `json:"created_at"`
}

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
