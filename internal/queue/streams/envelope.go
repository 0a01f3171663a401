package streams

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsreel/models"
)

const renderEventPrefix = "render."

var (
	ErrMissingSession   = errors.New("render events need a session_id")
	ErrUnknownEvent     = errors.New("unknown render event type")
	ErrPayloadVersion   = errors.New("unsupported render payload version")
	ErrNotRenderEvent   = errors.New("not a render event")
	ErrStatusMismatch   = errors.New("render status does not match event type")
)

// Envelope is one entry on the render events stream. Data holds the event payload; for
// render.* events that is a models.RenderRecord.
type Envelope struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	OccurredAt     time.Time       `json:"occurred_at"`
	SessionID      string          `json:"session_id,omitempty"`
	PayloadVersion string          `json:"payload_version"`
	Data           json.RawMessage `json:"data"`
}

// IsRender reports whether the envelope carries a production outcome.
func (e Envelope) IsRender() bool { return strings.HasPrefix(e.EventType, renderEventPrefix) }

// Validate checks the mandatory fields. Render events must also name their session, be one
// of the known render events and use a payload version this build can decode.
func (e Envelope) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("event_id is required")
	case e.EventType == "":
		return fmt.Errorf("event_type is required")
	case e.PayloadVersion == "":
		return fmt.Errorf("payload_version is required")
	case len(e.Data) == 0:
		return fmt.Errorf("data payload is required")
	}
	if !e.IsRender() {
		return nil
	}
	if e.EventType != EventRenderCompleted && e.EventType != EventRenderFailed {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, e.EventType)
	}
	if e.PayloadVersion != renderEventVersion {
		return fmt.Errorf("%w: %s", ErrPayloadVersion, e.PayloadVersion)
	}
	if strings.TrimSpace(e.SessionID) == "" {
		return ErrMissingSession
	}
	return nil
}

// Render decodes the production outcome of a render event and checks it agrees with the
// envelope.
func (e Envelope) Render() (models.RenderRecord, error) {
	var rec models.RenderRecord
	if !e.IsRender() {
		return rec, fmt.Errorf("%w: %s", ErrNotRenderEvent, e.EventType)
	}
	if err := json.Unmarshal(e.Data, &rec); err != nil {
		return rec, fmt.Errorf("decode render payload: %w", err)
	}
	want := models.RenderCompleted
	if e.EventType == EventRenderFailed {
		want = models.RenderFailed
	}
	if rec.Status != want {
		return rec, fmt.Errorf("%w: %s carries %q", ErrStatusMismatch, e.EventType, rec.Status)
	}
	if rec.SessionID != e.SessionID {
		return rec, fmt.Errorf("render payload session %q does not match envelope session %q", rec.SessionID, e.SessionID)
	}
	return rec, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// UnmarshalEnvelope parses a stream entry. Entries written without occurred_at get the
// time they were read.
func UnmarshalEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	if err := env.Validate(); err != nil {
		return env, err
	}
	return env, nil
}
