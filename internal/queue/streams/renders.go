package streams

import (
	"context"

	"github.com/mohammad-safakhou/newsreel/models"
)

const (
	EventRenderCompleted = "render.completed"
	EventRenderFailed    = "render.failed"

	renderEventVersion = "v1"
)

// RenderEvents publishes production outcomes to a stream.
type RenderEvents struct {
	publisher *Publisher
	stream    string
	maxLen    int64
}

func NewRenderEvents(p *Publisher, stream string, maxLen int64) *RenderEvents {
	return &RenderEvents{publisher: p, stream: stream, maxLen: maxLen}
}

// Record publishes rec as render.completed or render.failed.
func (e *RenderEvents) Record(ctx context.Context, rec models.RenderRecord) error {
	eventType := EventRenderCompleted
	if rec.Status == models.RenderFailed {
		eventType = EventRenderFailed
	}
	_, err := e.publisher.PublishRaw(ctx, e.stream, eventType, renderEventVersion, rec.SessionID, rec, WithMaxLenApprox(e.maxLen))
	return err
}
