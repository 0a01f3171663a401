package streams

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/redis/go-redis/v9"
)

// recordingClient captures XADD calls; every other command panics through the nil embed.
type recordingClient struct {
	redis.Cmdable
	adds []*redis.XAddArgs
}

func (c *recordingClient) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	c.adds = append(c.adds, a)
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal("1-0")
	return cmd
}

func TestRenderEventsPublishesOutcome(t *testing.T) {
	client := &recordingClient{}
	events := NewRenderEvents(NewPublisher(client), "newsreel:renders", 1000)

	rec := models.RenderRecord{
		ID:          "prod-1",
		SessionID:   "sess-1",
		Headline:    "City Council Approves New Park",
		Status:      models.RenderFailed,
		FailedStage: "encode",
		Error:       "ffmpeg exited 1",
		CreatedAt:   time.Now().UTC(),
	}
	if err := events.Record(context.Background(), rec); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(client.adds) != 1 {
		t.Fatalf("expected one XADD, got %d", len(client.adds))
	}
	args := client.adds[0]
	if args.Stream != "newsreel:renders" || args.MaxLen != 1000 || !args.Approx {
		t.Fatalf("unexpected xadd args %+v", args)
	}

	raw, ok := args.Values.(map[string]interface{})["envelope"].([]byte)
	if !ok {
		t.Fatalf("expected envelope bytes, got %T", args.Values)
	}
	env, err := UnmarshalEnvelope(raw)
	if err != nil {
		t.Fatalf("UnmarshalEnvelope: %v", err)
	}
	if env.EventType != EventRenderFailed || env.SessionID != "sess-1" || env.EventID == "" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	got, err := env.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got.FailedStage != "encode" || got.Headline != rec.Headline {
		t.Fatalf("unexpected payload %+v", got)
	}
	if strings.Contains(string(env.Data), "script") {
		t.Fatalf("payload must not carry the script: %s", env.Data)
	}
}

func TestPublishRequiresStream(t *testing.T) {
	p := NewPublisher(&recordingClient{})
	if _, err := p.PublishRaw(context.Background(), "", EventRenderCompleted, "v1", "", map[string]string{"a": "b"}); err == nil {
		t.Fatalf("expected error for empty stream")
	}
}

func TestRenderEventsNeedSession(t *testing.T) {
	client := &recordingClient{}
	events := NewRenderEvents(NewPublisher(client), "newsreel:renders", 0)

	err := events.Record(context.Background(), models.RenderRecord{ID: "prod-1", Status: models.RenderCompleted})
	if !errors.Is(err, ErrMissingSession) {
		t.Fatalf("expected ErrMissingSession, got %v", err)
	}
	if len(client.adds) != 0 {
		t.Fatalf("invalid event must not reach the stream")
	}
}
