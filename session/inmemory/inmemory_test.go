package inmemory

import (
	"errors"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/internal/studio"
	"github.com/mohammad-safakhou/newsreel/models"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	st := studio.New(&config.Config{Render: config.RenderConfig{OutputDir: t.TempDir()}}, nil)
	return NewInMemorySessionStore(st.NewSession)
}

func TestEnsureSessionReusesLiveSession(t *testing.T) {
	store := newStore(t)

	first, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if first.ID() == "" {
		t.Fatalf("expected generated id")
	}
	again, err := store.EnsureSession(first.ID(), time.Hour)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if again != first {
		t.Fatalf("expected the same session back")
	}

	other, _ := store.EnsureSession("unknown-id", time.Hour)
	if other.ID() == "unknown-id" || other == first {
		t.Fatalf("expected a fresh session for an unknown id, got %s", other.ID())
	}
}

func TestExpiredSessionsAreDropped(t *testing.T) {
	store := newStore(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess, _ := store.EnsureSession("", time.Minute)
	got, err := store.GetSession(sess.ID())
	if err != nil || got != sess {
		t.Fatalf("expected live session, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if got, err := store.GetSession(sess.ID()); !errors.Is(err, models.ErrSessionNotFound) || got != nil {
		t.Fatalf("expected expired session to be hidden, got %v", err)
	}
	fresh, _ := store.EnsureSession(sess.ID(), time.Minute)
	if fresh == sess {
		t.Fatalf("expected expired session to be replaced")
	}
	if store.Len() != 1 {
		t.Fatalf("expected sweep to drop the expired session, have %d", store.Len())
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	store := newStore(t)
	if _, err := store.GetSession("never-issued"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("lookup must not create sessions, have %d", store.Len())
	}
}
