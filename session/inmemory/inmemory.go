package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/newsreel/internal/studio"
	"github.com/mohammad-safakhou/newsreel/models"
)

type entry struct {
	sess      *studio.Session
	expiresAt time.Time
}

type Store struct {
	sessions   map[string]*entry
	newSession func(id string) *studio.Session
	now        func() time.Time
	mu         sync.RWMutex
}

func NewInMemorySessionStore(newSession func(id string) *studio.Session) *Store {
	return &Store{
		sessions:   make(map[string]*entry),
		newSession: newSession,
		now:        time.Now,
	}
}

// EnsureSession returns the live session for id, extending its TTL, or creates a new one
// under a fresh id.
func (store *Store) EnsureSession(id string, ttl time.Duration) (*studio.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	now := store.now()
	store.sweep(now)
	if id != "" {
		if e, ok := store.sessions[id]; ok {
			e.expiresAt = now.Add(ttl)
			return e.sess, nil
		}
	}

	sess := store.newSession(uuid.NewString())
	store.sessions[sess.ID()] = &entry{sess: sess, expiresAt: now.Add(ttl)}
	return sess, nil
}

// GetSession looks up a live session without creating or extending it. Unknown and expired
// ids yield models.ErrSessionNotFound.
func (store *Store) GetSession(id string) (*studio.Session, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	e, ok := store.sessions[id]
	if !ok || store.now().After(e.expiresAt) {
		return nil, models.ErrSessionNotFound
	}
	return e.sess, nil
}

// Len counts stored sessions, expired ones included until the next sweep.
func (store *Store) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.sessions)
}

// sweep drops expired sessions that are not rendering. Caller holds the write lock.
func (store *Store) sweep(now time.Time) {
	for id, e := range store.sessions {
		if now.After(e.expiresAt) && !e.sess.Rendering() {
			delete(store.sessions, id)
		}
	}
}
