package session

import (
	"fmt"
	"time"

	"github.com/mohammad-safakhou/newsreel/internal/studio"
	"github.com/mohammad-safakhou/newsreel/session/inmemory"
)

// Store keeps operator sessions between requests
type Store interface {
	EnsureSession(id string, ttl time.Duration) (*studio.Session, error)
	GetSession(id string) (*studio.Session, error)
}

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
)

func NewStore(storeType StoreType, st *studio.Studio) Store {
	var store Store
	switch storeType {
	case InMemoryStore:
		store = inmemory.NewInMemorySessionStore(st.NewSession)
	default:
		panic(fmt.Sprintf("unsupported store type: %s", storeType))
	}

	return store
}
