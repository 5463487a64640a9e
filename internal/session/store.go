package session

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store holds live sessions for the serve mode.
type Store interface {
	Get(id string) (*Session, bool)
	Put(s *Session)
	Delete(id string)
	Len() int
}

// MemoryStore is a TTL-evicting in-memory Store. A session that sees no
// Put for the TTL window is dropped by the background janitor; every Put
// resets its clock. There is no size cap.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a store whose sessions expire ttl after their last
// write, swept every cleanupInterval.
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get retrieves a session by ID.
func (m *MemoryStore) Get(id string) (*Session, bool) {
	if val, found := m.cache.Get(id); found {
		return val.(*Session), true
	}
	return nil, false
}

// Put stores a session under its ID and resets its eviction clock.
func (m *MemoryStore) Put(s *Session) {
	m.cache.Set(s.ID, s, gocache.DefaultExpiration)
}

// Delete removes a session.
func (m *MemoryStore) Delete(id string) {
	m.cache.Delete(id)
}

// Len reports the number of live sessions, expired-but-unswept included.
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
