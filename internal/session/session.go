// Package session owns the stored credential's lifecycle: created on
// successful login, cleared on logout or authentication failure, read by
// every authenticated operation.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the console's authenticated context.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists session tokens keyed by session id.
type Store interface {
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager creates and clears sessions against a Store.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session manager. A non-positive ttl falls back to 48
// hours.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Manager{store: store, ttl: ttl}
}

// Create mints a new session for a freshly issued token.
func (m *Manager) Create(ctx context.Context, username, token string) (*Session, error) {
	s := &Session{
		ID:        uuid.New().String(),
		Username:  username,
		Token:     token,
		CreatedAt: time.Now(),
	}
	if err := m.store.Put(ctx, s, m.ttl); err != nil {
		return nil, err
	}
	return s, nil
}

// Load retrieves a session by id; nil when absent or expired.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Clear drops the session. Clearing an already-absent session is not an
// error.
func (m *Manager) Clear(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// MemoryStore is the in-process Store used in tests and when no redis is
// configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session Session
	expires time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Put(_ context.Context, sess *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = memoryEntry{session: *sess, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok || time.Now().After(entry.expires) {
		delete(s.sessions, id)
		return nil, nil
	}
	sess := entry.session
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
