package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Expired entries linger until they
// are read or swept.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	idle     time.Duration
	now      func() time.Time
}

func NewMemoryStore(idle time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		idle:     idle,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	now := m.now()
	if !now.Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, nil
	}
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(m.idle)
	m.sessions[id] = s
	return &s, nil
}

func (m *MemoryStore) Set(_ context.Context, s Session) error {
	if err := validate(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(m.idle)
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SweepExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len is used by tests and the admin stats endpoint.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
