package repository

import (
	"context"
	"sync"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/models"
)

// MemorySessionStore is the in-process fallback used when Redis is down.
// Sessions created here are lost on restart, which is acceptable for a
// degraded mode: admins just log in again.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	counters map[string]rateWindow
}

type memorySession struct {
	session   models.AdminSession
	expiresAt time.Time
}

type rateWindow struct {
	count    int
	resetsAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		counters: make(map[string]rateWindow),
	}
}

func (s *MemorySessionStore) SaveSession(_ context.Context, session *models.AdminSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = memorySession{
		session:   *session,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemorySessionStore) GetSession(_ context.Context, token string) (*models.AdminSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, database.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, database.ErrNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemorySessionStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemorySessionStore) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.counters[key]
	if !ok || now.After(entry.resetsAt) {
		s.counters[key] = rateWindow{count: 1, resetsAt: now.Add(window)}
		return true, nil
	}
	entry.count++
	s.counters[key] = entry
	return entry.count <= limit, nil
}

func (s *MemorySessionStore) Ping(_ context.Context) error {
	return nil
}
