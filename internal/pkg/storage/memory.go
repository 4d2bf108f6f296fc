package storage

import (
	"context"
	"sync"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

var _ SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore keeps sessions in process memory. Nothing survives a
// restart; it is meant for tests and throwaway runs.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (s *MemorySessionStore) Get(_ context.Context, userID string) models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if session, ok := s.sessions[userID]; ok {
		return session.Clone()
	}
	return models.NewSession()
}

func (s *MemorySessionStore) Save(_ context.Context, userID string, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = session.Clone()
	return nil
}

func (s *MemorySessionStore) Reset(ctx context.Context, userID string) error {
	return s.Save(ctx, userID, models.NewSession())
}

func (s *MemorySessionStore) Close() error {
	return nil
}
