package session

import (
	"context"
	"sync"
	"time"

	"scenario-admin/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoryEntry struct {
	session   Session
	scenarios []models.Scenario
	cached    bool
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewMemoryStore keeps sessions in process memory. Used when no redis is configured.
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) Store {
	return newMemoryStore(ttl, time.Now, logger)
}

func newMemoryStore(ttl time.Duration, now func() time.Time, logger *zap.Logger) *memoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &memoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     now,
		logger:  logger.Named("MemorySessionStore"),
	}
}

func (s *memoryStore) Create(_ context.Context, token string, user models.User) (*Session, error) {
	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: expiryFor(token, now, s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.entries[sess.ID] = &memoryEntry{session: sess}
	s.logger.Debug("Session created", zap.String("sessionID", sess.ID), zap.String("userID", user.ID), zap.Time("expiresAt", sess.ExpiresAt))

	out := sess
	return &out, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := e.session
	return &out, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *memoryStore) CachedScenarios(_ context.Context, id string) ([]models.Scenario, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(id)
	if !ok {
		return nil, false, ErrSessionNotFound
	}
	if !e.cached {
		return nil, false, nil
	}
	return append([]models.Scenario(nil), e.scenarios...), true, nil
}

func (s *memoryStore) CacheScenarios(_ context.Context, id string, scenarios []models.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.scenarios = append([]models.Scenario{}, scenarios...)
	e.cached = true
	return nil
}

// liveLocked returns the entry for id, dropping it if it has expired.
func (s *memoryStore) liveLocked(id string) (*memoryEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.session.ExpiresAt) {
		delete(s.entries, id)
		return nil, false
	}
	return e, true
}

func (s *memoryStore) sweepLocked(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.session.ExpiresAt) {
			delete(s.entries, id)
		}
	}
}
