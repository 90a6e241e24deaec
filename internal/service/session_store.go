package service

import (
	"context"
	"sync"
	"time"

	"github.com/Hasan197668/nis/internal/models"
	"github.com/Hasan197668/nis/pkg/cache"
	"github.com/Hasan197668/nis/pkg/config"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
)

// SessionStore keeps planning sessions between requests. Get returns
// ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, session models.PlanningSession) error
	Get(ctx context.Context, id string) (models.PlanningSession, error)
	Delete(ctx context.Context, id string) error
	// Sweep drops expired sessions and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// NewSessionStore picks the configured backend. The redis backend requires a
// cache repository; without one sessions stay in memory.
func NewSessionStore(cfg config.SessionConfig, repo SessionCache) SessionStore {
	if cfg.Backend == config.SessionBackendRedis && repo != nil {
		return NewRedisSessionStore(repo, cfg.TTL)
	}
	return NewMemorySessionStore(cfg.TTL)
}

// MemorySessionStore holds sessions in process memory with a sliding TTL.
type MemorySessionStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]models.PlanningSession
}

// NewMemorySessionStore constructs an in-memory store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &MemorySessionStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]models.PlanningSession),
	}
}

// Save stores a copy of session.
func (s *MemorySessionStore) Save(_ context.Context, session models.PlanningSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = session.Clone()
	return nil
}

// Get returns a copy of the stored session.
func (s *MemorySessionStore) Get(_ context.Context, id string) (models.PlanningSession, error) {
	s.mu.RLock()
	session, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return models.PlanningSession{}, appErrors.ErrSessionNotFound
	}
	if s.now().Sub(session.UpdatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.items, id)
		s.mu.Unlock()
		return models.PlanningSession{}, appErrors.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Delete removes a session.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// Sweep removes every session idle for longer than the TTL.
func (s *MemorySessionStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.items {
		if now.Sub(session.UpdatedAt) > s.ttl {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

// SessionCache is the subset of the Redis cache repository used for sessions.
type SessionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisSessionStore keeps sessions in Redis so several API instances can
// serve the same operator. Expiry is left to Redis.
type RedisSessionStore struct {
	repo SessionCache
	ttl  time.Duration
}

// NewRedisSessionStore constructs a Redis-backed store.
func NewRedisSessionStore(repo SessionCache, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisSessionStore{repo: repo, ttl: ttl}
}

func sessionKey(id string) string {
	return cache.Key("session", id)
}

// Save writes the session and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session models.PlanningSession) error {
	if err := s.repo.Set(ctx, sessionKey(session.ID), session, s.ttl); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to store planning session")
	}
	return nil
}

// Get loads a session.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (models.PlanningSession, error) {
	var session models.PlanningSession
	if err := s.repo.Get(ctx, sessionKey(id), &session); err != nil {
		if appErrors.Is(err, appErrors.ErrCacheMiss) {
			return models.PlanningSession{}, appErrors.ErrSessionNotFound
		}
		return models.PlanningSession{}, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load planning session")
	}
	return session, nil
}

// Delete removes a session.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, sessionKey(id))
}

// Sweep is a no-op; Redis expires keys itself.
func (s *RedisSessionStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
