package hybrid

import (
	"context"
	"sync"
	"time"

	"github.com/sensoryx/medagent/core"
)

// Store is the session repository injected into the Manager. Update applies
// fn to the stored session while holding the per-session write lock, which
// serializes all mutating manager operations on the same session id.
// Expire removes sessions untouched since the cutoff; the retention policy
// itself is owned by the caller.
type Store interface {
	Create(ctx context.Context, s *core.HybridSession) error
	Get(ctx context.Context, id string) (*core.HybridSession, error)
	Update(ctx context.Context, id string, fn func(s *core.HybridSession) error) (*core.HybridSession, error)
	Expire(ctx context.Context, olderThan time.Time) (int, error)
}

// InMemoryStore is a volatile Store keeping sessions in a process-local map.
// It is safe for concurrent access and best suited for tests and ephemeral
// demo servers. Returned sessions are clones so callers cannot mutate
// internal state directly.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.HybridSession
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.HybridSession)}
}

var _ Store = (*InMemoryStore)(nil)

// Create stores a clone of the session snapshot.
func (s *InMemoryStore) Create(_ context.Context, sess *core.HybridSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a clone of an existing session or core.ErrSessionNotFound.
func (s *InMemoryStore) Get(_ context.Context, id string) (*core.HybridSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Update applies fn to the stored session under the write lock. When fn
// returns an error the session is left unchanged. The returned session is a
// clone of the committed state.
func (s *InMemoryStore) Update(_ context.Context, id string, fn func(sess *core.HybridSession) error) (*core.HybridSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	work := sess.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.UpdatedAt = time.Now()
	s.sessions[id] = work
	return work.Clone(), nil
}

// Expire deletes sessions not updated since olderThan, returning the count.
func (s *InMemoryStore) Expire(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(olderThan) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
