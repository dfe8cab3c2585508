package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wikijobs/internal/config"
)

// Store names accepted in sessions.store
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Store keeps sessions. Implementations are safe for concurrent use and never
// hand out their internal copy.
type Store interface {
	// Create stores a new session
	Create(ctx context.Context, s *Session) error

	// Get returns a copy of the session
	Get(ctx context.Context, id string) (*Session, error)

	// Update applies fn to the session atomically and returns the stored result.
	// An error from fn aborts the update.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)

	// CompareAndSetPlan writes the plan only while the session's plan request tag
	// still equals tag. It reports whether the write happened.
	CompareAndSetPlan(ctx context.Context, id, tag string, result PlanResult) (bool, error)

	// Delete removes a session
	Delete(ctx context.Context, id string) error

	// Cleanup removes sessions idle for longer than maxIdle and returns how many were removed
	Cleanup(ctx context.Context, maxIdle time.Duration) (int, error)

	// Count returns the number of live sessions
	Count(ctx context.Context) (int, error)

	// Close releases the store's resources
	Close() error
}

var errStaleTag = errors.New("plan request superseded")

// applyPlan is the CompareAndSetPlan mutation shared by the stores
func applyPlan(tag string, result PlanResult) func(*Session) error {
	return func(s *Session) error {
		if s.PlanRequestTag != tag {
			return errStaleTag
		}
		plan := result.Plan
		s.Plan = &plan
		s.PlanSource = result.Source
		s.PlanWarning = result.Warning
		return nil
	}
}

// InMemoryStore implements Store with a mutex-guarded map
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore creates an empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session
func (s *InMemoryStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a copy of the session
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Update applies fn under the store lock
func (s *InMemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	s.sessions[id] = next

	return next.Clone(), nil
}

// CompareAndSetPlan writes the plan if tag is still current
func (s *InMemoryStore) CompareAndSetPlan(ctx context.Context, id, tag string, result PlanResult) (bool, error) {
	_, err := s.Update(ctx, id, applyPlan(tag, result))
	if errors.Is(err, errStaleTag) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes a session
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Cleanup removes idle sessions
func (s *InMemoryStore) Cleanup(ctx context.Context, maxIdle time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of stored sessions
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Close is a no-op for the in-memory store
func (s *InMemoryStore) Close() error {
	return nil
}

// NewStore builds the store named by sessions.store
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Sessions.Store {
	case "", StoreMemory:
		return NewInMemoryStore(), nil
	case StoreRedis:
		return NewRedisStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Sessions.Store)
	}
}
