package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"shadow-studio/internal/session"
)

// SessionStore keeps one renderer per preview session. Sessions expire once
// idle for the configured TTL, and at most maxSessions are retained.
type SessionStore struct {
	mu    sync.Mutex
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewSessionStore creates a store bounded to maxSessions renderers.
func NewSessionStore(maxSessions int64, ttl time.Duration) (*SessionStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxSessions * 10,
		MaxCost:            maxSessions,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("server: session cache: %w", err)
	}
	return &SessionStore{cache: cache, ttl: ttl}, nil
}

// Acquire returns the renderer for id, creating it when absent, and restarts
// its idle timer. A renderer the cache declines to admit still serves the
// current request but is not kept.
func (s *SessionStore) Acquire(id string) *session.Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.lookup(id)
	if !ok {
		r = session.NewRenderer()
	}
	s.cache.SetWithTTL(id, r, 1, s.ttl)
	s.cache.Wait()
	return r
}

// Lookup returns the live renderer for id without extending its lifetime.
func (s *SessionStore) Lookup(id string) (*session.Renderer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

func (s *SessionStore) lookup(id string) (*session.Renderer, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*session.Renderer), true
}

// Close releases the cache's background goroutines.
func (s *SessionStore) Close() {
	s.cache.Close()
}
