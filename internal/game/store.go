package game

import (
	"sync"
	"time"
)

// SessionStore holds live sessions. Nothing is persisted: a restart ends all
// games. Sessions leaving the store are disconnected.
type SessionStore interface {
	Put(s *Session)
	Get(id string) (*Session, bool)
	// Delete drops a session and reports whether it was there.
	Delete(id string) bool
	// Expire drops sessions idle since before cutoff and returns their ids.
	Expire(cutoff time.Time) []string
	Len() int
}

type InMemorySessionStore struct {
	mu sync.RWMutex
	m  map[string]*Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		m: make(map[string]*Session),
	}
}

func (s *InMemorySessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID()] = sess
}

func (s *InMemorySessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[id]
	return sess, ok
}

func (s *InMemorySessionStore) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.m[id]
	delete(s.m, id)
	s.mu.Unlock()

	if ok {
		sess.Disconnect()
	}
	return ok
}

func (s *InMemorySessionStore) Expire(cutoff time.Time) []string {
	s.mu.Lock()
	var gone []*Session
	for id, sess := range s.m {
		if sess.LastActive().Before(cutoff) {
			delete(s.m, id)
			gone = append(gone, sess)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(gone))
	for _, sess := range gone {
		sess.Disconnect()
		ids = append(ids, sess.ID())
	}
	return ids
}

func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
