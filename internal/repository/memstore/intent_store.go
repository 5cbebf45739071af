package memstore

import (
	"context"
	"sync"
	"time"

	"go-ideadaily-backend/internal/domain"
)

type entry struct {
	path    string
	expires time.Time
}

// IntentStore is the in-memory fallback used when Redis is not configured.
// Intents then survive only within this process, which still covers the
// common same-instance OAuth round trip.
type IntentStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

func NewIntentStore(ttl time.Duration) domain.IntentStore {
	return &IntentStore{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (s *IntentStore) Put(_ context.Context, key, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	s.entries[key] = entry{path: path, expires: time.Now().Add(s.ttl)}
	return nil
}

func (s *IntentStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", nil
	}
	if time.Now().After(e.expires) {
		delete(s.entries, key)
		return "", nil
	}
	return e.path, nil
}

func (s *IntentStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *IntentStore) evictExpired() {
	now := time.Now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
}
