package service

import (
	"context"
	"sync"
	"time"
)

const reviewQueueNamespace = "books.review_queue"

// QueueCacheStore caches serialized review-queue pages by namespace. Every
// status change drops the whole namespace.
type QueueCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopQueueCacheStore struct{}

func NewNoopQueueCacheStore() *NoopQueueCacheStore {
	return &NoopQueueCacheStore{}
}

func (s *NoopQueueCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopQueueCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopQueueCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type queueCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryQueueCacheStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	store map[string]map[string]queueCacheEntry
}

func NewInMemoryQueueCacheStore() *InMemoryQueueCacheStore {
	return &InMemoryQueueCacheStore{
		now:   time.Now,
		store: make(map[string]map[string]queueCacheEntry),
	}
}

func (s *InMemoryQueueCacheStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.store[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		if ns, found := s.store[namespace]; found {
			delete(ns, key)
			if len(ns) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryQueueCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]queueCacheEntry)
		s.store[namespace] = ns
	}
	ns[key] = queueCacheEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *InMemoryQueueCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}
