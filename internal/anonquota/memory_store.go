package anonquota

import (
	"context"
	"sync"
	"time"
)

// implements Store in memory with TTL expiry. Used in tests and single
// instance development setups.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryQuota
}

type memoryQuota struct {
	remaining int
	expiresAt time.Time
}

// creates a new in-memory quota store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryQuota),
	}
}

func (s *MemoryStore) Consume(_ context.Context, sessionKey string, allotment int, ttl time.Duration) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	quota, exists := s.sessions[sessionKey]
	if !exists || now.After(quota.expiresAt) {
		quota = &memoryQuota{
			remaining: allotment - 1,
			expiresAt: now.Add(ttl),
		}
		s.sessions[sessionKey] = quota

		return true, quota.remaining, nil
	}

	if quota.remaining <= 0 {
		return false, 0, nil
	}

	quota.remaining--

	return true, quota.remaining, nil
}

func (s *MemoryStore) Refund(_ context.Context, sessionKey string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quota, exists := s.sessions[sessionKey]
	if !exists || time.Now().After(quota.expiresAt) {
		// refund after expiry is dropped, matching the redis store
		return nil
	}

	quota.remaining += amount

	return nil
}

func (s *MemoryStore) Remaining(_ context.Context, sessionKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quota, exists := s.sessions[sessionKey]
	if !exists || time.Now().After(quota.expiresAt) {
		return 0, nil
	}

	return quota.remaining, nil
}
