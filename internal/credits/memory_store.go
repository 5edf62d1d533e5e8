package credits

import (
	"context"
	"sync"
	"time"
)

// implements Store using in-memory accounts. Used in tests and single
// instance development setups; mirrors the conditional-update semantics of
// the Postgres store.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

// creates a new in-memory credit store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*Account),
	}
}

func (s *MemoryStore) Reserve(_ context.Context, userID string, amount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[userID]
	if !exists {
		return false, ErrAccountNotFound
	}

	if account.Credits-account.ReservedCredits < amount {
		return false, nil
	}

	account.ReservedCredits += amount
	account.UpdatedAt = time.Now()

	return true, nil
}

func (s *MemoryStore) Finalize(_ context.Context, userID string, held, debit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[userID]
	if !exists {
		return false, ErrAccountNotFound
	}

	// cap the debit so the balance never drops below what other in-flight
	// reservations still hold
	ceiling := account.Credits - account.ReservedCredits + held
	capped := debit > ceiling

	if capped {
		debit = ceiling
	}

	account.ReservedCredits -= held
	account.Credits -= debit
	account.UpdatedAt = time.Now()

	return capped, nil
}

func (s *MemoryStore) Release(_ context.Context, userID string, held int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[userID]
	if !exists {
		return nil
	}

	account.ReservedCredits -= held
	if account.ReservedCredits < 0 {
		account.ReservedCredits = 0
	}

	account.UpdatedAt = time.Now()

	return nil
}

func (s *MemoryStore) Account(_ context.Context, userID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[userID]
	if !exists {
		return nil, ErrAccountNotFound
	}

	copied := *account

	return &copied, nil
}

func (s *MemoryStore) Grant(_ context.Context, userID string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[userID]
	if !exists {
		s.accounts[userID] = &Account{
			UserID:    userID,
			Credits:   total,
			UpdatedAt: time.Now(),
		}

		return nil
	}

	account.Credits = total
	account.UpdatedAt = time.Now()

	return nil
}
