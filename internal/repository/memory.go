// Package repository owns the process-wide account collection. It replaces
// the original's global mutable account list with an explicitly owned store
// that is passed by reference to the session and rule-engine components.
//
// A single RW mutex serializes all state changes so that cross-account
// operations (transfers) are atomic: validation and the double movement
// append happen inside one critical section and either fully succeed or
// leave nothing behind.
package repository

import (
	"sync"
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
)

// Store is the in-memory account repository. Accounts are seeded once at
// startup and only ever removed (by account closure); none are created or
// re-added afterwards.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// New creates a store from the given seed accounts. UserID is derived from
// the owner name for every seeded account; a seed that already carries a
// UserID keeps it.
func New(seed []domain.Account) *Store {
	s := &Store{accounts: make(map[string]*domain.Account, len(seed))}
	for i := range seed {
		acc := seed[i]
		if acc.UserID == "" {
			acc.UserID = domain.DeriveUserID(acc.Owner)
		}
		s.accounts[acc.UserID] = &acc
	}
	return s
}

// Snapshot returns a deep copy of the account with the given user ID.
// Callers can read movements and dates freely without holding the lock or
// risking aliasing the live slices.
func (s *Store) Snapshot(userID string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return domain.Account{}, &domain.ErrNotFound{Resource: "account", ID: userID}
	}
	return copyAccount(acc), nil
}

// Update runs fn inside the write critical section. The get function hands
// fn live account pointers (nil when the user ID is unknown); fn may mutate
// them. If fn returns an error the error is passed through — fn is expected
// not to mutate anything on its failure paths.
func (s *Store) Update(fn func(get func(userID string) *domain.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(func(userID string) *domain.Account {
		return s.accounts[userID]
	})
}

// Remove permanently deletes the account with the given user ID.
func (s *Store) Remove(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[userID]; !ok {
		return &domain.ErrNotFound{Resource: "account", ID: userID}
	}
	delete(s.accounts, userID)
	return nil
}

// Exists reports whether an account with the given user ID is still in the
// active set.
func (s *Store) Exists(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[userID]
	return ok
}

// Len returns the number of active accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.accounts)
}

func copyAccount(acc *domain.Account) domain.Account {
	cp := *acc
	cp.Movements = make([]float64, len(acc.Movements))
	copy(cp.Movements, acc.Movements)
	cp.MovementDates = make([]time.Time, len(acc.MovementDates))
	copy(cp.MovementDates, acc.MovementDates)
	return cp
}
