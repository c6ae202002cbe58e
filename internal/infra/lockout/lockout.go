// Package lockout protects the login path against credential brute force:
// each user ID gets its own circuit breaker, fed one failure per bad PIN.
// Once the breaker trips, logins for that user are refused until the
// breaker's open window passes, mirroring a temporary account lock.
package lockout

import (
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Settings tunes the lockout behaviour.
type Settings struct {
	// MaxFailures trips the breaker once this many consecutive failures
	// accumulate.
	MaxFailures uint32
	// LockDuration is how long logins stay refused after tripping.
	LockDuration time.Duration
}

// DefaultSettings locks for one minute after three bad PINs.
func DefaultSettings() Settings {
	return Settings{MaxFailures: 3, LockDuration: time.Minute}
}

// Registry holds one breaker per user ID, created lazily.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	settings Settings
}

// NewRegistry creates an empty lockout registry.
func NewRegistry(settings Settings) *Registry {
	return &Registry{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		settings: settings,
	}
}

// ErrLocked is returned while a user's breaker is open.
var ErrLocked = errors.New("login temporarily locked")

// Attempt runs check through the user's breaker. A check error counts as a
// breaker failure; once open, Attempt returns ErrLocked without running
// check at all, so locked users cannot probe PINs.
func (r *Registry) Attempt(userID string, check func() error) error {
	cb := r.breaker(userID)

	_, err := cb.Execute(func() (any, error) {
		return nil, check()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrLocked
	}
	return err
}

// Forget drops a user's breaker, e.g. when the account is closed.
func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.breakers, userID)
}

func (r *Registry) breaker(userID string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[userID]; ok {
		return cb
	}

	maxFailures := r.settings.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "login:" + userID,
		MaxRequests: 1, // half-open: allow a single probe login
		Timeout:     r.settings.LockDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	r.breakers[userID] = cb
	return cb
}
