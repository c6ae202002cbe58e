// Package session implements the single-session state machine: which
// account (if any) is active, the per-session sort toggle, and the idle
// countdown that forces logout at zero.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hmoraes/bankist-api/internal/port"
	"go.uber.org/zap"
)

// Manager tracks the single active session for the process. The active
// account is referenced by user ID, never by pointer, so account removal
// cannot leave a dangling reference.
//
// At most one countdown goroutine is live at any time: Start and Reset
// cancel the previous countdown before arming a new one, and a stale
// goroutine that lost the race exits without touching state.
type Manager struct {
	mu        sync.Mutex
	active    string // user ID, empty when logged out
	sessionID string
	sorted    bool
	remaining int

	limit    int           // countdown start, in ticks
	interval time.Duration // one tick

	cancel chan struct{} // closed to cancel the live countdown, nil when none

	notifier port.Notifier
	logger   *zap.Logger
}

// NewManager creates a logged-out session manager. limit is the countdown
// start in ticks (300 for the stock 5-minute timer) and interval the tick
// length (1s in production, shorter in tests).
func NewManager(limit int, interval time.Duration, notifier port.Notifier, logger *zap.Logger) *Manager {
	return &Manager{
		limit:    limit,
		interval: interval,
		notifier: notifier,
		logger:   logger,
	}
}

// Start transitions LoggedOut → Active(userID) (or replaces the previous
// active session) and arms a fresh countdown. The sort toggle is reset for
// the new session. Returns the new session ID; tokens embed it so a token
// from a dead session can be refused.
func (m *Manager) Start(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active = userID
	m.sessionID = uuid.New().String()
	m.sorted = false
	m.restartCountdownLocked()

	m.logger.Info("session started",
		zap.String("user_id", userID),
		zap.String("session_id", m.sessionID),
	)
	m.notifier.SessionStarted(userID)
	return m.sessionID
}

// Reset re-arms the idle countdown to its maximum. Called after every
// permitted mutating action; it does not change the session's account.
// A reset while logged out is a no-op.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == "" {
		return
	}
	m.restartCountdownLocked()
}

// End transitions Active → LoggedOut and cancels the countdown. Ending an
// already logged-out manager is a no-op.
func (m *Manager) End(reason string) {
	m.mu.Lock()
	userID := m.active
	if userID == "" {
		m.mu.Unlock()
		return
	}
	m.clearLocked()
	m.mu.Unlock()

	m.logger.Info("session ended",
		zap.String("user_id", userID),
		zap.String("reason", reason),
	)
	m.notifier.SessionEnded(userID, reason)
}

// Active returns the active account's user ID, or false when logged out.
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.active, m.active != ""
}

// Validate reports whether the given user and session IDs match the live
// session. Tokens carry both; either mismatch means the session the token
// was minted for has ended.
func (m *Manager) Validate(userID, sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.active != "" && m.active == userID && m.sessionID == sessionID
}

// Remaining returns the countdown seconds left, 0 when logged out.
func (m *Manager) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == "" {
		return 0
	}
	return m.remaining
}

// Sorted returns the session's sort toggle.
func (m *Manager) Sorted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sorted
}

// ToggleSort flips the sort toggle and returns the new value.
func (m *Manager) ToggleSort() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sorted = !m.sorted
	return m.sorted
}

// restartCountdownLocked cancels any live countdown and arms a new one.
// Callers hold m.mu.
func (m *Manager) restartCountdownLocked() {
	if m.cancel != nil {
		close(m.cancel)
	}
	cancel := make(chan struct{})
	m.cancel = cancel
	m.remaining = m.limit

	go m.countdown(cancel)
}

// clearLocked drops the active account and countdown state. Callers hold
// m.mu.
func (m *Manager) clearLocked() {
	if m.cancel != nil {
		close(m.cancel)
		m.cancel = nil
	}
	m.active = ""
	m.sessionID = ""
	m.sorted = false
	m.remaining = 0
}

// countdown decrements once per interval until cancelled or zero. The
// cancel channel identity doubles as a generation check: if the manager has
// re-armed since this goroutine started, it exits without touching state.
func (m *Manager) countdown(cancel chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.cancel != cancel {
				m.mu.Unlock()
				return
			}
			m.remaining--
			remaining := m.remaining
			userID := m.active
			if remaining <= 0 {
				m.cancel = nil
				m.clearLocked()
				m.mu.Unlock()

				m.logger.Info("session expired", zap.String("user_id", userID))
				m.notifier.SessionEnded(userID, "timeout")
				return
			}
			m.mu.Unlock()

			m.notifier.CountdownTick(userID, remaining)
		}
	}
}
