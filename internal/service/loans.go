package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loanScheduler holds the approved-but-not-yet-applied loans. Each gets a
// timer that fires the apply callback after the processing delay; pending
// entries can be cancelled per account, which closure uses so a removed
// account is never credited.
type loanScheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	apply   func(loanID, userID string, amount float64)
	pending map[string]*pendingLoan // by loan ID
	logger  *zap.Logger
}

type pendingLoan struct {
	userID string
	amount float64
	timer  *time.Timer
}

func newLoanScheduler(delay time.Duration, apply func(loanID, userID string, amount float64), logger *zap.Logger) *loanScheduler {
	return &loanScheduler{
		delay:   delay,
		apply:   apply,
		pending: make(map[string]*pendingLoan),
		logger:  logger,
	}
}

// Schedule registers an approved loan and arms its timer. Returns the loan
// ID and the time the credit will land.
func (s *loanScheduler) Schedule(userID string, amount float64) (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loanID := uuid.New().String()
	s.pending[loanID] = &pendingLoan{
		userID: userID,
		amount: amount,
		timer:  time.AfterFunc(s.delay, func() { s.fire(loanID) }),
	}

	s.logger.Debug("loan timer armed",
		zap.String("loan_id", loanID),
		zap.String("user_id", userID),
		zap.Duration("delay", s.delay),
	)
	return loanID, time.Now().Add(s.delay)
}

// CancelForAccount stops and drops every pending loan of the given account.
// Returns how many were cancelled. A timer that already fired is gone from
// the pending map and is unaffected.
func (s *loanScheduler) CancelForAccount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := 0
	for id, p := range s.pending {
		if p.userID != userID {
			continue
		}
		p.timer.Stop()
		delete(s.pending, id)
		cancelled++
		s.logger.Debug("loan timer cancelled",
			zap.String("loan_id", id),
			zap.String("user_id", userID),
		)
	}
	return cancelled
}

// PendingCount returns how many loans are waiting to apply.
func (s *loanScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// fire runs on the timer goroutine. Losing the race against a cancel is
// fine: the pending entry is already gone and the apply is skipped.
func (s *loanScheduler) fire(loanID string) {
	s.mu.Lock()
	p, ok := s.pending[loanID]
	if ok {
		delete(s.pending, loanID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	s.apply(loanID, p.userID, p.amount)
}
