package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
	"github.com/hmoraes/bankist-api/internal/infra/cache"
	"github.com/hmoraes/bankist-api/internal/infra/lockout"
	"github.com/hmoraes/bankist-api/internal/infra/observability"
	"github.com/hmoraes/bankist-api/internal/ledger"
	"github.com/hmoraes/bankist-api/internal/port"
	"github.com/hmoraes/bankist-api/internal/session"
	"github.com/hmoraes/bankist-api/internal/view"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var bankTracer = otel.Tracer("service/bank")

// collateralFraction is the loan eligibility rule: the account must show at
// least one historical movement of this fraction of the requested amount.
const collateralFraction = 0.1

// BankService is the transfer/loan rule engine plus the rendered ledger
// views. All operations are gated on the active session and reset the idle
// countdown when they mutate state.
type BankService struct {
	store    port.AccountStore
	sessions *session.Manager
	notifier port.Notifier
	lockout  *lockout.Registry
	metrics  *observability.Metrics
	logger   *zap.Logger

	loans *loanScheduler

	dashboards *cache.InMemory[domain.Dashboard]
	flight     singleflight.Group
}

// NewBankService creates the bank service. loanDelay is the processing
// delay between loan approval and the credit landing on the ledger.
func NewBankService(
	store port.AccountStore,
	sessions *session.Manager,
	notifier port.Notifier,
	lockoutReg *lockout.Registry,
	metrics *observability.Metrics,
	logger *zap.Logger,
	loanDelay time.Duration,
	cacheTTL time.Duration,
) *BankService {
	s := &BankService{
		store:      store,
		sessions:   sessions,
		notifier:   notifier,
		lockout:    lockoutReg,
		metrics:    metrics,
		logger:     logger,
		dashboards: cache.New[domain.Dashboard](cacheTTL),
	}
	s.loans = newLoanScheduler(loanDelay, s.applyLoan, logger)
	return s
}

// ============================================================
// Ledger views
// ============================================================

// Movements returns the rendered movement rows, optionally sorted by
// ascending amount. Sorting never touches the stored sequences.
func (s *BankService) Movements(ctx context.Context, userID string, sorted bool) ([]domain.MovementRow, error) {
	_, span := bankTracer.Start(ctx, "BankService.Movements")
	defer span.End()

	if err := s.requireActive(userID); err != nil {
		return nil, err
	}
	acc, err := s.store.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	return view.Rows(ledger.Entries(&acc, sorted), acc.Locale, acc.Currency, time.Now()), nil
}

// Balance returns the rendered balance, recomputed from the full movement
// history on every call.
func (s *BankService) Balance(ctx context.Context, userID string) (domain.BalanceView, error) {
	_, span := bankTracer.Start(ctx, "BankService.Balance")
	defer span.End()

	if err := s.requireActive(userID); err != nil {
		return domain.BalanceView{}, err
	}
	acc, err := s.store.Snapshot(userID)
	if err != nil {
		return domain.BalanceView{}, err
	}
	return view.BalanceView(ledger.Balance(&acc), acc.Locale, acc.Currency, time.Now()), nil
}

// Summary returns the rendered in/out/interest totals.
func (s *BankService) Summary(ctx context.Context, userID string) (domain.SummaryView, error) {
	_, span := bankTracer.Start(ctx, "BankService.Summary")
	defer span.End()

	if err := s.requireActive(userID); err != nil {
		return domain.SummaryView{}, err
	}
	acc, err := s.store.Snapshot(userID)
	if err != nil {
		return domain.SummaryView{}, err
	}
	return view.SummaryView(ledger.Summarize(&acc), acc.Locale, acc.Currency), nil
}

// Dashboard returns everything the UI redraws after a state change, using
// the session's sort toggle. Rendered dashboards are cached per account and
// sort order; concurrent misses collapse into a single recompute.
func (s *BankService) Dashboard(ctx context.Context, userID string) (domain.Dashboard, error) {
	_, span := bankTracer.Start(ctx, "BankService.Dashboard")
	defer span.End()

	if err := s.requireActive(userID); err != nil {
		return domain.Dashboard{}, err
	}

	sorted := s.sessions.Sorted()
	key := dashboardKey(userID, sorted)

	if d, ok := s.dashboards.Get(key); ok {
		s.metrics.IncrCacheHit("dashboard")
		return d, nil
	}
	s.metrics.IncrCacheMiss("dashboard")

	v, err, _ := s.flight.Do(key, func() (any, error) {
		d, err := s.buildDashboard(userID, sorted)
		if err != nil {
			return nil, err
		}
		s.dashboards.Set(key, d)
		return d, nil
	})
	if err != nil {
		return domain.Dashboard{}, err
	}
	return v.(domain.Dashboard), nil
}

func (s *BankService) buildDashboard(userID string, sorted bool) (domain.Dashboard, error) {
	acc, err := s.store.Snapshot(userID)
	if err != nil {
		return domain.Dashboard{}, err
	}

	now := time.Now()
	return domain.Dashboard{
		Owner:     acc.Owner,
		Greeting:  view.Welcome(acc.Owner, now),
		Movements: view.Rows(ledger.Entries(&acc, sorted), acc.Locale, acc.Currency, now),
		Balance:   view.BalanceView(ledger.Balance(&acc), acc.Locale, acc.Currency, now),
		Summary:   view.SummaryView(ledger.Summarize(&acc), acc.Locale, acc.Currency),
		Sorted:    sorted,
	}, nil
}

// SessionStatus reports the live session for the renderer.
func (s *BankService) SessionStatus(ctx context.Context, userID string) (domain.SessionStatus, error) {
	if err := s.requireActive(userID); err != nil {
		return domain.SessionStatus{}, err
	}
	return domain.SessionStatus{
		UserID:           userID,
		RemainingSeconds: s.sessions.Remaining(),
		Sorted:           s.sessions.Sorted(),
	}, nil
}

// ToggleSort flips the session's sort toggle and returns the new value.
// A view-only action: it does not reset the idle countdown.
func (s *BankService) ToggleSort(ctx context.Context, userID string) (bool, error) {
	if err := s.requireActive(userID); err != nil {
		return false, err
	}
	return s.sessions.ToggleSort(), nil
}

// ============================================================
// Transfers
// ============================================================

// Transfer moves amount from the active account to the receiver. All
// preconditions are checked and both movements recorded inside one
// repository critical section, so a failed transfer leaves no trace and a
// successful one can never interleave with another mutation. The two
// movements carry independently captured timestamps.
func (s *BankService) Transfer(ctx context.Context, userID string, req *domain.TransferRequest) (*domain.TransferResponse, error) {
	_, span := bankTracer.Start(ctx, "BankService.Transfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("transfer.to", req.ToUserID),
		attribute.Float64("transfer.amount", req.Amount),
	)

	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("transfer", time.Since(start)) }()

	if err := s.requireActive(userID); err != nil {
		return nil, err
	}

	var newBalance float64
	err := s.store.Update(func(get func(string) *domain.Account) error {
		from := get(userID)
		if from == nil {
			return &domain.ErrNotFound{Resource: "account", ID: userID}
		}
		to := get(req.ToUserID)
		if to == nil {
			return &domain.ErrNotFound{Resource: "account", ID: req.ToUserID}
		}
		// The receiver check compares owner display names, not account
		// identity: two accounts under the same owner name refuse
		// transfers between each other.
		if to.Owner == from.Owner {
			return &domain.ErrInvalidTransfer{Reason: "receiver belongs to the same owner"}
		}
		if req.Amount <= 0 {
			return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
		}
		if balance := ledger.Balance(from); req.Amount > balance {
			return &domain.ErrInsufficientFunds{Available: balance, Required: req.Amount}
		}

		ledger.Record(from, -req.Amount, time.Now())
		ledger.Record(to, req.Amount, time.Now())
		newBalance = ledger.Balance(from)
		return nil
	})
	if err != nil {
		s.metrics.IncrTransfer("rejected")
		return nil, err
	}

	s.sessions.Reset()
	s.invalidateDashboard(userID)
	s.invalidateDashboard(req.ToUserID)
	s.notifier.StateChanged(userID)
	s.notifier.StateChanged(req.ToUserID)

	s.metrics.IncrTransfer("success")
	s.metrics.IncrMovements(2)
	s.logger.Info("transfer completed",
		zap.String("from", userID),
		zap.String("to", req.ToUserID),
		zap.Float64("amount", req.Amount),
	)

	return &domain.TransferResponse{
		TransferID: uuid.New().String(),
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		NewBalance: newBalance,
		Timestamp:  time.Now(),
	}, nil
}

// ============================================================
// Loans
// ============================================================

// RequestLoan approves a loan when the account shows at least one movement
// of 10% of the requested amount. The credit is not applied synchronously:
// it lands after the configured processing delay. The idle countdown is
// reset at approval time, not at application time.
func (s *BankService) RequestLoan(ctx context.Context, userID string, req *domain.LoanRequest) (*domain.LoanResponse, error) {
	_, span := bankTracer.Start(ctx, "BankService.RequestLoan")
	defer span.End()
	span.SetAttributes(attribute.Float64("loan.amount", req.Amount))

	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("loan", time.Since(start)) }()

	if err := s.requireActive(userID); err != nil {
		return nil, err
	}

	if req.Amount <= 0 {
		s.metrics.IncrLoan("rejected")
		return nil, &domain.ErrInvalidLoan{Reason: "amount must be positive"}
	}

	acc, err := s.store.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	if !ledger.HasCollateral(&acc, req.Amount, collateralFraction) {
		s.metrics.IncrLoan("rejected")
		return nil, &domain.ErrInvalidLoan{
			Reason: fmt.Sprintf("no movement covers %.0f%% of the requested amount", collateralFraction*100),
		}
	}

	loanID, effectiveAt := s.loans.Schedule(userID, req.Amount)
	s.sessions.Reset()

	s.metrics.IncrLoan("approved")
	s.logger.Info("loan approved",
		zap.String("user_id", userID),
		zap.String("loan_id", loanID),
		zap.Float64("amount", req.Amount),
		zap.Time("effective_at", effectiveAt),
	)

	return &domain.LoanResponse{
		LoanID:      loanID,
		Amount:      req.Amount,
		Status:      "approved",
		EffectiveAt: effectiveAt,
	}, nil
}

// applyLoan is the deferred half of RequestLoan, invoked by the scheduler
// after the processing delay. No countdown reset happens here. If the
// account has vanished (closed between approval and application, which the
// cancel-on-close path should prevent) the credit is dropped with a warning
// rather than mutating a removed account.
func (s *BankService) applyLoan(loanID, userID string, amount float64) {
	err := s.store.Update(func(get func(string) *domain.Account) error {
		acc := get(userID)
		if acc == nil {
			return &domain.ErrNotFound{Resource: "account", ID: userID}
		}
		ledger.Record(acc, amount, time.Now())
		return nil
	})
	if err != nil {
		s.logger.Warn("loan application dropped",
			zap.String("loan_id", loanID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	s.invalidateDashboard(userID)
	s.notifier.StateChanged(userID)
	s.metrics.IncrMovements(1)
	s.logger.Info("loan credited",
		zap.String("loan_id", loanID),
		zap.String("user_id", userID),
		zap.Float64("amount", amount),
	)
}

// ============================================================
// Account closure
// ============================================================

// CloseAccount removes the active account permanently. The submitted
// credentials must match the active session's own account. Pending loan
// applications for the account are cancelled before removal so nothing
// mutates a closed account, then the session ends.
func (s *BankService) CloseAccount(ctx context.Context, userID string, req *domain.CloseRequest) error {
	_, span := bankTracer.Start(ctx, "BankService.CloseAccount")
	defer span.End()

	if err := s.requireActive(userID); err != nil {
		return err
	}

	acc, err := s.store.Snapshot(userID)
	if err != nil {
		return err
	}
	if req.UserID != userID || req.PIN != acc.PIN {
		return &domain.ErrInvalidClosure{}
	}

	if cancelled := s.loans.CancelForAccount(userID); cancelled > 0 {
		s.logger.Info("pending loans cancelled on closure",
			zap.String("user_id", userID),
			zap.Int("count", cancelled),
		)
	}

	if err := s.store.Remove(userID); err != nil {
		return err
	}
	s.lockout.Forget(userID)
	s.invalidateDashboard(userID)
	s.sessions.End("closed")

	s.logger.Info("account closed", zap.String("user_id", userID))
	return nil
}

// ============================================================
// Helpers
// ============================================================

// requireActive gates operations on the session state machine: the caller
// must be the currently active account.
func (s *BankService) requireActive(userID string) error {
	active, ok := s.sessions.Active()
	if !ok || active != userID {
		return &domain.ErrNoSession{}
	}
	return nil
}

func (s *BankService) invalidateDashboard(userID string) {
	s.dashboards.DeletePrefix(userID + "|")
}

func dashboardKey(userID string, sorted bool) string {
	return fmt.Sprintf("%s|sorted=%t", userID, sorted)
}
