package domain

import "time"

// ============================================================
// Auth / Session
// ============================================================

// LoginRequest carries the login-submit event payload.
type LoginRequest struct {
	UserID string `json:"user_id"`
	PIN    int    `json:"pin"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      string `json:"user_id"`
	Owner       string `json:"owner"`
	Greeting    string `json:"greeting"`
}

// SessionStatus describes the live session for the renderer: who is logged
// in, how many countdown seconds remain, and the current sort toggle.
type SessionStatus struct {
	UserID           string `json:"user_id"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Sorted           bool   `json:"sorted"`
}

// ============================================================
// Ledger views
// ============================================================

// MovementRow is one rendered row of the movements list.
type MovementRow struct {
	Position      int       `json:"position"`
	Type          string    `json:"type"` // deposit, withdrawal
	Amount        float64   `json:"amount"`
	FormattedAmt  string    `json:"formatted_amount"`
	Date          time.Time `json:"date"`
	FormattedDate string    `json:"formatted_date"`
}

// BalanceView is the rendered balance label.
type BalanceView struct {
	Balance   float64   `json:"balance"`
	Formatted string    `json:"formatted"`
	AsOf      time.Time `json:"as_of"`
}

// SummaryView is the rendered in/out/interest summary line. Withdrawals are
// reported as an absolute value for display; the ledger keeps the sign.
type SummaryView struct {
	In                float64 `json:"in"`
	Out               float64 `json:"out"`
	Interest          float64 `json:"interest"`
	FormattedIn       string  `json:"formatted_in"`
	FormattedOut      string  `json:"formatted_out"`
	FormattedInterest string  `json:"formatted_interest"`
}

// Dashboard bundles everything the UI redraws after a state change.
type Dashboard struct {
	Owner     string        `json:"owner"`
	Greeting  string        `json:"greeting"`
	Movements []MovementRow `json:"movements"`
	Balance   BalanceView   `json:"balance"`
	Summary   SummaryView   `json:"summary"`
	Sorted    bool          `json:"sorted"`
}

// ============================================================
// Transfers / Loans / Closure
// ============================================================

// TransferRequest carries the transfer-submit event payload.
type TransferRequest struct {
	ToUserID string  `json:"to_user_id"`
	Amount   float64 `json:"amount"`
}

// TransferResponse reports a completed transfer.
type TransferResponse struct {
	TransferID string    `json:"transfer_id"`
	ToUserID   string    `json:"to_user_id"`
	Amount     float64   `json:"amount"`
	NewBalance float64   `json:"new_balance"`
	Timestamp  time.Time `json:"timestamp"`
}

// LoanRequest carries the loan-submit event payload.
type LoanRequest struct {
	Amount float64 `json:"amount"`
}

// LoanResponse reports an approved loan. The amount is credited only after
// the processing delay elapses, so the response carries the effective time
// rather than a new balance.
type LoanResponse struct {
	LoanID      string    `json:"loan_id"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"` // approved
	EffectiveAt time.Time `json:"effective_at"`
}

// CloseRequest carries the close-submit event payload.
type CloseRequest struct {
	UserID string `json:"user_id"`
	PIN    int    `json:"pin"`
}

// ============================================================
// Metrics snapshot
// ============================================================

// BankMetrics is a snapshot of operational counters for GET /v1/metrics/bank.
type BankMetrics struct {
	LoginsTotal       int64   `json:"logins_total"`
	FailedLogins      int64   `json:"failed_logins"`
	TransfersTotal    int64   `json:"transfers_total"`
	LoansTotal        int64   `json:"loans_total"`
	SessionTimeouts   int64   `json:"session_timeouts"`
	ActiveSessions    int64   `json:"active_sessions"`
	LoginFailureRate  float64 `json:"login_failure_rate"`
	MovementsRecorded int64   `json:"movements_recorded"`
}
