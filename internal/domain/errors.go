package domain

import "fmt"

// Error types for consistent error handling across the API.
// Every rejected operation surfaces one of these instead of silently
// no-opping; the guarantee that a rejected operation performs no state
// mutation and no countdown reset still holds.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInvalidCredentials indicates an unmatched user ID or wrong PIN.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid credentials"
}

// ErrAccountLocked indicates the lockout breaker rejected a login after
// repeated credential failures.
type ErrAccountLocked struct {
	UserID string
}

func (e *ErrAccountLocked) Error() string {
	return fmt.Sprintf("account temporarily locked after repeated failed logins: %s", e.UserID)
}

// ErrNoSession indicates an operation that requires an active session was
// attempted while logged out, or with a token from a session that has since
// ended.
type ErrNoSession struct{}

func (e *ErrNoSession) Error() string {
	return "no active session"
}

// ErrInvalidTransfer indicates a transfer precondition failed.
type ErrInvalidTransfer struct {
	Reason string
}

func (e *ErrInvalidTransfer) Error() string {
	return fmt.Sprintf("invalid transfer: %s", e.Reason)
}

// ErrInvalidLoan indicates a loan request precondition failed.
type ErrInvalidLoan struct {
	Reason string
}

func (e *ErrInvalidLoan) Error() string {
	return fmt.Sprintf("invalid loan request: %s", e.Reason)
}

// ErrInvalidClosure indicates the close-account credentials did not match
// the active session's own account.
type ErrInvalidClosure struct{}

func (e *ErrInvalidClosure) Error() string {
	return "closure refused: credentials do not match the active account"
}

// ErrInsufficientFunds indicates not enough balance for the operation.
type ErrInsufficientFunds struct {
	Available float64
	Required  float64
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: available=%.2f required=%.2f", e.Available, e.Required)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates an invalid or expired token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
