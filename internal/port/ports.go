// Package port defines the interfaces between the service layer and its
// collaborators, so services depend on contracts rather than concrete
// implementations.
package port

import "github.com/hmoraes/bankist-api/internal/domain"

// AccountStore is the account repository contract.
type AccountStore interface {
	// Snapshot returns a deep copy of an account for read paths.
	Snapshot(userID string) (domain.Account, error)
	// Update runs fn inside a single critical section with live account
	// pointers, so multi-account mutations are atomic.
	Update(fn func(get func(userID string) *domain.Account) error) error
	// Remove permanently deletes an account (account closure).
	Remove(userID string) error
	// Exists reports whether the user ID is still in the active set.
	Exists(userID string) bool
}

// Notifier is the "state changed" signal sink for the external rendering
// collaborator. Implementations must be fast and must not call back into
// the session manager.
type Notifier interface {
	// SessionStarted fires after a successful login.
	SessionStarted(userID string)
	// SessionEnded fires on idle timeout, explicit logout or account
	// closure; reason is one of "timeout", "logout", "closed".
	SessionEnded(userID, reason string)
	// StateChanged fires after any ledger mutation the renderer should
	// redraw for.
	StateChanged(userID string)
	// CountdownTick fires once per countdown tick with the remaining
	// seconds.
	CountdownTick(userID string, remaining int)
}
