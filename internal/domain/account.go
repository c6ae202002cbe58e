// Package domain defines the core business entities for the Bankist API.
// These models are independent of the HTTP layer and represent the
// canonical data structures used throughout the service.
package domain

import (
	"strings"
	"time"
)

// Account is a single bank account with its full movement history.
// Movements and MovementDates are parallel slices: MovementDates[i] is the
// creation time of Movements[i]. Insertion order is chronological order and
// is never changed after the fact; sorting is a view concern.
type Account struct {
	Owner         string      `json:"owner"`
	UserID        string      `json:"user_id"`
	PIN           int         `json:"-"`
	Movements     []float64   `json:"movements"`
	MovementDates []time.Time `json:"movement_dates"`
	InterestRate  float64     `json:"interest_rate"`
	Locale        string      `json:"locale"`
	Currency      string      `json:"currency"`
}

// DeriveUserID builds the login identifier from an owner's display name:
// the lowercase initial of each space-separated word, concatenated in order
// ("Jane Austen" → "ja"). Uniqueness across the seed set is a precondition
// on the seed data, not enforced here.
func DeriveUserID(owner string) string {
	var b strings.Builder
	for _, word := range strings.Fields(owner) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToLower(b.String())
}

// FirstName returns the first word of the owner's display name, used in
// the login greeting.
func FirstName(owner string) string {
	fields := strings.Fields(owner)
	if len(fields) == 0 {
		return owner
	}
	return fields[0]
}
