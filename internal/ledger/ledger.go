// Package ledger implements the movement history computations for a single
// account: the append-only movement log, the derived balance, the
// in/out/interest summary and the sortable movements view.
//
// All functions are pure with respect to time: they read the account state
// they are given and never cache results across calls. Balance and summary
// are recomputed from scratch on every call so they can never drift from
// the true sum.
package ledger

import (
	"sort"
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
)

// minInterestContribution is the per-deposit threshold: a deposit whose
// earned interest is below this contributes nothing to the interest total.
// This is a business rule, not display rounding.
const minInterestContribution = 1.0

// Entry is one (amount, timestamp) pair of the movements view.
type Entry struct {
	Amount float64
	Date   time.Time
}

// Summary holds the categorized totals of an account's movements.
// Withdrawals retains its sign; callers wanting the display magnitude
// negate it.
type Summary struct {
	Deposits    float64
	Withdrawals float64
	Interest    float64
}

// Record appends a signed movement and its timestamp to the account at the
// same index, preserving the parallel-slice invariant. Deposits are
// positive, withdrawals negative. There is no rollback: the log is
// append-only.
func Record(acc *domain.Account, amount float64, ts time.Time) {
	acc.Movements = append(acc.Movements, amount)
	acc.MovementDates = append(acc.MovementDates, ts)
}

// Balance returns the sum of all movements. O(n), recomputed every call.
func Balance(acc *domain.Account) float64 {
	var sum float64
	for _, mov := range acc.Movements {
		sum += mov
	}
	return sum
}

// Summarize computes the deposit, withdrawal and interest totals. Interest
// is earned per deposit at the account's rate, and a deposit's contribution
// is counted only when it reaches minInterestContribution on its own.
func Summarize(acc *domain.Account) Summary {
	var s Summary
	for _, mov := range acc.Movements {
		switch {
		case mov > 0:
			s.Deposits += mov
			if interest := mov * acc.InterestRate / 100; interest >= minInterestContribution {
				s.Interest += interest
			}
		case mov < 0:
			s.Withdrawals += mov
		}
	}
	return s
}

// Entries returns the (amount, date) pairs of the account's movements.
// With sorted=false the pairs come back in ledger (chronological) order;
// with sorted=true they are reordered by ascending amount using a stable
// sort, ties keeping their original relative order. The result is always a
// fresh copy: the stored slices are never reordered.
func Entries(acc *domain.Account, sorted bool) []Entry {
	entries := make([]Entry, len(acc.Movements))
	for i, mov := range acc.Movements {
		entries[i] = Entry{Amount: mov, Date: acc.MovementDates[i]}
	}
	if sorted {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Amount < entries[j].Amount
		})
	}
	return entries
}

// HasCollateral reports whether any single historical movement reaches the
// given fraction of the requested loan amount (the loan eligibility rule).
func HasCollateral(acc *domain.Account, loanAmount, fraction float64) bool {
	for _, mov := range acc.Movements {
		if mov >= loanAmount*fraction {
			return true
		}
	}
	return false
}
