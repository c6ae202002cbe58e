// Package view renders the ledger's computed values into the text the UI
// shows: localized currency strings, relative movement dates and the
// hour-bucketed welcome greeting. It is strictly read-only: nothing here
// touches account state.
package view

import (
	"fmt"
	"math"
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
	"github.com/hmoraes/bankist-api/internal/ledger"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders a signed amount in the account's locale and
// currency. Unknown locales fall back to English, unknown currency codes
// to USD.
func FormatAmount(value float64, locale, currencyCode string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.USD
	}

	p := message.NewPrinter(tag)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(value)))
}

// FormatMovementDate renders a movement timestamp relative to now:
// Today, Yesterday, "N days ago" up to a week, then a short date.
func FormatMovementDate(ts, now time.Time) string {
	days := daysPassed(ts, now)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return ts.Format("02/01/2006")
	}
}

// Greeting returns the welcome greeting for the given wall-clock time.
func Greeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour >= 6 && hour <= 10:
		return "Good Morning"
	case hour >= 11 && hour <= 14:
		return "Good Day"
	case hour >= 15 && hour <= 18:
		return "Good Afternoon"
	case hour >= 19 && hour <= 22:
		return "Good Evening"
	default:
		return "Good Night"
	}
}

// Welcome combines the greeting with the owner's first name, as shown in
// the header after login.
func Welcome(owner string, now time.Time) string {
	return fmt.Sprintf("%s, %s", Greeting(now), domain.FirstName(owner))
}

// MovementType labels a movement for display.
func MovementType(amount float64) string {
	if amount > 0 {
		return "deposit"
	}
	return "withdrawal"
}

// Rows renders ledger entries into display rows. Positions are 1-based in
// entry order.
func Rows(entries []ledger.Entry, locale, currencyCode string, now time.Time) []domain.MovementRow {
	rows := make([]domain.MovementRow, len(entries))
	for i, e := range entries {
		rows[i] = domain.MovementRow{
			Position:      i + 1,
			Type:          MovementType(e.Amount),
			Amount:        e.Amount,
			FormattedAmt:  FormatAmount(e.Amount, locale, currencyCode),
			Date:          e.Date,
			FormattedDate: FormatMovementDate(e.Date, now),
		}
	}
	return rows
}

// BalanceView renders the balance label.
func BalanceView(balance float64, locale, currencyCode string, now time.Time) domain.BalanceView {
	return domain.BalanceView{
		Balance:   balance,
		Formatted: FormatAmount(balance, locale, currencyCode),
		AsOf:      now,
	}
}

// SummaryView renders the in/out/interest line. The out total is shown as
// its magnitude even though the ledger keeps the sign.
func SummaryView(s ledger.Summary, locale, currencyCode string) domain.SummaryView {
	out := math.Abs(s.Withdrawals)
	return domain.SummaryView{
		In:                s.Deposits,
		Out:               out,
		Interest:          s.Interest,
		FormattedIn:       FormatAmount(s.Deposits, locale, currencyCode),
		FormattedOut:      FormatAmount(out, locale, currencyCode),
		FormattedInterest: FormatAmount(s.Interest, locale, currencyCode),
	}
}

func daysPassed(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		d = -d
	}
	return int(math.Round(d.Hours() / 24))
}
