package repository

import (
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
)

// DefaultSeed returns the static demo accounts the service starts with.
// The two most recent dates are relative to now so the movement list always
// shows a "Today" and a "Yesterday" row.
func DefaultSeed() []domain.Account {
	now := time.Now()

	return []domain.Account{
		{
			Owner: "Sarah Williams",
			PIN:   1111,
			Movements: []float64{
				200, 455.23, -306.5, 25000, -642.21, -133.9, 79.97, 1300,
			},
			MovementDates: []time.Time{
				time.Date(2024, time.November, 18, 21, 31, 17, 0, time.UTC),
				time.Date(2024, time.December, 23, 7, 42, 2, 0, time.UTC),
				time.Date(2025, time.January, 28, 9, 15, 4, 0, time.UTC),
				time.Date(2025, time.April, 1, 10, 17, 24, 0, time.UTC),
				time.Date(2025, time.May, 8, 14, 11, 59, 0, time.UTC),
				time.Date(2025, time.July, 26, 17, 1, 17, 0, time.UTC),
				now.AddDate(0, 0, -1),
				now,
			},
			InterestRate: 1.2,
			Locale:       "en-US",
			Currency:     "USD",
		},
		{
			Owner: "James Davis",
			PIN:   2222,
			Movements: []float64{
				5000, 3400, -150, -790, -3210, -1000, 8500, -30,
			},
			MovementDates: []time.Time{
				time.Date(2024, time.November, 1, 13, 15, 33, 0, time.UTC),
				time.Date(2024, time.November, 30, 9, 48, 16, 0, time.UTC),
				time.Date(2024, time.December, 25, 6, 4, 23, 0, time.UTC),
				time.Date(2025, time.January, 25, 14, 18, 46, 0, time.UTC),
				time.Date(2025, time.February, 5, 16, 33, 6, 0, time.UTC),
				time.Date(2025, time.April, 10, 14, 43, 26, 0, time.UTC),
				now.AddDate(0, 0, -2),
				now.AddDate(0, 0, -1),
			},
			InterestRate: 1.5,
			Locale:       "pt-PT",
			Currency:     "EUR",
		},
		{
			Owner: "Maria Santos",
			PIN:   3333,
			Movements: []float64{
				200, -200, 340, -300, -20, 50, 400, -460,
			},
			MovementDates: []time.Time{
				time.Date(2024, time.November, 1, 13, 15, 33, 0, time.UTC),
				time.Date(2024, time.November, 30, 9, 48, 16, 0, time.UTC),
				time.Date(2024, time.December, 25, 6, 4, 23, 0, time.UTC),
				time.Date(2025, time.January, 25, 14, 18, 46, 0, time.UTC),
				time.Date(2025, time.February, 5, 16, 33, 6, 0, time.UTC),
				time.Date(2025, time.April, 10, 14, 43, 26, 0, time.UTC),
				time.Date(2025, time.June, 25, 18, 49, 59, 0, time.UTC),
				now.AddDate(0, 0, -5),
			},
			InterestRate: 0.7,
			Locale:       "en-GB",
			Currency:     "GBP",
		},
		{
			Owner: "Adam Schmidt",
			PIN:   4444,
			Movements: []float64{
				430, 1000, 700, 50, 90,
			},
			MovementDates: []time.Time{
				time.Date(2024, time.November, 1, 13, 15, 33, 0, time.UTC),
				time.Date(2024, time.November, 30, 9, 48, 16, 0, time.UTC),
				time.Date(2024, time.December, 25, 6, 4, 23, 0, time.UTC),
				time.Date(2025, time.January, 25, 14, 18, 46, 0, time.UTC),
				now.AddDate(0, 0, -3),
			},
			InterestRate: 1,
			Locale:       "de-DE",
			Currency:     "EUR",
		},
	}
}
