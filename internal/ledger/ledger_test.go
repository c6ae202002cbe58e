package ledger_test

import (
	"testing"
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
	"github.com/hmoraes/bankist-api/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount() *domain.Account {
	movements := []float64{200, -50, 3000, -650, -130, 70, 1300}
	dates := make([]time.Time, len(movements))
	base := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	return &domain.Account{
		Owner:         "Sarah Williams",
		UserID:        "sw",
		Movements:     movements,
		MovementDates: dates,
		InterestRate:  1.2,
		Locale:        "en-US",
		Currency:      "USD",
	}
}

func TestBalance(t *testing.T) {
	acc := testAccount()
	assert.InDelta(t, 3740, ledger.Balance(acc), 1e-9)
}

func TestBalance_EqualsSumAfterRecords(t *testing.T) {
	acc := testAccount()
	ledger.Record(acc, 500, time.Now())
	ledger.Record(acc, -120.5, time.Now())

	var sum float64
	for _, m := range acc.Movements {
		sum += m
	}
	assert.InDelta(t, sum, ledger.Balance(acc), 1e-9)
}

func TestRecord_KeepsParallelSlices(t *testing.T) {
	acc := testAccount()
	require.Equal(t, len(acc.Movements), len(acc.MovementDates))

	ts := time.Date(2025, time.August, 1, 9, 30, 0, 0, time.UTC)
	ledger.Record(acc, -42, ts)

	require.Equal(t, len(acc.Movements), len(acc.MovementDates))
	assert.Equal(t, -42.0, acc.Movements[len(acc.Movements)-1])
	assert.Equal(t, ts, acc.MovementDates[len(acc.MovementDates)-1])
}

func TestSummarize(t *testing.T) {
	acc := testAccount()
	s := ledger.Summarize(acc)

	assert.InDelta(t, 4570, s.Deposits, 1e-9)
	assert.InDelta(t, -830, s.Withdrawals, 1e-9)

	// At 1.2% only deposits >= ~83.3 earn a full unit of interest:
	// 200, 3000 and 1300 qualify; 70 earns 0.84 and is excluded.
	want := 200*0.012 + 3000*0.012 + 1300*0.012
	assert.InDelta(t, want, s.Interest, 1e-9)
}

func TestSummarize_InterestThresholdIsPerDeposit(t *testing.T) {
	// Each deposit earns 0.84 of interest; together they would exceed 1,
	// but no single contribution reaches the threshold so the total is 0.
	acc := &domain.Account{
		Movements:     []float64{70, 70, 70},
		MovementDates: make([]time.Time, 3),
		InterestRate:  1.2,
	}
	s := ledger.Summarize(acc)
	assert.Zero(t, s.Interest)
}

func TestEntries_ChronologicalByDefault(t *testing.T) {
	acc := testAccount()
	entries := ledger.Entries(acc, false)

	require.Len(t, entries, len(acc.Movements))
	for i, e := range entries {
		assert.Equal(t, acc.Movements[i], e.Amount)
		assert.Equal(t, acc.MovementDates[i], e.Date)
	}
}

func TestEntries_SortedAscending(t *testing.T) {
	acc := testAccount()
	entries := ledger.Entries(acc, true)

	require.Len(t, entries, len(acc.Movements))
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Amount, entries[i].Amount)
	}
}

func TestEntries_SortIsStable(t *testing.T) {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	acc := &domain.Account{
		Movements: []float64{100, -50, 100, -50},
		MovementDates: []time.Time{
			base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2), base.AddDate(0, 0, 3),
		},
	}

	entries := ledger.Entries(acc, true)
	// Ties keep original relative order: the two -50s and the two 100s
	// stay in chronological order among themselves.
	require.Len(t, entries, 4)
	assert.Equal(t, base.AddDate(0, 0, 1), entries[0].Date)
	assert.Equal(t, base.AddDate(0, 0, 3), entries[1].Date)
	assert.Equal(t, base, entries[2].Date)
	assert.Equal(t, base.AddDate(0, 0, 2), entries[3].Date)
}

func TestEntries_SortNeverMutatesStorage(t *testing.T) {
	acc := testAccount()
	wantMovs := append([]float64(nil), acc.Movements...)
	wantDates := append([]time.Time(nil), acc.MovementDates...)

	for i := 0; i < 3; i++ {
		_ = ledger.Entries(acc, true)
		_ = ledger.Entries(acc, false)
	}

	assert.Equal(t, wantMovs, acc.Movements)
	assert.Equal(t, wantDates, acc.MovementDates)
}

func TestHasCollateral(t *testing.T) {
	acc := testAccount() // largest movement: 3000

	assert.True(t, ledger.HasCollateral(acc, 30000, 0.1))  // 3000 >= 3000
	assert.False(t, ledger.HasCollateral(acc, 30001, 0.1)) // 3000 < 3000.1
	assert.True(t, ledger.HasCollateral(acc, 500, 0.1))
}
