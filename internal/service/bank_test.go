package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
	"github.com/hmoraes/bankist-api/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testStack) login(t *testing.T, userID string, pin int) {
	t.Helper()
	_, err := s.auth.Login(context.Background(), &domain.LoginRequest{UserID: userID, PIN: pin})
	require.NoError(t, err)
}

func (s *testStack) balanceOf(t *testing.T, userID string) float64 {
	t.Helper()
	acc, err := s.store.Snapshot(userID)
	require.NoError(t, err)
	return ledger.Balance(&acc)
}

func TestViews_RequireActiveSession(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	var noSession *domain.ErrNoSession

	_, err := s.bank.Movements(ctx, "sw", false)
	assert.ErrorAs(t, err, &noSession)
	_, err = s.bank.Balance(ctx, "sw")
	assert.ErrorAs(t, err, &noSession)
	_, err = s.bank.Summary(ctx, "sw")
	assert.ErrorAs(t, err, &noSession)
	_, err = s.bank.Dashboard(ctx, "sw")
	assert.ErrorAs(t, err, &noSession)
}

func TestViews_OtherUserIsRefused(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	var noSession *domain.ErrNoSession
	_, err := s.bank.Balance(ctx, "jd")
	assert.ErrorAs(t, err, &noSession)
}

func TestBalance_MatchesLedger(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	bv, err := s.bank.Balance(ctx, "sw")
	require.NoError(t, err)
	assert.InDelta(t, 3740, bv.Balance, 0.001)
	assert.NotEmpty(t, bv.Formatted)
}

func TestMovements_SortedDoesNotMutate(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	sorted, err := s.bank.Movements(ctx, "sw", true)
	require.NoError(t, err)
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1].Amount, sorted[i].Amount)
	}

	acc, err := s.store.Snapshot("sw")
	require.NoError(t, err)
	assert.Equal(t, []float64{200, -50, 3000, -650, -130, 70, 1300}, acc.Movements,
		"stored movement order must survive a sorted render")
}

func TestDashboard_ReflectsSortToggle(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	d, err := s.bank.Dashboard(ctx, "sw")
	require.NoError(t, err)
	assert.False(t, d.Sorted)
	assert.Len(t, d.Movements, 7)
	assert.Equal(t, "Sarah Williams", d.Owner)

	sorted, err := s.bank.ToggleSort(ctx, "sw")
	require.NoError(t, err)
	assert.True(t, sorted)

	d, err = s.bank.Dashboard(ctx, "sw")
	require.NoError(t, err)
	assert.True(t, d.Sorted)
	for i := 1; i < len(d.Movements); i++ {
		assert.LessOrEqual(t, d.Movements[i-1].Amount, d.Movements[i].Amount)
	}
}

func TestDashboard_RefreshesAfterTransfer(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	// Prime the cache for both accounts.
	before, err := s.bank.Dashboard(ctx, "sw")
	require.NoError(t, err)

	_, err = s.bank.Transfer(ctx, "sw", &domain.TransferRequest{ToUserID: "jd", Amount: 250})
	require.NoError(t, err)

	// Well inside the TTL: a stale cached render would still show the old
	// balance.
	after, err := s.bank.Dashboard(ctx, "sw")
	require.NoError(t, err)
	assert.InDelta(t, before.Balance.Balance-250, after.Balance.Balance, 0.001,
		"dashboard must reflect the transfer immediately")
	assert.Len(t, after.Movements, len(before.Movements)+1)

}

func TestDashboard_ReceiverCacheDroppedByTransfer(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	// Prime the receiver's cached render, then switch sessions. The cache
	// outlives the session, so a transfer that skipped invalidation would
	// serve the stale render on the next login.
	s.login(t, "jd", 2222)
	recvBefore, err := s.bank.Dashboard(ctx, "jd")
	require.NoError(t, err)

	s.login(t, "sw", 1111)
	_, err = s.bank.Transfer(ctx, "sw", &domain.TransferRequest{ToUserID: "jd", Amount: 250})
	require.NoError(t, err)

	s.login(t, "jd", 2222)
	recvAfter, err := s.bank.Dashboard(ctx, "jd")
	require.NoError(t, err)
	assert.InDelta(t, recvBefore.Balance.Balance+250, recvAfter.Balance.Balance, 0.001,
		"receiver dashboard must reflect the incoming transfer")
}

func TestDashboard_RefreshesAfterLoanCredit(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	before, err := s.bank.Dashboard(ctx, "sw")
	require.NoError(t, err)

	_, err = s.bank.RequestLoan(ctx, "sw", &domain.LoanRequest{Amount: 10000})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		d, err := s.bank.Dashboard(ctx, "sw")
		return err == nil && d.Balance.Balance > before.Balance.Balance
	}, time.Second, 10*time.Millisecond, "dashboard should pick up the credited loan inside the TTL")

	after, err := s.bank.Dashboard(ctx, "sw")
	require.NoError(t, err)
	assert.InDelta(t, before.Balance.Balance+10000, after.Balance.Balance, 0.001)
}

func TestTransfer_MovesFunds(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	fromBefore := s.balanceOf(t, "sw")
	toBefore := s.balanceOf(t, "jd")

	resp, err := s.bank.Transfer(ctx, "sw", &domain.TransferRequest{ToUserID: "jd", Amount: 500})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.TransferID)
	assert.InDelta(t, fromBefore-500, resp.NewBalance, 0.001)

	assert.InDelta(t, fromBefore-500, s.balanceOf(t, "sw"), 0.001)
	assert.InDelta(t, toBefore+500, s.balanceOf(t, "jd"), 0.001)
	assert.InDelta(t, fromBefore+toBefore, s.balanceOf(t, "sw")+s.balanceOf(t, "jd"), 0.001,
		"transfers must conserve total funds")
}

func TestTransfer_AppendsParallelEntries(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	_, err := s.bank.Transfer(ctx, "sw", &domain.TransferRequest{ToUserID: "jd", Amount: 100})
	require.NoError(t, err)

	from, err := s.store.Snapshot("sw")
	require.NoError(t, err)
	require.Len(t, from.Movements, 8)
	require.Len(t, from.MovementDates, 8)
	assert.InDelta(t, -100, from.Movements[7], 0.001)

	to, err := s.store.Snapshot("jd")
	require.NoError(t, err)
	require.Len(t, to.Movements, 2)
	assert.InDelta(t, 100, to.Movements[1], 0.001)
}

func TestTransfer_Rejections(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	before := s.balanceOf(t, "sw")

	tests := []struct {
		name string
		req  *domain.TransferRequest
		want any
	}{
		{"unknown receiver", &domain.TransferRequest{ToUserID: "zz", Amount: 10}, new(*domain.ErrNotFound)},
		{"same owner name", &domain.TransferRequest{ToUserID: "sw2", Amount: 10}, new(*domain.ErrInvalidTransfer)},
		{"zero amount", &domain.TransferRequest{ToUserID: "jd", Amount: 0}, new(*domain.ErrValidation)},
		{"negative amount", &domain.TransferRequest{ToUserID: "jd", Amount: -5}, new(*domain.ErrValidation)},
		{"exceeds balance", &domain.TransferRequest{ToUserID: "jd", Amount: before + 1}, new(*domain.ErrInsufficientFunds)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.bank.Transfer(ctx, "sw", tc.req)
			require.ErrorAs(t, err, tc.want)
		})
	}

	assert.InDelta(t, before, s.balanceOf(t, "sw"), 0.001,
		"rejected transfers must leave no trace")
	acc, err := s.store.Snapshot("sw")
	require.NoError(t, err)
	assert.Len(t, acc.Movements, 7)
}

func TestRequestLoan_CreditsAfterDelay(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	before := s.balanceOf(t, "sw")

	// The largest seeded movement is 3000, so 10000 clears the 10% rule.
	resp, err := s.bank.RequestLoan(ctx, "sw", &domain.LoanRequest{Amount: 10000})
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	assert.NotEmpty(t, resp.LoanID)

	// Approved but not yet credited.
	assert.InDelta(t, before, s.balanceOf(t, "sw"), 0.001)

	require.Eventually(t, func() bool {
		return s.balanceOf(t, "sw") > before
	}, time.Second, 10*time.Millisecond, "loan credit should land after the delay")

	assert.InDelta(t, before+10000, s.balanceOf(t, "sw"), 0.001)
}

func TestRequestLoan_NoCollateral(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	// 10% of 40000 is 4000; no movement reaches it.
	_, err := s.bank.RequestLoan(ctx, "sw", &domain.LoanRequest{Amount: 40000})
	var invalid *domain.ErrInvalidLoan
	require.ErrorAs(t, err, &invalid)

	assert.InDelta(t, 3740, s.balanceOf(t, "sw"), 0.001)
}

func TestRequestLoan_NonPositiveAmount(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	var invalid *domain.ErrInvalidLoan
	_, err := s.bank.RequestLoan(ctx, "sw", &domain.LoanRequest{Amount: 0})
	require.ErrorAs(t, err, &invalid)
	_, err = s.bank.RequestLoan(ctx, "sw", &domain.LoanRequest{Amount: -100})
	require.ErrorAs(t, err, &invalid)
}

func TestCloseAccount_RemovesAndEndsSession(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	err := s.bank.CloseAccount(ctx, "sw", &domain.CloseRequest{UserID: "sw", PIN: 1111})
	require.NoError(t, err)

	assert.False(t, s.store.Exists("sw"))
	_, ok := s.sessions.Active()
	assert.False(t, ok, "closure must end the session")
}

func TestCloseAccount_WrongCredentials(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	var invalid *domain.ErrInvalidClosure

	err := s.bank.CloseAccount(ctx, "sw", &domain.CloseRequest{UserID: "sw", PIN: 9999})
	require.ErrorAs(t, err, &invalid)

	err = s.bank.CloseAccount(ctx, "sw", &domain.CloseRequest{UserID: "jd", PIN: 1111})
	require.ErrorAs(t, err, &invalid)

	assert.True(t, s.store.Exists("sw"))
	active, ok := s.sessions.Active()
	require.True(t, ok)
	assert.Equal(t, "sw", active, "failed closure must leave the session intact")
}

func TestCloseAccount_CancelsPendingLoans(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	_, err := s.bank.RequestLoan(ctx, "sw", &domain.LoanRequest{Amount: 10000})
	require.NoError(t, err)

	err = s.bank.CloseAccount(ctx, "sw", &domain.CloseRequest{UserID: "sw", PIN: 1111})
	require.NoError(t, err)

	// Wait well past the loan delay: nothing may reappear.
	time.Sleep(80 * time.Millisecond)
	assert.False(t, s.store.Exists("sw"))
}

func TestLogout_KeepsPendingLoans(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	s.login(t, "sw", 1111)

	before := s.balanceOf(t, "sw")
	_, err := s.bank.RequestLoan(ctx, "sw", &domain.LoanRequest{Amount: 10000})
	require.NoError(t, err)

	require.NoError(t, s.auth.Logout(ctx, "sw"))

	// The account still exists, so the approved credit lands anyway.
	require.Eventually(t, func() bool {
		return s.balanceOf(t, "sw") > before
	}, time.Second, 10*time.Millisecond)
}
