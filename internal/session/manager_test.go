package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/hmoraes/bankist-api/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recorder captures notifier signals for assertions.
type recorder struct {
	mu      sync.Mutex
	started []string
	ended   []string // "userID/reason"
	ticks   int
}

func (r *recorder) SessionStarted(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, userID)
}

func (r *recorder) SessionEnded(userID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, userID+"/"+reason)
}

func (r *recorder) StateChanged(string) {}

func (r *recorder) CountdownTick(string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *recorder) endedEvents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ended...)
}

func TestStart_ActivatesSession(t *testing.T) {
	rec := &recorder{}
	m := session.NewManager(300, time.Hour, rec, zap.NewNop())

	sid := m.Start("sw")
	require.NotEmpty(t, sid)

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "sw", active)
	assert.Equal(t, 300, m.Remaining())
	assert.False(t, m.Sorted())
	assert.True(t, m.Validate("sw", sid))
}

func TestStart_ReplacesPreviousSession(t *testing.T) {
	rec := &recorder{}
	m := session.NewManager(300, time.Hour, rec, zap.NewNop())

	first := m.Start("sw")
	second := m.Start("jd")

	assert.False(t, m.Validate("sw", first), "old session token must be refused")
	assert.True(t, m.Validate("jd", second))
}

func TestStart_ResetsSortToggle(t *testing.T) {
	m := session.NewManager(300, time.Hour, &recorder{}, zap.NewNop())

	m.Start("sw")
	m.ToggleSort()
	require.True(t, m.Sorted())

	m.Start("sw")
	assert.False(t, m.Sorted(), "sort toggle must reset on login")
}

func TestEnd_ClearsSession(t *testing.T) {
	rec := &recorder{}
	m := session.NewManager(300, time.Hour, rec, zap.NewNop())

	sid := m.Start("sw")
	m.End("logout")

	_, ok := m.Active()
	assert.False(t, ok)
	assert.False(t, m.Validate("sw", sid))
	assert.Equal(t, 0, m.Remaining())
	assert.Equal(t, []string{"sw/logout"}, rec.endedEvents())

	// Ending twice is a no-op.
	m.End("logout")
	assert.Equal(t, []string{"sw/logout"}, rec.endedEvents())
}

func TestCountdown_ExpiresToLoggedOut(t *testing.T) {
	rec := &recorder{}
	m := session.NewManager(3, 10*time.Millisecond, rec, zap.NewNop())

	m.Start("sw")

	require.Eventually(t, func() bool {
		_, ok := m.Active()
		return !ok
	}, time.Second, 5*time.Millisecond, "countdown should force logout")

	assert.Equal(t, []string{"sw/timeout"}, rec.endedEvents())
	assert.Equal(t, 0, m.Remaining())
}

func TestReset_RearmsCountdown(t *testing.T) {
	rec := &recorder{}
	m := session.NewManager(4, 25*time.Millisecond, rec, zap.NewNop())

	m.Start("sw")

	// Keep resetting past the point the original countdown would have
	// expired; the session must stay active.
	for i := 0; i < 6; i++ {
		time.Sleep(40 * time.Millisecond)
		m.Reset()
	}

	_, ok := m.Active()
	assert.True(t, ok, "resets should keep the session alive")
	assert.Empty(t, rec.endedEvents())

	m.End("logout")
}

func TestReset_SingleLiveCountdown(t *testing.T) {
	rec := &recorder{}
	m := session.NewManager(10, 20*time.Millisecond, rec, zap.NewNop())

	m.Start("sw")
	// Rapid resets must cancel the previous countdown each time; with a
	// duplicate countdown the remaining value would fall twice as fast.
	for i := 0; i < 5; i++ {
		m.Reset()
	}

	time.Sleep(90 * time.Millisecond) // ~4 ticks
	remaining := m.Remaining()
	assert.GreaterOrEqual(t, remaining, 4, "remaining fell too fast: duplicate countdown live")

	m.End("logout")
}

func TestReset_WhileLoggedOutIsNoop(t *testing.T) {
	m := session.NewManager(300, time.Hour, &recorder{}, zap.NewNop())

	m.Reset()
	_, ok := m.Active()
	assert.False(t, ok)
	assert.Equal(t, 0, m.Remaining())
}
