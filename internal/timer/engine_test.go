package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

type recordedEmit struct {
	event   string
	scope   events.Scope
	payload any
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	emits []recordedEmit
}

func (f *fakeBroadcaster) Emit(event string, scope events.Scope, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emits = append(f.emits, recordedEmit{event: event, scope: scope, payload: payload})
}

func (f *fakeBroadcaster) snapshot() []recordedEmit {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedEmit, len(f.emits))
	copy(out, f.emits)
	return out
}

func newTestEngine(tick time.Duration) (*Engine, *fakeBroadcaster) {
	fb := &fakeBroadcaster{}
	e := NewEngine(fb)
	e.tickPeriod = tick
	return e, fb
}

func ticksOf(emits []recordedEmit) []events.TimerTick {
	out := make([]events.TimerTick, 0, len(emits))
	for _, em := range emits {
		out = append(out, em.payload.(events.TimerTick))
	}
	return out
}

func TestStart_FirstUpdateKeepsCallerRemaining(t *testing.T) {
	e, fb := newTestEngine(time.Hour)
	defer e.Shutdown()

	require.NoError(t, e.Start("t1", "f1", 150_000, 90_000))

	emits := fb.snapshot()
	require.Len(t, emits, 1)
	assert.Equal(t, events.TimerUpdate, emits[0].event)
	assert.Equal(t, events.Scope{TournamentID: "t1", FieldID: "f1"}, emits[0].scope)

	tick := emits[0].payload.(events.TimerTick)
	assert.True(t, tick.IsRunning)
	assert.Equal(t, int64(90_000), tick.RemainingMs)
	assert.Equal(t, int64(150_000), tick.DurationMs)
	assert.NotZero(t, tick.StartedAt)
}

func TestStart_RejectsRemainingAboveDuration(t *testing.T) {
	e, fb := newTestEngine(time.Hour)
	defer e.Shutdown()

	err := e.Start("t1", "", 1_000, 2_000)
	assert.ErrorIs(t, err, ErrRemainingExceedsDuration)
	assert.Empty(t, fb.snapshot())
	assert.False(t, e.active("t1"))
}

func TestStart_SecondStartCancelsFirst(t *testing.T) {
	e, fb := newTestEngine(10 * time.Millisecond)
	defer e.Shutdown()

	require.NoError(t, e.Start("t1", "", 600_000, 600_000))
	require.NoError(t, e.Start("t1", "", 120_000, 120_000))

	time.Sleep(60 * time.Millisecond)

	// Every tick after the second start must belong to the replacement timer.
	var periodic []events.TimerTick
	for _, tick := range ticksOf(fb.snapshot())[2:] {
		periodic = append(periodic, tick)
	}
	require.NotEmpty(t, periodic)
	for _, tick := range periodic {
		assert.Equal(t, int64(120_000), tick.DurationMs)
	}
}

func TestPauseThenReset_YieldsFreshStoppedState(t *testing.T) {
	e, fb := newTestEngine(time.Hour)
	defer e.Shutdown()

	require.NoError(t, e.Start("t1", "f2", 150_000, 150_000))
	require.NoError(t, e.Pause("t1", "f2", 142_500))
	e.Reset("t1", "f2", 150_000)

	ticks := ticksOf(fb.snapshot())
	require.Len(t, ticks, 3)

	pause := ticks[1]
	assert.False(t, pause.IsRunning)
	assert.Equal(t, int64(142_500), pause.RemainingMs)
	assert.NotZero(t, pause.PausedAt)

	reset := ticks[2]
	assert.False(t, reset.IsRunning)
	assert.Equal(t, int64(150_000), reset.RemainingMs)
	assert.Equal(t, int64(150_000), reset.DurationMs)
	assert.Zero(t, reset.StartedAt)
	assert.Zero(t, reset.PausedAt)
	assert.False(t, e.active("t1"))
}

func TestPause_NoActiveTimer(t *testing.T) {
	e, fb := newTestEngine(time.Hour)
	defer e.Shutdown()

	assert.ErrorIs(t, e.Pause("missing", "", 1_000), ErrNoActiveTimer)
	assert.Empty(t, fb.snapshot())
}

func TestReset_IdleTournamentStillBroadcasts(t *testing.T) {
	e, fb := newTestEngine(time.Hour)
	defer e.Shutdown()

	e.Reset("idle", "", 90_000)

	emits := fb.snapshot()
	require.Len(t, emits, 1)
	tick := emits[0].payload.(events.TimerTick)
	assert.Equal(t, int64(90_000), tick.RemainingMs)
	assert.False(t, tick.IsRunning)
}

func TestExpiry_SelfCancels(t *testing.T) {
	e, fb := newTestEngine(10 * time.Millisecond)
	defer e.Shutdown()

	require.NoError(t, e.Start("t1", "", 40, 40))

	require.Eventually(t, func() bool {
		return !e.active("t1")
	}, time.Second, 5*time.Millisecond)

	settled := len(fb.snapshot())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, len(fb.snapshot()), "no ticks after expiry")

	ticks := ticksOf(fb.snapshot())
	last := ticks[len(ticks)-1]
	assert.Equal(t, int64(0), last.RemainingMs)
	assert.False(t, last.IsRunning)
}

func TestRemaining_DerivedFromAnchorNotTickCount(t *testing.T) {
	e, fb := newTestEngine(10 * time.Millisecond)
	defer e.Shutdown()

	require.NoError(t, e.Start("t1", "", 600_000, 300_000))
	time.Sleep(35 * time.Millisecond)
	e.Shutdown()

	ticks := ticksOf(fb.snapshot())
	require.Greater(t, len(ticks), 1)
	for _, tick := range ticks[1:] {
		// Remaining tracks wall clock from the resume point, not full duration.
		assert.LessOrEqual(t, tick.RemainingMs, int64(300_000))
		assert.Greater(t, tick.RemainingMs, int64(299_000))
	}
}
