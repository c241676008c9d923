// Package timer runs one countdown per tournament, anchored to wall-clock
// time so slow tick scheduling never accumulates drift.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thanhkt275/RMS-BE-sub001/internal/broadcast"
	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

const defaultTickPeriod = time.Second

var (
	ErrRemainingExceedsDuration = errors.New("remaining exceeds duration")
	ErrNoActiveTimer            = errors.New("no active timer")
)

// activeTimer is one scheduled tick task. The cancel handle, not a flag, is
// what stops delivery, so rapid start/start calls cannot leave two tasks
// racing.
type activeTimer struct {
	cancel     context.CancelFunc
	fieldID    string
	durationMs int64
	startedAt  time.Time // anchor: now - (duration - remaining)
}

// Engine holds at most one activeTimer per tournament id. Starting a timer is
// destructive to the previous one, never additive.
type Engine struct {
	emit       broadcast.Broadcaster
	tickPeriod time.Duration
	now        func() time.Time

	mu     sync.Mutex
	timers map[string]*activeTimer
}

func NewEngine(emit broadcast.Broadcaster) *Engine {
	return &Engine{
		emit:       emit,
		tickPeriod: defaultTickPeriod,
		now:        time.Now,
		timers:     make(map[string]*activeTimer),
	}
}

// Start replaces any timer for the tournament and begins ticking. remainingMs
// below durationMs resumes mid-countdown from the correct point; remainingMs
// above durationMs is rejected.
func (e *Engine) Start(tournamentID, fieldID string, durationMs, remainingMs int64) error {
	if remainingMs > durationMs {
		return ErrRemainingExceedsDuration
	}

	ctx, cancel := context.WithCancel(context.Background())
	at := &activeTimer{
		cancel:     cancel,
		fieldID:    fieldID,
		durationMs: durationMs,
		startedAt:  e.now().Add(-time.Duration(durationMs-remainingMs) * time.Millisecond),
	}

	e.mu.Lock()
	if prev, ok := e.timers[tournamentID]; ok {
		prev.cancel()
	}
	e.timers[tournamentID] = at
	e.mu.Unlock()

	e.emit.Emit(events.TimerUpdate, events.Scope{TournamentID: tournamentID, FieldID: fieldID}, events.TimerTick{
		TournamentID: tournamentID,
		FieldID:      fieldID,
		DurationMs:   durationMs,
		RemainingMs:  remainingMs,
		IsRunning:    true,
		StartedAt:    at.startedAt.UnixMilli(),
	})

	go e.tickLoop(ctx, tournamentID, at)

	zap.L().Debug("timer.start",
		zap.String("tournament", tournamentID),
		zap.String("field", fieldID),
		zap.Int64("duration_ms", durationMs),
		zap.Int64("remaining_ms", remainingMs))
	return nil
}

// Pause cancels the tick task and freezes the caller-supplied remaining value
// as authoritative until the next Start. Pausing an idle tournament is
// rejected rather than broadcast.
func (e *Engine) Pause(tournamentID, fieldID string, remainingMs int64) error {
	e.mu.Lock()
	at, ok := e.timers[tournamentID]
	if !ok {
		e.mu.Unlock()
		return ErrNoActiveTimer
	}
	delete(e.timers, tournamentID)
	e.mu.Unlock()
	at.cancel()

	e.emit.Emit(events.TimerUpdate, events.Scope{TournamentID: tournamentID, FieldID: fieldID}, events.TimerTick{
		TournamentID: tournamentID,
		FieldID:      fieldID,
		DurationMs:   at.durationMs,
		RemainingMs:  remainingMs,
		IsRunning:    false,
		PausedAt:     e.now().UnixMilli(),
	})

	zap.L().Debug("timer.pause",
		zap.String("tournament", tournamentID),
		zap.Int64("remaining_ms", remainingMs))
	return nil
}

// Reset cancels any tick task and broadcasts the full duration as fresh,
// stopped state. Resetting an idle tournament still broadcasts, so operator
// consoles converge on the same value.
func (e *Engine) Reset(tournamentID, fieldID string, durationMs int64) {
	e.mu.Lock()
	if at, ok := e.timers[tournamentID]; ok {
		delete(e.timers, tournamentID)
		at.cancel()
	}
	e.mu.Unlock()

	e.emit.Emit(events.TimerUpdate, events.Scope{TournamentID: tournamentID, FieldID: fieldID}, events.TimerTick{
		TournamentID: tournamentID,
		FieldID:      fieldID,
		DurationMs:   durationMs,
		RemainingMs:  durationMs,
		IsRunning:    false,
	})

	zap.L().Debug("timer.reset",
		zap.String("tournament", tournamentID),
		zap.Int64("duration_ms", durationMs))
}

// Shutdown cancels every tick task. Used on process exit.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, at := range e.timers {
		at.cancel()
		delete(e.timers, id)
	}
}

func (e *Engine) tickLoop(ctx context.Context, tournamentID string, at *activeTimer) {
	ticker := time.NewTicker(e.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Recompute from the anchor, never "minus one second per tick".
			remainingMs := at.durationMs - e.now().Sub(at.startedAt).Milliseconds()
			expired := remainingMs <= 0
			if expired {
				remainingMs = 0
			}

			tick := events.TimerTick{
				TournamentID: tournamentID,
				FieldID:      at.fieldID,
				DurationMs:   at.durationMs,
				RemainingMs:  remainingMs,
				IsRunning:    !expired,
				StartedAt:    at.startedAt.UnixMilli(),
			}
			e.emit.Emit(events.TimerUpdate, events.Scope{TournamentID: tournamentID, FieldID: at.fieldID}, tick)

			if expired {
				e.clear(tournamentID, at)
				return
			}
		}
	}
}

// clear removes the entry only if it still owns it; a newer Start may already
// have replaced it.
func (e *Engine) clear(tournamentID string, at *activeTimer) {
	e.mu.Lock()
	if e.timers[tournamentID] == at {
		delete(e.timers, tournamentID)
	}
	e.mu.Unlock()
	at.cancel()
}

// active reports whether a tick task exists for the tournament. Test hook.
func (e *Engine) active(tournamentID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.timers[tournamentID]
	return ok
}
