package socketio_utils

import (
	"sync"
	"time"
)

// TimerRegistry tracks one pending timer per room. Scheduling replaces and
// cancels any previous timer for the room, so a manual action always wins
// over the timeout it preempts.
type TimerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: make(map[string]*time.Timer)}
}

func (r *TimerRegistry) Schedule(roomID string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[roomID]; ok {
		t.Stop()
	}
	r.timers[roomID] = time.AfterFunc(d, func() {
		r.mu.Lock()
		delete(r.timers, roomID)
		r.mu.Unlock()
		fn()
	})
}

func (r *TimerRegistry) Cancel(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[roomID]; ok {
		t.Stop()
		delete(r.timers, roomID)
	}
}

// One registry per timing concern: turn timeouts for the turn-based games,
// spin countdowns for roulette tables and per-user disconnect grace
// windows (keyed by user ID instead of room ID).
var (
	TurnTimers       = NewTimerRegistry()
	SpinTimers       = NewTimerRegistry()
	DisconnectTimers = NewTimerRegistry()
)
