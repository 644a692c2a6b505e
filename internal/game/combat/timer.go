package combat

import (
	"sync"
	"time"
)

// TurnTimer fires a callback once a session has been idle for a fixed
// duration. Every Touch restarts the countdown. It is safe for concurrent use.
type TurnTimer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	onFire   func()
	// gen invalidates callbacks from timers replaced by Touch or Stop.
	gen     uint64
	stopped bool
}

// NewTurnTimer creates and starts a timer that calls onFire after duration of
// inactivity. onFire is called in a separate goroutine.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: onFire will be called unless Touch or Stop is called first.
func NewTurnTimer(duration time.Duration, onFire func()) *TurnTimer {
	t := &TurnTimer{duration: duration, onFire: onFire}
	t.mu.Lock()
	t.arm()
	t.mu.Unlock()
	return t
}

// arm starts a fresh countdown. The caller must hold t.mu.
func (t *TurnTimer) arm() {
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.duration, func() {
		t.mu.Lock()
		live := !t.stopped && gen == t.gen
		t.mu.Unlock()
		if live {
			t.onFire()
		}
	})
}

// Touch restarts the countdown. It has no effect after Stop.
func (t *TurnTimer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.timer.Stop()
	t.arm()
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not start after Stop returns.
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.gen++
	t.timer.Stop()
}
