package engine

import (
	"sync"
	"time"
)

// TimerState enumerates countdown states.
type TimerState string

const (
	TimerIdle    TimerState = "IDLE"
	TimerRunning TimerState = "RUNNING"
	TimerExpired TimerState = "EXPIRED"
)

// TimerController is a one-second countdown clock owning its own
// cancellation handle. A zero duration configures "No Timer" mode: the
// controller stays Idle forever, never ticks and never expires.
//
// The onExpire callback fires exactly once, when the remaining time reaches
// zero. The decrement itself cannot fail; whatever the callback does (forced
// submission) handles its own failures.
type TimerController struct {
	mu        sync.Mutex
	state     TimerState
	remaining int
	duration  int
	onExpire  func()
	stop      chan struct{}
}

// NewTimerController creates an Idle controller. onExpire may be nil.
func NewTimerController(durationSeconds int, onExpire func()) *TimerController {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return &TimerController{
		state:     TimerIdle,
		remaining: durationSeconds,
		duration:  durationSeconds,
		onExpire:  onExpire,
	}
}

// Start begins ticking once per second. No-op under "No Timer" mode or when
// already running.
func (t *TimerController) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.duration == 0 || t.state != TimerIdle || t.remaining == 0 {
		return
	}

	t.state = TimerRunning
	t.stop = make(chan struct{})

	go t.run(t.stop)
}

func (t *TimerController) run(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.Tick() {
				return
			}
		}
	}
}

// Tick consumes one elapsed second. It is exported so tests and offline
// drivers can advance the clock deterministically. Returns false once the
// timer is no longer running.
func (t *TimerController) Tick() bool {
	t.mu.Lock()
	if t.state != TimerRunning {
		t.mu.Unlock()
		return false
	}

	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		t.mu.Unlock()
		return true
	}

	// Expiry fires exactly once; the state flip guards re-entry.
	t.state = TimerExpired
	onExpire := t.onExpire
	t.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
	return false
}

// Stop cancels any pending tick and returns the controller to Idle.
// Idempotent: stopping an Idle or Expired controller is a no-op beyond the
// state reset.
func (t *TimerController) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.state = TimerIdle
}

// State returns the current timer state.
func (t *TimerController) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the seconds left on the clock.
func (t *TimerController) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Elapsed returns the seconds consumed so far.
func (t *TimerController) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration - t.remaining
}

// Timed reports whether a countdown is configured at all.
func (t *TimerController) Timed() bool {
	return t.duration > 0
}
