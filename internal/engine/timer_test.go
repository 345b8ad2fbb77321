package engine

import (
	"testing"
)

func TestTimerExpiresExactlyOnce(t *testing.T) {
	fired := 0
	timer := NewTimerController(2, func() { fired++ })
	timer.Start()

	timer.Tick()
	if timer.State() != TimerRunning || timer.Remaining() != 1 {
		t.Fatalf("after 1 tick: state=%s remaining=%d, want RUNNING/1", timer.State(), timer.Remaining())
	}

	timer.Tick()
	if timer.State() != TimerExpired {
		t.Fatalf("after 2 ticks: state=%s, want EXPIRED", timer.State())
	}
	if fired != 1 {
		t.Fatalf("onExpire fired %d times, want exactly 1", fired)
	}

	// Stray ticks after expiry must be inert.
	timer.Tick()
	timer.Tick()
	if fired != 1 {
		t.Errorf("onExpire fired %d times after stray ticks, want 1", fired)
	}
	if timer.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0 (never negative)", timer.Remaining())
	}
}

func TestTimerNoTimerModeStaysIdle(t *testing.T) {
	fired := false
	timer := NewTimerController(0, func() { fired = true })

	timer.Start()
	if timer.State() != TimerIdle {
		t.Errorf("state = %s, want IDLE under No Timer mode", timer.State())
	}

	timer.Tick()
	if fired {
		t.Error("No Timer mode must never expire")
	}
	if timer.Timed() {
		t.Error("Timed() should be false for zero duration")
	}
}

func TestTimerStopIsIdempotent(t *testing.T) {
	timer := NewTimerController(10, nil)
	timer.Start()

	timer.Stop()
	timer.Stop() // second stop must not panic or double-close

	if timer.State() != TimerIdle {
		t.Errorf("state = %s, want IDLE after stop", timer.State())
	}
	if timer.Tick() {
		t.Error("tick after stop must be a no-op")
	}
}

func TestTimerStopAfterExpiry(t *testing.T) {
	timer := NewTimerController(1, nil)
	timer.Start()
	timer.Tick()

	timer.Stop()
	if timer.State() != TimerIdle {
		t.Errorf("state = %s, want IDLE after stopping an expired timer", timer.State())
	}
}

func TestTimerElapsed(t *testing.T) {
	timer := NewTimerController(5, nil)
	timer.Start()

	timer.Tick()
	timer.Tick()

	if got := timer.Elapsed(); got != 2 {
		t.Errorf("elapsed = %d, want 2", got)
	}
	if got := timer.Remaining(); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}
}
