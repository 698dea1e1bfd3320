// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/Thermoquad/beacon/pkg/clock"
)

const testPeriod = 500 * time.Millisecond

func newTestToggle() (*ToggleTimer, *clock.FakeClock, *countingActuator) {
	clk := clock.Fake(epoch)
	act := &countingActuator{}
	return NewToggleTimer(clk, testPeriod, act, discardLogger()), clk, act
}

func TestToggleTimerTogglesEveryPeriod(t *testing.T) {
	toggle, clk, act := newTestToggle()

	toggle.Start()
	if toggle.State() != ToggleRunning {
		t.Fatalf("State() = %v, want RUNNING", toggle.State())
	}

	for i := 1; i <= 4; i++ {
		clk.Advance(testPeriod)
		if _, toggles, _ := act.counts(); toggles != i {
			t.Errorf("after %d periods toggles = %d, want %d", i, toggles, i)
		}
	}

	if toggle.Ticks() != 4 {
		t.Errorf("Ticks() = %d, want 4", toggle.Ticks())
	}
	if act.on {
		t.Error("LED on after an even number of toggles")
	}
}

func TestToggleTimerPartialPeriod(t *testing.T) {
	toggle, clk, act := newTestToggle()
	toggle.Start()

	clk.Advance(testPeriod - time.Millisecond)
	if _, toggles, _ := act.counts(); toggles != 0 {
		t.Errorf("toggles before first period = %d, want 0", toggles)
	}
	clk.Advance(time.Millisecond)
	if _, toggles, _ := act.counts(); toggles != 1 {
		t.Errorf("toggles at first period = %d, want 1", toggles)
	}
}

func TestToggleTimerStartIsIdempotent(t *testing.T) {
	toggle, clk, act := newTestToggle()

	toggle.Start()
	toggle.Start()
	toggle.Start()

	if toggle.created != 1 {
		t.Errorf("timer created %d times, want 1", toggle.created)
	}
	if got := clk.PendingCount(); got != 1 {
		t.Errorf("PendingCount() = %d, want 1", got)
	}

	clk.Advance(testPeriod)
	if _, toggles, _ := act.counts(); toggles != 1 {
		t.Errorf("toggles = %d, want 1", toggles)
	}
}

func TestToggleTimerStop(t *testing.T) {
	toggle, clk, act := newTestToggle()

	toggle.Start()
	clk.Advance(testPeriod)
	if err := toggle.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if toggle.State() != ToggleStopped {
		t.Errorf("State() = %v, want STOPPED", toggle.State())
	}

	clk.Advance(10 * testPeriod)
	if _, toggles, _ := act.counts(); toggles != 1 {
		t.Errorf("toggles after stop = %d, want 1", toggles)
	}

	// Stopping again is a no-op.
	if err := toggle.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}

	// Restart reuses the timer.
	toggle.Start()
	clk.Advance(testPeriod)
	if _, toggles, _ := act.counts(); toggles != 2 {
		t.Errorf("toggles after restart = %d, want 2", toggles)
	}
	if toggle.created != 1 {
		t.Errorf("timer created %d times, want 1", toggle.created)
	}
}

func TestToggleTimerIgnoresCallbackFromPreviousSchedule(t *testing.T) {
	toggle, clk, act := newTestToggle()

	toggle.Start()
	clk.Advance(testPeriod - time.Millisecond)
	if err := toggle.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	toggle.Start()

	// A callback of the old schedule that was already running when the
	// restart took the lock.
	toggle.fire()
	if _, toggles, _ := act.counts(); toggles != 0 {
		t.Fatalf("toggles after old callback = %d, want 0", toggles)
	}
	if got := clk.PendingCount(); got != 1 {
		t.Errorf("PendingCount() = %d, want 1", got)
	}

	// The restarted schedule keeps its full first period.
	clk.Advance(testPeriod - time.Millisecond)
	if _, toggles, _ := act.counts(); toggles != 0 {
		t.Errorf("toggles before restarted period = %d, want 0", toggles)
	}
	clk.Advance(time.Millisecond)
	if _, toggles, _ := act.counts(); toggles != 1 {
		t.Errorf("toggles at restarted period = %d, want 1", toggles)
	}
}

func TestToggleTimerStopBeforeStart(t *testing.T) {
	toggle, _, act := newTestToggle()

	if err := toggle.Stop(); !errors.Is(err, ErrToggleNotStarted) {
		t.Errorf("Stop() error = %v, want ErrToggleNotStarted", err)
	}
	if toggle.State() != ToggleUncreated {
		t.Errorf("State() = %v, want UNCREATED", toggle.State())
	}
	if sets, toggles, _ := act.counts(); sets != 0 || toggles != 0 {
		t.Errorf("actuator touched: sets=%d toggles=%d", sets, toggles)
	}
}

func TestToggleStateString(t *testing.T) {
	tests := []struct {
		state ToggleState
		want  string
	}{
		{ToggleUncreated, "UNCREATED"},
		{ToggleRunning, "RUNNING"},
		{ToggleStopped, "STOPPED"},
		{ToggleState(9), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ToggleState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
