// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Thermoquad/beacon/pkg/clock"
)

// ToggleState is the lifecycle state of a ToggleTimer.
type ToggleState int

const (
	ToggleUncreated ToggleState = iota
	ToggleRunning
	ToggleStopped
)

func (s ToggleState) String() string {
	switch s {
	case ToggleUncreated:
		return "UNCREATED"
	case ToggleRunning:
		return "RUNNING"
	case ToggleStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ToggleTimer toggles an Actuator once per period while running. The
// underlying clock timer is created on the first Start and reused by every
// later Start and Stop.
type ToggleTimer struct {
	mu       sync.Mutex
	clock    clock.Clock
	period   time.Duration
	actuator Actuator
	logger   *slog.Logger

	timer   *clock.Timer
	state   ToggleState
	due     time.Time // Earliest time the current schedule may toggle
	created int
	ticks   uint64
}

// NewToggleTimer creates a ToggleTimer in the Uncreated state.
func NewToggleTimer(clk clock.Clock, period time.Duration, actuator Actuator, logger *slog.Logger) *ToggleTimer {
	if period <= 0 {
		period = DefaultTogglePeriod
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ToggleTimer{
		clock:    clk,
		period:   period,
		actuator: actuator,
		logger:   logger,
	}
}

// Start arms the timer. Starting a running timer restarts its period.
func (t *ToggleTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Read before arming so due never falls after the timer deadline.
	t.due = t.clock.Now().Add(t.period)
	if t.timer == nil {
		t.timer = t.clock.AfterFunc(t.period, t.fire)
		t.created++
		t.logger.Debug("toggle timer created", "period", t.period)
	} else {
		t.timer.Reset(t.period)
	}
	t.state = ToggleRunning
}

// Stop disarms the timer. Returns ErrToggleNotStarted if Start was never
// called; stopping a stopped timer is a no-op.
func (t *ToggleTimer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return ErrToggleNotStarted
	}
	t.timer.Stop()
	t.state = ToggleStopped
	return nil
}

// State returns the current lifecycle state.
func (t *ToggleTimer) State() ToggleState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Period returns the toggle period.
func (t *ToggleTimer) Period() time.Duration {
	return t.period
}

// Ticks returns how many times the timer has toggled the actuator.
func (t *ToggleTimer) Ticks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

// fire is the timer callback. It re-arms itself while running. A callback
// from before the last Start can still be blocked on mu when that Start
// re-arms the timer; it arrives ahead of due and is ignored.
func (t *ToggleTimer) fire() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != ToggleRunning {
		return
	}
	now := t.clock.Now()
	if now.Before(t.due) {
		t.logger.Debug("stale toggle callback ignored", "due", t.due)
		return
	}
	t.actuator.Toggle()
	t.ticks++
	t.due = now.Add(t.period)
	t.timer.Reset(t.period)
}
