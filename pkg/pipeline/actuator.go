// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"sync"
	"time"
)

// Actuator is the binary output driven by the pipeline.
type Actuator interface {
	Set(on bool)
	Toggle()
	State() bool
}

// Calendar supplies the date and time reported by the read-clock command.
// clock.Clock satisfies it.
type Calendar interface {
	Now() time.Time
}

// LED is an in-memory Actuator. The optional onChange hook runs after
// every state change, outside the LED's lock.
type LED struct {
	mu       sync.Mutex
	on       bool
	onChange func(on bool)
}

// NewLED creates an LED that starts off.
func NewLED(onChange func(on bool)) *LED {
	return &LED{onChange: onChange}
}

// Set drives the LED on or off.
func (l *LED) Set(on bool) {
	l.mu.Lock()
	l.on = on
	l.mu.Unlock()
	l.changed(on)
}

// Toggle inverts the LED.
func (l *LED) Toggle() {
	l.mu.Lock()
	l.on = !l.on
	on := l.on
	l.mu.Unlock()
	l.changed(on)
}

// State reports whether the LED is on.
func (l *LED) State() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

func (l *LED) changed(on bool) {
	if l.onChange != nil {
		l.onChange(on)
	}
}
