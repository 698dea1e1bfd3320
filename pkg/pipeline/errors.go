// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import "errors"

var (
	// ErrLineOverflow marks a line that outgrew the receive buffer. The
	// bytes past capacity were dropped.
	ErrLineOverflow = errors.New("line exceeds receive buffer")

	// ErrUnknownCommand is reported for codes without a handler.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrToggleNotStarted is returned when stopping a toggle timer that
	// was never started.
	ErrToggleNotStarted = errors.New("toggle timer not started")

	// ErrPoolExhausted is returned when every Command record is live.
	ErrPoolExhausted = errors.New("command pool exhausted")

	// ErrDoubleRelease is returned when a Command that is not live is
	// released.
	ErrDoubleRelease = errors.New("command released twice")
)
