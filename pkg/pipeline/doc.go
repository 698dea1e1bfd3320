// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package pipeline implements the beacon command pipeline.
//
// Bytes arrive one at a time through Receiver.ReceiveByte, which plays the
// role of the UART receive interrupt: it never blocks, never allocates and
// does a bounded amount of work per byte. A carriage return completes a
// line and wakes two goroutines:
//
//	Receiver ──signal──> CommandBuilder ──CommandQueue──> Dispatcher ──> Actuator
//	    │                                                     │
//	    └─────signal──> MenuPresenter ──┐                     │
//	                                    v                     v
//	                               OutputQueue ──> OutputWriter ──> io.Writer
//
// A ToggleTimer blinks the actuator on its own schedule once the dispatcher
// starts it. Pipeline wires all of these together and runs them until its
// context is cancelled.
package pipeline
