// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package clock provides an injectable time source for the beacon pipeline.
//
// Components that read the wall clock or schedule callbacks take a Clock
// instead of calling the time package directly. Production code passes
// Real(); tests pass Fake() and move time forward with Advance, which fires
// due callbacks synchronously in the calling goroutine.
//
//	c := clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
//	timer := c.AfterFunc(500*time.Millisecond, blink)
//	c.Advance(500 * time.Millisecond) // blink runs here
package clock
