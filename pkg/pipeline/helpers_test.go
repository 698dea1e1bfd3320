// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requireReceive reads one value from ch within timeout, or fails the test.
func requireReceive[T any](t *testing.T, ch <-chan T, timeout time.Duration, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, what)
	}
	panic("unreachable")
}

// chanWriter delivers every Write as one string on C.
type chanWriter struct {
	C chan string
}

func newChanWriter() *chanWriter {
	return &chanWriter{C: make(chan string, 100)}
}

func (w *chanWriter) Write(p []byte) (int, error) {
	w.C <- string(p)
	return len(p), nil
}

// countingActuator records every call made on it.
type countingActuator struct {
	mu      sync.Mutex
	on      bool
	sets    int
	toggles int
	reads   int
}

func (a *countingActuator) Set(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.on = on
	a.sets++
}

func (a *countingActuator) Toggle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.on = !a.on
	a.toggles++
}

func (a *countingActuator) State() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	return a.on
}

func (a *countingActuator) counts() (sets, toggles, reads int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sets, a.toggles, a.reads
}

func (a *countingActuator) isOn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.on
}

// reportedLEDState decodes a read-status reply into the LED state it
// reports.
func reportedLEDState(t *testing.T, reply string) bool {
	t.Helper()
	value, ok := strings.CutPrefix(strings.TrimSpace(reply), "LED status is: ")
	if !ok {
		t.Fatalf("reply %q is not a status reply", reply)
	}
	on, err := strconv.ParseBool(value)
	if err != nil {
		t.Fatalf("status reply %q has state %q: %v", reply, value, err)
	}
	return on
}
