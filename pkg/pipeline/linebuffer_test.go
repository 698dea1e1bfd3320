// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"bytes"
	"testing"
)

func appendAll(lb *LineBuffer, data string) (completed int) {
	for i := 0; i < len(data); i++ {
		if lb.Append(data[i]) {
			completed++
		}
	}
	return completed
}

func TestLineBufferCompletesOnTerminator(t *testing.T) {
	lb := NewLineBuffer(20, 1)

	if n := appendAll(lb, "5ab"); n != 0 {
		t.Fatalf("completed lines = %d before terminator, want 0", n)
	}
	if _, ok := lb.TakeLine(); ok {
		t.Fatal("TakeLine() returned a line before terminator")
	}
	if lb.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3", lb.Pending())
	}

	if !lb.Append('\r') {
		t.Fatal("Append('\\r') = false, want true")
	}
	if lb.Pending() != 0 {
		t.Errorf("Pending() after terminator = %d, want 0", lb.Pending())
	}

	line, ok := lb.TakeLine()
	if !ok {
		t.Fatal("TakeLine() returned no line")
	}
	if string(line.Data) != "5ab" {
		t.Errorf("line = %q, want %q", line.Data, "5ab")
	}
	if line.Overflowed {
		t.Error("line.Overflowed = true, want false")
	}

	if _, ok := lb.TakeLine(); ok {
		t.Error("second TakeLine() returned a line")
	}
}

func TestLineBufferOverflowDropsBytes(t *testing.T) {
	lb := NewLineBuffer(4, 1)

	appendAll(lb, "123456789\r")
	line, ok := lb.TakeLine()
	if !ok {
		t.Fatal("TakeLine() returned no line")
	}
	if string(line.Data) != "1234" {
		t.Errorf("line = %q, want %q", line.Data, "1234")
	}
	if !line.Overflowed {
		t.Error("line.Overflowed = false, want true")
	}

	// The next line starts clean.
	appendAll(lb, "5\r")
	line, ok = lb.TakeLine()
	if !ok {
		t.Fatal("TakeLine() returned no line after overflow")
	}
	if string(line.Data) != "5" || line.Overflowed {
		t.Errorf("line = %q overflowed=%v, want %q overflowed=false", line.Data, line.Overflowed, "5")
	}
}

func TestLineBufferExactCapacityIsNotOverflow(t *testing.T) {
	lb := NewLineBuffer(4, 1)
	appendAll(lb, "1234\r")

	line, _ := lb.TakeLine()
	if string(line.Data) != "1234" || line.Overflowed {
		t.Errorf("line = %q overflowed=%v, want %q overflowed=false", line.Data, line.Overflowed, "1234")
	}
}

func TestLineBufferEmptyLine(t *testing.T) {
	lb := NewLineBuffer(4, 1)
	lb.Append('\r')

	line, ok := lb.TakeLine()
	if !ok {
		t.Fatal("TakeLine() returned no line")
	}
	if len(line.Data) != 0 {
		t.Errorf("line = %q, want empty", line.Data)
	}
}

func TestLineBufferQueuesCompletedLines(t *testing.T) {
	lb := NewLineBuffer(8, 4)

	if n := appendAll(lb, "1\r5\r6ab\r"); n != 3 {
		t.Fatalf("completed lines = %d, want 3", n)
	}
	if lb.Waiting() != 3 {
		t.Errorf("Waiting() = %d, want 3", lb.Waiting())
	}

	for _, want := range []string{"1", "5", "6ab"} {
		line, ok := lb.TakeLine()
		if !ok {
			t.Fatalf("TakeLine() returned no line, want %q", want)
		}
		if string(line.Data) != want {
			t.Errorf("line = %q, want %q", line.Data, want)
		}
	}
	if _, ok := lb.TakeLine(); ok {
		t.Error("TakeLine() returned a line after draining")
	}
	if lb.Missed() != 0 {
		t.Errorf("Missed() = %d, want 0", lb.Missed())
	}
}

func TestLineBufferMissedLines(t *testing.T) {
	lb := NewLineBuffer(8, 2)
	appendAll(lb, "1\r2\r3\r")

	if lb.Missed() != 1 {
		t.Errorf("Missed() = %d, want 1", lb.Missed())
	}
	for _, want := range []string{"1", "2"} {
		line, _ := lb.TakeLine()
		if string(line.Data) != want {
			t.Errorf("line = %q, want %q", line.Data, want)
		}
	}

	// Slots freed by TakeLine are reused.
	appendAll(lb, "4\r")
	line, ok := lb.TakeLine()
	if !ok || string(line.Data) != "4" {
		t.Errorf("TakeLine() = %q, %v, want %q, true", line.Data, ok, "4")
	}
}

func TestLineBufferRingWrapsWithOverflow(t *testing.T) {
	lb := NewLineBuffer(3, 2)

	for round := 0; round < 5; round++ {
		appendAll(lb, "12345\r7\r")

		line, _ := lb.TakeLine()
		if string(line.Data) != "123" || !line.Overflowed {
			t.Fatalf("round %d: line = %q overflowed=%v, want %q overflowed=true", round, line.Data, line.Overflowed, "123")
		}
		line, _ = lb.TakeLine()
		if string(line.Data) != "7" || line.Overflowed {
			t.Fatalf("round %d: line = %q overflowed=%v, want %q overflowed=false", round, line.Data, line.Overflowed, "7")
		}
	}
	if lb.Missed() != 0 {
		t.Errorf("Missed() = %d, want 0", lb.Missed())
	}
}

func TestLineBufferAppendDoesNotAllocate(t *testing.T) {
	lb := NewLineBuffer(8, 4)
	input := []byte("5abc\r")

	allocs := testing.AllocsPerRun(100, func() {
		for _, b := range input {
			lb.Append(b)
		}
		lb.TakeLine()
	})
	// TakeLine copies the line out; Append itself must not allocate.
	if allocs > 1 {
		t.Errorf("allocations per line = %v, want at most 1", allocs)
	}
}

func TestLineBufferTakeLineIsACopy(t *testing.T) {
	lb := NewLineBuffer(8, 1)
	appendAll(lb, "abc\r")
	line, _ := lb.TakeLine()

	appendAll(lb, "xyz\r")
	if string(line.Data) != "abc" {
		t.Errorf("taken line changed to %q after new input", line.Data)
	}
}

func TestLineBufferRandomized(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		capacity := 1 + rng.Intn(32)
		lb := NewLineBuffer(capacity, 1)

		length := rng.Intn(capacity * 3)
		input := make([]byte, length)
		for i := range input {
			b := byte(rng.Intn(256))
			if b == Terminator {
				b = 'x'
			}
			input[i] = b
		}

		for _, b := range input {
			if lb.Append(b) {
				t.Fatalf("round %d: Append(0x%02X) completed a line", round, b)
			}
		}
		if lb.Pending() > capacity {
			t.Fatalf("round %d: Pending() = %d exceeds capacity %d", round, lb.Pending(), capacity)
		}
		lb.Append(Terminator)

		line, ok := lb.TakeLine()
		if !ok {
			t.Fatalf("round %d: TakeLine() returned no line", round)
		}

		wantLen := length
		if wantLen > capacity {
			wantLen = capacity
		}
		if !bytes.Equal(line.Data, input[:wantLen]) {
			t.Fatalf("round %d: line = %x, want %x", round, line.Data, input[:wantLen])
		}
		if line.Overflowed != (length > capacity) {
			t.Fatalf("round %d: Overflowed = %v with length %d capacity %d", round, line.Overflowed, length, capacity)
		}
	}
}
