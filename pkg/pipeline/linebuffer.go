// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import "sync"

// Line is a completed input line, terminator excluded.
type Line struct {
	Data       []byte
	Overflowed bool // Bytes past the buffer capacity were dropped
}

// LineBuffer accumulates received bytes until a terminator arrives and
// holds completed lines in a fixed ring until the builder takes them. All
// storage is allocated once; Append never allocates.
//
// The mutex is the critical section shared by the receiving side (Append)
// and the command builder (TakeLine).
type LineBuffer struct {
	mu       sync.Mutex
	buffer   []byte
	cursor   int
	overflow bool

	// Completed lines, oldest at head
	slots []lineSlot
	head  int
	count int

	missed uint64 // Completed lines dropped because the ring was full
}

type lineSlot struct {
	data     []byte
	n        int
	overflow bool
}

// NewLineBuffer creates a buffer holding at most capacity bytes per line
// and up to depth completed lines.
func NewLineBuffer(capacity, depth int) *LineBuffer {
	if capacity <= 0 {
		capacity = DefaultLineCapacity
	}
	if depth <= 0 {
		depth = DefaultCommandQueueSize
	}
	slots := make([]lineSlot, depth)
	for i := range slots {
		slots[i].data = make([]byte, capacity)
	}
	return &LineBuffer{
		buffer: make([]byte, capacity),
		slots:  slots,
	}
}

// Capacity returns the maximum line length.
func (lb *LineBuffer) Capacity() int {
	return len(lb.buffer)
}

// Depth returns how many completed lines can wait for TakeLine.
func (lb *LineBuffer) Depth() int {
	return len(lb.slots)
}

// Append stores one byte. It returns true when b is the terminator, in
// which case the line joins the ring for TakeLine and the cursor returns
// to zero. Bytes that do not fit are dropped and the line is marked as
// overflowed. A line completed while the ring is full is dropped and
// counted in Missed.
func (lb *LineBuffer) Append(b byte) bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if b == Terminator {
		if lb.count == len(lb.slots) {
			lb.missed++
		} else {
			slot := &lb.slots[(lb.head+lb.count)%len(lb.slots)]
			slot.n = copy(slot.data, lb.buffer[:lb.cursor])
			slot.overflow = lb.overflow
			lb.count++
		}
		lb.cursor = 0
		lb.overflow = false
		return true
	}

	if lb.cursor >= len(lb.buffer) {
		lb.overflow = true
		return false
	}
	lb.buffer[lb.cursor] = b
	lb.cursor++
	return false
}

// TakeLine returns a copy of the oldest completed line and frees its slot.
// The second result is false when no completed line is waiting.
func (lb *LineBuffer) TakeLine() (Line, bool) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.count == 0 {
		return Line{}, false
	}
	slot := &lb.slots[lb.head]
	line := Line{
		Data:       append([]byte(nil), slot.data[:slot.n]...),
		Overflowed: slot.overflow,
	}
	lb.head = (lb.head + 1) % len(lb.slots)
	lb.count--
	return line, true
}

// Waiting returns the number of completed lines not yet taken.
func (lb *LineBuffer) Waiting() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.count
}

// Pending returns the number of bytes in the line being received.
func (lb *LineBuffer) Pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.cursor
}

// Missed returns how many completed lines were dropped because the ring
// was full.
func (lb *LineBuffer) Missed() uint64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.missed
}
