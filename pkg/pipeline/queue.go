// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import "context"

// Queue is a bounded FIFO between goroutines. Send blocks while the queue
// is full and Receive blocks while it is empty; neither has a timeout
// other than ctx.
type Queue[T any] struct {
	name string
	ch   chan T
}

// NewQueue creates a queue holding at most capacity items.
func NewQueue[T any](name string, capacity int) *Queue[T] {
	return &Queue[T]{name: name, ch: make(chan T, capacity)}
}

// Send appends v, waiting for room if necessary.
func (q *Queue[T]) Send(ctx context.Context, v T) error {
	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive removes and returns the oldest item, waiting if necessary.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Name returns the queue name used in logs.
func (q *Queue[T]) Name() string { return q.name }

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }
