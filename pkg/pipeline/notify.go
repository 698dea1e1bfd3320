// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import "context"

// Notifier is a single-slot wake signal. Post never blocks and may be
// called from the receive path; posts made while a wake is already
// pending coalesce into it.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates a Notifier with no pending wake.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Post marks a wake as pending. Returns false if one already was.
func (n *Notifier) Post() bool {
	select {
	case n.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Wait blocks until a wake is pending or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	select {
	case <-n.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
