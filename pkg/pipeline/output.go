// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"context"
	"io"
	"log/slog"
)

// OutputWriter is the single consumer of the output queue. Every message
// is written in full before the next is taken, so output from different
// producers never interleaves mid-message.
type OutputWriter struct {
	output *Queue[string]
	w      io.Writer
	stats  *Statistics
	logger *slog.Logger
}

// Run writes queued messages until ctx is done. Write errors are logged
// and counted; the loop carries on with the next message.
func (o *OutputWriter) Run(ctx context.Context) error {
	for {
		msg, err := o.output.Receive(ctx)
		if err != nil {
			return err
		}

		if _, err := io.WriteString(o.w, msg); err != nil {
			o.stats.WriteErrors.Add(1)
			o.logger.Error("output write failed", "error", err, "bytes", len(msg))
			continue
		}
		o.stats.OutputMessages.Add(1)
	}
}

// MenuPresenter queues the menu, then waits for the next completed line
// before queueing it again.
type MenuPresenter struct {
	output *Queue[string]
	signal *Notifier
	menu   string
}

// Run presents the menu until ctx is done.
func (m *MenuPresenter) Run(ctx context.Context) error {
	for {
		if err := m.output.Send(ctx, m.menu); err != nil {
			return err
		}
		if err := m.signal.Wait(ctx); err != nil {
			return err
		}
	}
}
