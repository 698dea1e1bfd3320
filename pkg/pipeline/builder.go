// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// CommandBuilder turns completed lines into Commands and queues them for
// the dispatcher.
type CommandBuilder struct {
	buffer    *LineBuffer
	signal    *Notifier
	pool      *CommandPool
	commands  *Queue[*Command]
	parseArgs ArgumentParser
	stats     *Statistics
	logger    *slog.Logger
}

// Run waits for completed lines until ctx is done or the pool runs dry.
// Wake-ups coalesce, so every wake drains all waiting lines.
func (b *CommandBuilder) Run(ctx context.Context) error {
	for {
		if err := b.signal.Wait(ctx); err != nil {
			return err
		}

		for {
			line, ok := b.buffer.TakeLine()
			if !ok {
				break
			}
			if err := b.queue(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (b *CommandBuilder) queue(ctx context.Context, line Line) error {
	cmd, err := b.Build(line)
	if err != nil {
		return err
	}

	// Ownership moves to the queue here. On failure it stays with us.
	if err := b.commands.Send(ctx, cmd); err != nil {
		if perr := b.pool.Put(cmd); perr != nil {
			b.logger.Error("failed to release unsent command", "code", cmd.Code, "error", perr)
			return fmt.Errorf("failed to release command: %w", perr)
		}
		return err
	}
	return nil
}

// Build allocates a Command from the pool and fills it from line.
func (b *CommandBuilder) Build(line Line) (*Command, error) {
	if line.Overflowed {
		b.stats.Overflows.Add(1)
		b.logger.Warn("line truncated", "error", ErrLineOverflow, "capacity", b.buffer.Capacity())
	}

	cmd, err := b.pool.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate command: %w", err)
	}

	cmd.Code = ParseCode(line.Data)
	if len(line.Data) > 1 {
		cmd.NArgs = b.parseArgs(line.Data[1:], &cmd.Args)
	}
	b.stats.CommandsBuilt.Add(1)
	b.logger.Debug("command built", "code", cmd.Code, "name", CommandName(cmd.Code))
	return cmd, nil
}
