// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Thermoquad/beacon/pkg/clock"
)

// Options carries the collaborators a Pipeline drives.
type Options struct {
	// Output receives every message, one Write per message. Required.
	Output io.Writer

	// Actuator is the LED. Defaults to an in-memory LED.
	Actuator Actuator

	// Clock drives the toggle timer, the read-clock command and
	// statistics. Defaults to clock.Real().
	Clock clock.Clock

	// Journal, if set, receives one entry per dispatched command.
	Journal Recorder

	// ArgumentParser overrides CopyArguments.
	ArgumentParser ArgumentParser

	Logger *slog.Logger
}

// Pipeline owns every piece of shared state: the line buffer, both
// queues, the command pool and the toggle timer.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger

	buffer     *LineBuffer
	receiver   *Receiver
	builder    *CommandBuilder
	dispatcher *Dispatcher
	writer     *OutputWriter
	menu       *MenuPresenter
	toggle     *ToggleTimer

	commands *Queue[*Command]
	output   *Queue[string]
	pool     *CommandPool
	stats    *Statistics
	actuator Actuator
}

// New builds a Pipeline. cfg is completed with defaults and validated.
func New(cfg Config, opts Options) (*Pipeline, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Output == nil {
		return nil, errors.New("pipeline output writer is required")
	}
	if opts.Actuator == nil {
		opts.Actuator = NewLED(nil)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.ArgumentParser == nil {
		opts.ArgumentParser = CopyArguments
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	p := &Pipeline{
		cfg:      cfg,
		logger:   opts.Logger,
		commands: NewQueue[*Command]("commands", cfg.CommandQueueSize),
		output:   NewQueue[string]("output", cfg.OutputQueueSize),
		pool:     NewCommandPool(cfg.PoolSize),
		stats:    NewStatistics(opts.Clock),
		actuator: opts.Actuator,
	}

	buffer := NewLineBuffer(cfg.LineCapacity, cfg.CommandQueueSize)
	commandSignal := NewNotifier()
	menuSignal := NewNotifier()

	p.buffer = buffer
	p.receiver = NewReceiver(buffer, commandSignal, menuSignal, p.stats)
	p.toggle = NewToggleTimer(opts.Clock, cfg.TogglePeriod, opts.Actuator, opts.Logger.With("actor", "toggle"))
	p.builder = &CommandBuilder{
		buffer:    buffer,
		signal:    commandSignal,
		pool:      p.pool,
		commands:  p.commands,
		parseArgs: opts.ArgumentParser,
		stats:     p.stats,
		logger:    opts.Logger.With("actor", "builder"),
	}
	p.dispatcher = newDispatcher(&Dispatcher{
		commands: p.commands,
		output:   p.output,
		pool:     p.pool,
		actuator: opts.Actuator,
		toggle:   p.toggle,
		calendar: opts.Clock,
		journal:  opts.Journal,
		stats:    p.stats,
		logger:   opts.Logger.With("actor", "dispatcher"),
	})
	p.writer = &OutputWriter{
		output: p.output,
		w:      opts.Output,
		stats:  p.stats,
		logger: opts.Logger.With("actor", "writer"),
	}
	p.menu = &MenuPresenter{
		output: p.output,
		signal: menuSignal,
		menu:   cfg.Menu,
	}
	return p, nil
}

// Receiver returns the byte entry point.
func (p *Pipeline) Receiver() *Receiver { return p.receiver }

// Statistics returns the live counters.
func (p *Pipeline) Statistics() *Statistics { return p.stats }

// MissedLines returns how many completed lines were dropped because the
// builder fell a full command queue behind.
func (p *Pipeline) MissedLines() uint64 { return p.buffer.Missed() }

// Toggle returns the toggle timer.
func (p *Pipeline) Toggle() *ToggleTimer { return p.toggle }

// Actuator returns the driven actuator.
func (p *Pipeline) Actuator() Actuator { return p.actuator }

// Pool returns the command pool.
func (p *Pipeline) Pool() *CommandPool { return p.pool }

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run queues the banner, starts every actor and blocks until ctx is done
// or an actor fails. Cancellation is a clean shutdown and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := p.output.Send(ctx, p.cfg.Banner); err != nil {
		return nil
	}

	actors := []struct {
		name string
		run  func(context.Context) error
	}{
		{"writer", p.writer.Run},
		{"dispatcher", p.dispatcher.Run},
		{"builder", p.builder.Run},
		{"menu", p.menu.Run},
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(actors))
	for _, actor := range actors {
		wg.Add(1)
		go func(name string, run func(context.Context) error) {
			defer wg.Done()
			if err := run(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("actor failed", "actor", name, "error", err)
				errCh <- fmt.Errorf("%s: %w", name, err)
				cancel()
			}
		}(actor.name, actor.run)
	}

	p.logger.Info("pipeline started",
		"line_capacity", p.cfg.LineCapacity,
		"command_queue", p.cfg.CommandQueueSize,
		"output_queue", p.cfg.OutputQueueSize,
		"toggle_period", p.cfg.TogglePeriod)

	<-ctx.Done()
	wg.Wait()

	if p.toggle.State() == ToggleRunning {
		if err := p.toggle.Stop(); err != nil {
			p.logger.Warn("failed to stop toggle timer", "error", err)
		}
	}

	select {
	case err := <-errCh:
		return err
	default:
		p.logger.Info("pipeline stopped")
		return nil
	}
}
