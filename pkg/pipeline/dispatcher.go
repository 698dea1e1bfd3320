// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Thermoquad/beacon/pkg/journal"
)

// Recorder receives one journal entry per dispatched command.
type Recorder interface {
	Record(e journal.Entry) error
}

// handler runs one command and returns the reply to queue, if any. A
// handler error is reported to the operator, never fatal.
type handler func(cmd *Command) (reply string, err error)

// Dispatcher receives Commands, runs their handlers and returns them to
// the pool. It is the only place a Command is released.
type Dispatcher struct {
	commands *Queue[*Command]
	output   *Queue[string]
	pool     *CommandPool
	actuator Actuator
	toggle   *ToggleTimer
	calendar Calendar
	journal  Recorder
	stats    *Statistics
	logger   *slog.Logger

	handlers map[int]handler
}

func newDispatcher(d *Dispatcher) *Dispatcher {
	d.handlers = map[int]handler{
		CodeLEDOn:       d.ledOn,
		CodeLEDOff:      d.ledOff,
		CodeToggleStart: d.toggleStart,
		CodeToggleStop:  d.toggleStop,
		CodeLEDStatus:   d.ledStatus,
		CodeReadClock:   d.readClock,
	}
	return d
}

// Run dispatches commands until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if err := d.processOne(ctx); err != nil {
			return err
		}
	}
}

// processOne receives, dispatches and releases a single command.
func (d *Dispatcher) processOne(ctx context.Context) error {
	cmd, err := d.commands.Receive(ctx)
	if err != nil {
		return err
	}

	dispatchErr := d.dispatch(ctx, cmd)

	if err := d.pool.Put(cmd); err != nil {
		return fmt.Errorf("failed to release command: %w", err)
	}
	return dispatchErr
}

// dispatch runs the handler for cmd and queues its reply.
func (d *Dispatcher) dispatch(ctx context.Context, cmd *Command) error {
	d.stats.recordDispatch(cmd.Code)

	outcome := journal.OutcomeOK
	var reply string

	h, ok := d.handlers[cmd.Code]
	if ok {
		var err error
		reply, err = h(cmd)
		if err != nil {
			outcome = journal.OutcomeRejected
			d.logger.Warn("command rejected", "code", cmd.Code, "name", CommandName(cmd.Code), "error", err)
		}
	} else {
		outcome = journal.OutcomeInvalid
		reply = replyInvalidCommand
		d.logger.Info("invalid command", "code", cmd.Code, "error", ErrUnknownCommand)
	}

	d.record(cmd, outcome, reply)

	if reply == "" {
		return nil
	}
	return d.output.Send(ctx, reply)
}

func (d *Dispatcher) record(cmd *Command, outcome journal.Outcome, reply string) {
	if d.journal == nil {
		return
	}
	e := journal.Entry{
		TimestampMs: d.calendar.Now().UnixMilli(),
		Code:        cmd.Code,
		Name:        CommandName(cmd.Code),
		Args:        append([]byte(nil), cmd.Arguments()...),
		Outcome:     outcome,
		Reply:       reply,
	}
	if err := d.journal.Record(e); err != nil {
		d.logger.Error("journal write failed", "error", err)
	}
}

//////////////////////////////////////////////////////////////
// Handlers
//////////////////////////////////////////////////////////////

func (d *Dispatcher) ledOn(*Command) (string, error) {
	d.actuator.Set(true)
	return "", nil
}

func (d *Dispatcher) ledOff(*Command) (string, error) {
	d.actuator.Set(false)
	return "", nil
}

func (d *Dispatcher) toggleStart(*Command) (string, error) {
	d.toggle.Start()
	return "", nil
}

func (d *Dispatcher) toggleStop(*Command) (string, error) {
	if err := d.toggle.Stop(); err != nil {
		if errors.Is(err, ErrToggleNotStarted) {
			d.stats.ToggleErrors.Add(1)
			return replyToggleNotStarted, err
		}
		return "", err
	}
	return "", nil
}

func (d *Dispatcher) ledStatus(*Command) (string, error) {
	state := 0
	if d.actuator.State() {
		state = 1
	}
	return fmt.Sprintf(replyStatusFormat, state), nil
}

func (d *Dispatcher) readClock(*Command) (string, error) {
	now := d.calendar.Now()
	return fmt.Sprintf(replyClockFormat,
		now.Hour(), now.Minute(), now.Second(),
		now.Day(), int(now.Month()), now.Year()%100), nil
}
