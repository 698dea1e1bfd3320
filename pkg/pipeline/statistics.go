// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Thermoquad/beacon/pkg/clock"
)

// Statistics tracks pipeline counters. Counters are updated from several
// goroutines (including the receive path), so every field is atomic.
type Statistics struct {
	clock     clock.Clock
	startTime time.Time

	BytesReceived      atomic.Uint64
	LinesReceived      atomic.Uint64
	Overflows          atomic.Uint64
	CommandsBuilt      atomic.Uint64
	CommandsDispatched atomic.Uint64
	InvalidCommands    atomic.Uint64
	ToggleErrors       atomic.Uint64
	OutputMessages     atomic.Uint64
	WriteErrors        atomic.Uint64

	perCode [maxHandledCommand + 1]atomic.Uint64
}

// StatisticsSnapshot is a point-in-time copy of Statistics with rates.
type StatisticsSnapshot struct {
	Elapsed time.Duration

	BytesReceived      uint64
	LinesReceived      uint64
	Overflows          uint64
	CommandsBuilt      uint64
	CommandsDispatched uint64
	InvalidCommands    uint64
	ToggleErrors       uint64
	OutputMessages     uint64
	WriteErrors        uint64
	PerCode            [maxHandledCommand + 1]uint64

	// Rates (calculated)
	CommandRate float64 // commands/sec
	ErrorRate   float64 // errors/sec
}

// NewStatistics creates a statistics tracker starting now.
func NewStatistics(clk clock.Clock) *Statistics {
	if clk == nil {
		clk = clock.Real()
	}
	return &Statistics{clock: clk, startTime: clk.Now()}
}

// recordDispatch counts one dispatched command.
func (s *Statistics) recordDispatch(code int) {
	s.CommandsDispatched.Add(1)
	if code >= minHandledCommand && code <= maxHandledCommand {
		s.perCode[code].Add(1)
	} else {
		s.InvalidCommands.Add(1)
	}
}

// Snapshot copies the counters and calculates rates.
func (s *Statistics) Snapshot() StatisticsSnapshot {
	snap := StatisticsSnapshot{
		Elapsed:            s.clock.Now().Sub(s.startTime),
		BytesReceived:      s.BytesReceived.Load(),
		LinesReceived:      s.LinesReceived.Load(),
		Overflows:          s.Overflows.Load(),
		CommandsBuilt:      s.CommandsBuilt.Load(),
		CommandsDispatched: s.CommandsDispatched.Load(),
		InvalidCommands:    s.InvalidCommands.Load(),
		ToggleErrors:       s.ToggleErrors.Load(),
		OutputMessages:     s.OutputMessages.Load(),
		WriteErrors:        s.WriteErrors.Load(),
	}
	for code := range s.perCode {
		snap.PerCode[code] = s.perCode[code].Load()
	}

	if elapsed := snap.Elapsed.Seconds(); elapsed > 0 {
		snap.CommandRate = float64(snap.CommandsDispatched) / elapsed
		errorCount := snap.Overflows + snap.InvalidCommands + snap.ToggleErrors + snap.WriteErrors
		snap.ErrorRate = float64(errorCount) / elapsed
	}
	return snap
}

// String returns a formatted statistics summary.
func (s StatisticsSnapshot) String() string {
	var invalidPercent float64
	if s.CommandsDispatched > 0 {
		invalidPercent = float64(s.InvalidCommands) * 100.0 / float64(s.CommandsDispatched)
	}

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", s.Elapsed.Seconds())
	result += fmt.Sprintf("Bytes Received:  %8d\n", s.BytesReceived)
	result += fmt.Sprintf("Lines Received:  %8d\n", s.LinesReceived)
	result += fmt.Sprintf("Commands:        %8d\n", s.CommandsDispatched)

	for code := minHandledCommand; code <= maxHandledCommand; code++ {
		if s.PerCode[code] > 0 {
			result += fmt.Sprintf("  %-18s %5d\n", CommandName(code)+":", s.PerCode[code])
		}
	}
	if s.InvalidCommands > 0 {
		result += fmt.Sprintf("Invalid Commands:%8d (%.1f%%)\n", s.InvalidCommands, invalidPercent)
	}
	if s.Overflows > 0 {
		result += fmt.Sprintf("Line Overflows:  %8d\n", s.Overflows)
	}
	if s.ToggleErrors > 0 {
		result += fmt.Sprintf("Toggle Errors:   %8d\n", s.ToggleErrors)
	}
	result += fmt.Sprintf("Output Messages: %8d\n", s.OutputMessages)
	if s.WriteErrors > 0 {
		result += fmt.Sprintf("Write Errors:    %8d\n", s.WriteErrors)
	}

	result += fmt.Sprintf("Command Rate:    %8.1f cmds/sec\n", s.CommandRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}
