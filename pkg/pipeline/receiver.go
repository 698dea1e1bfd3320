// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Receiver is the byte-level entry point of the pipeline. ReceiveByte is
// safe to call from any goroutine but is normally driven by a single
// reader goroutine standing in for the receive interrupt.
type Receiver struct {
	buffer        *LineBuffer
	commandSignal *Notifier
	menuSignal    *Notifier
	stats         *Statistics
}

// NewReceiver creates a Receiver that wakes commandSignal and menuSignal
// on every completed line.
func NewReceiver(buffer *LineBuffer, commandSignal, menuSignal *Notifier, stats *Statistics) *Receiver {
	return &Receiver{
		buffer:        buffer,
		commandSignal: commandSignal,
		menuSignal:    menuSignal,
		stats:         stats,
	}
}

// ReceiveByte handles one received byte. Bounded work, no allocation, no
// blocking.
func (r *Receiver) ReceiveByte(b byte) {
	r.stats.BytesReceived.Add(1)
	if !r.buffer.Append(b & 0xFF) {
		return
	}
	r.stats.LinesReceived.Add(1)
	r.commandSignal.Post()
	r.menuSignal.Post()
}

// Write feeds p through ReceiveByte. It lets a Receiver sit at the end of
// an io.Copy.
func (r *Receiver) Write(p []byte) (int, error) {
	for _, b := range p {
		r.ReceiveByte(b)
	}
	return len(p), nil
}

// Consume reads from src and feeds every byte to ReceiveByte until src
// fails or ctx is done. io.EOF is reported as a nil error.
func (r *Receiver) Consume(ctx context.Context, src io.Reader) error {
	buf := make([]byte, 128)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := src.Read(buf)
		for i := 0; i < n; i++ {
			r.ReceiveByte(buf[i])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
	}
}
