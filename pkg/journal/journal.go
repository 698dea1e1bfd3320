// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package journal records dispatched commands as a stream of CBOR maps.
//
// Each record is a map with small integer keys so the file stays compact
// on slow storage:
//
//	{0: seq, 1: unix_ms, 2: code, 3: name, 4: args, 5: outcome, 6: reply}
//
// Records are appended one after another with no framing; a Reader decodes
// them in order until io.EOF. A journal whose path ends in ".zst" is written
// as a zstd stream, one frame per writing session, and flushed after every
// record.
package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix selects zstd compression in Create and Open.
const CompressedSuffix = ".zst"

// Outcome describes how the dispatcher handled a command.
type Outcome uint8

const (
	OutcomeOK       Outcome = 0 // Handler ran
	OutcomeInvalid  Outcome = 1 // No handler for the code
	OutcomeRejected Outcome = 2 // Handler refused (e.g. toggle stop before start)
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeInvalid:
		return "INVALID"
	case OutcomeRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Entry is one journal record.
type Entry struct {
	Seq         uint64  `cbor:"0,keyasint"`
	TimestampMs int64   `cbor:"1,keyasint"`
	Code        int     `cbor:"2,keyasint"`
	Name        string  `cbor:"3,keyasint"`
	Args        []byte  `cbor:"4,keyasint,omitempty"`
	Outcome     Outcome `cbor:"5,keyasint"`
	Reply       string  `cbor:"6,keyasint,omitempty"`
}

// Time returns the record timestamp.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.TimestampMs)
}

// Writer appends entries to an underlying stream. It is safe for
// concurrent use.
type Writer struct {
	mu      sync.Mutex
	enc     *cbor.Encoder
	flush   func() error
	closers []io.Closer // Closed in order
	seq     uint64
}

// NewWriter creates a Writer on w. If w is an io.Closer, Close closes it.
func NewWriter(w io.Writer) *Writer {
	jw := &Writer{enc: cbor.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		jw.closers = []io.Closer{c}
	}
	return jw
}

// Create opens path for appending and returns a Writer on it.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if !strings.HasSuffix(path, CompressedSuffix) {
		return NewWriter(f), nil
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start zstd stream for %s: %w", path, err)
	}
	return &Writer{
		enc:     cbor.NewEncoder(zw),
		flush:   zw.Flush,
		closers: []io.Closer{zw, f},
	}, nil
}

// Record assigns the next sequence number to e and appends it.
func (w *Writer) Record(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	e.Seq = w.seq
	if err := w.enc.Encode(e); err != nil {
		return fmt.Errorf("failed to encode journal entry %d: %w", e.Seq, err)
	}
	if w.flush != nil {
		if err := w.flush(); err != nil {
			return fmt.Errorf("failed to flush journal entry %d: %w", e.Seq, err)
		}
	}
	return nil
}

// Close closes the underlying stream if it is closable.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return closeAll(w.closers)
}

// Reader decodes entries written by a Writer.
type Reader struct {
	dec     *cbor.Decoder
	closers []io.Closer
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Open opens the journal at path for reading, decompressing it if the
// path ends in CompressedSuffix.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if !strings.HasSuffix(path, CompressedSuffix) {
		return &Reader{dec: cbor.NewDecoder(f), closers: []io.Closer{f}}, nil
	}

	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read zstd stream %s: %w", path, err)
	}
	rc := zr.IOReadCloser()
	return &Reader{dec: cbor.NewDecoder(rc), closers: []io.Closer{rc, f}}, nil
}

// Close releases the file opened by Open. It is a no-op for readers made
// with NewReader.
func (r *Reader) Close() error {
	return closeAll(r.closers)
}

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Next returns the next entry, or io.EOF after the last one.
func (r *Reader) Next() (Entry, error) {
	var e Entry
	if err := r.dec.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("failed to decode journal entry: %w", err)
	}
	return e, nil
}
