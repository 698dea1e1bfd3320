// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package journal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriterAssignsSequence(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	ts := time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC).UnixMilli()
	entries := []Entry{
		{TimestampMs: ts, Code: 1, Name: "LED_ON", Outcome: OutcomeOK},
		{TimestampMs: ts + 10, Code: 5, Name: "LED_READ_STATUS", Outcome: OutcomeOK, Reply: "\r\nLED status is: 1\r\n"},
		{TimestampMs: ts + 20, Code: 'x' - '0', Name: "UNKNOWN", Args: []byte("yz"), Outcome: OutcomeInvalid},
	}
	for _, e := range entries {
		if err := w.Record(e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	r := NewReader(&buf)
	for i, want := range entries {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next() #%d error = %v", i, err)
		}
		if got.Seq != uint64(i+1) {
			t.Errorf("entry %d Seq = %d, want %d", i, got.Seq, i+1)
		}
		if got.Code != want.Code || got.Name != want.Name || got.Outcome != want.Outcome {
			t.Errorf("entry %d = %+v, want %+v", i, got, want)
		}
		if !bytes.Equal(got.Args, want.Args) {
			t.Errorf("entry %d Args = %q, want %q", i, got.Args, want.Args)
		}
		if got.Reply != want.Reply {
			t.Errorf("entry %d Reply = %q, want %q", i, got.Reply, want.Reply)
		}
		if !got.Time().Equal(time.UnixMilli(want.TimestampMs)) {
			t.Errorf("entry %d Time() = %v, want %v", i, got.Time(), time.UnixMilli(want.TimestampMs))
		}
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last entry error = %v, want io.EOF", err)
	}
}

func TestReaderTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Record(Entry{Code: 2, Name: "LED_OFF"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-1]
	_, err := NewReader(bytes.NewReader(truncated)).Next()
	if err == nil {
		t.Fatal("Next() on truncated record returned no error")
	}
	if errors.Is(err, io.EOF) {
		t.Errorf("Next() on truncated record = io.EOF, want decode error")
	}
}

func TestCreateAppends(t *testing.T) {
	for _, name := range []string{"beacon.journal", "beacon.journal" + CompressedSuffix} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			for i := 0; i < 2; i++ {
				w, err := Create(path)
				if err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				if err := w.Record(Entry{Code: 3, Name: "LED_TOGGLE", Args: []byte(strings.Repeat("a", i))}); err != nil {
					t.Fatalf("Record() error = %v", err)
				}
				if err := w.Close(); err != nil {
					t.Fatalf("Close() error = %v", err)
				}
			}

			r, err := Open(path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer r.Close()

			count := 0
			for {
				e, err := r.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("Next() error = %v", err)
				}
				if len(e.Args) != count {
					t.Errorf("entry %d Args = %q, want %d bytes", count, e.Args, count)
				}
				count++
			}
			if count != 2 {
				t.Errorf("entries read = %d, want 2", count)
			}
		})
	}
}

func TestCompressedJournalIsNotRawCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beacon"+CompressedSuffix)
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	w.Record(Entry{Code: 1, Name: "LED_ON"})

	// Records are flushed as they are written, before Close.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || !bytes.Equal(data[:4], []byte{0x28, 0xb5, 0x2f, 0xfd}) {
		t.Errorf("compressed journal starts with % x, want zstd magic", data[:min(len(data), 4)])
	}
	w.Close()
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Open(missing) error = nil, want error")
	}
}

func TestFormatEntry(t *testing.T) {
	e := Entry{
		Seq:         7,
		TimestampMs: time.Date(2025, 3, 9, 14, 5, 7, 0, time.Local).UnixMilli(),
		Code:        6,
		Name:        "RTC_PRINT_DATETIME",
		Outcome:     OutcomeOK,
		Reply:       "\r\nTime: 14:05:07 \r\n Date : 09-03-25 \r\n",
	}

	got := FormatEntry(e)
	for _, want := range []string{
		"[2025-03-09 14:05:07.000]",
		"#7 RTC_PRINT_DATETIME (code=6) OK",
		"Reply: Time: 14:05:07 Date : 09-03-25",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatEntry() = %q, missing %q", got, want)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeOK, "OK"},
		{OutcomeInvalid, "INVALID"},
		{OutcomeRejected, "REJECTED"},
		{Outcome(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}
