// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Thermoquad/beacon/pkg/journal"
	"github.com/spf13/cobra"
)

var journalOutcome string

var journalCmd = &cobra.Command{
	Use:   "journal <file>",
	Short: "Display a dispatch journal in human-readable format",
	Long: `Decode and display a CBOR dispatch journal written by 'beacon run --journal'.
Journals ending in .zst are decompressed on the fly.

Each record shows the dispatch time, sequence number, command name and code,
outcome, arguments and the reply that was queued for the operator.

Use --outcome to show only OK, INVALID or REJECTED records.`,
	Args: cobra.ExactArgs(1),
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().StringVar(&journalOutcome, "outcome", "", "Only show records with this outcome (ok, invalid, rejected)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	reader, err := journal.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	shown, total, err := printJournal(os.Stdout, reader, journalOutcome)
	if err != nil {
		return err
	}

	fmt.Printf("\n%d of %d records shown\n", shown, total)
	return nil
}

// printJournal writes every record from reader matching outcome (empty
// matches all) to w.
func printJournal(w io.Writer, reader *journal.Reader, outcome string) (shown, total int, err error) {
	for {
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return shown, total, nil
		}
		if err != nil {
			return shown, total, err
		}

		total++
		if outcome != "" && !strings.EqualFold(entry.Outcome.String(), outcome) {
			continue
		}
		shown++
		fmt.Fprint(w, journal.FormatEntry(entry))
	}
}
