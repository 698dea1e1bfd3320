// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Thermoquad/beacon/pkg/journal"
	"github.com/Thermoquad/beacon/pkg/pipeline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Interactive TUI running the pipeline against a virtual LED",
	Long: `Run the command pipeline in-process and drive it from a terminal UI.

Type a command line and press Enter to send it followed by CR. The output
pane shows everything the pipeline writes (banner, menu and replies), and the
status panel shows the virtual LED, the blink timer and live statistics.

No connection flags are needed. Press Esc or Ctrl+C to exit.`,
	RunE: runSim,
}

func init() {
	rootCmd.AddCommand(simCmd)
}

// programWriter forwards pipeline output to the TUI, one message per Write.
type programWriter struct {
	p *tea.Program
}

func (w *programWriter) Write(b []byte) (int, error) {
	w.p.Send(simOutputMsg(string(b)))
	return len(b), nil
}

// programLogWriter forwards log records to the TUI event log.
type programLogWriter struct {
	p *tea.Program
}

func (w *programLogWriter) Write(b []byte) (int, error) {
	w.p.Send(simLogMsg(strings.TrimRight(string(b), "\n")))
	return len(b), nil
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}

	output := &programWriter{}
	logs := &programLogWriter{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: level}))

	opts := pipeline.Options{
		Output: output,
		Logger: logger,
	}
	if cfg.Journal != "" {
		jw, err := journal.Create(cfg.Journal)
		if err != nil {
			return err
		}
		defer jw.Close()
		opts.Journal = jw
	}

	pl, err := pipeline.New(cfg, opts)
	if err != nil {
		return err
	}

	m := initialSimModel(pl)
	p := tea.NewProgram(m, tea.WithAltScreen())
	output.p = p
	logs.p = p

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pl.Run(ctx) }()

	// Run TUI
	_, tuiErr := p.Run()

	cancel()
	runErr := <-done

	fmt.Print(pl.Statistics().Snapshot())
	if tuiErr != nil {
		return fmt.Errorf("TUI error: %v", tuiErr)
	}
	return runErr
}
