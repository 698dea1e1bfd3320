// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/beacon/pkg/journal"
	"github.com/Thermoquad/beacon/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	runConsole       bool
	runJournalPath   string
	runStatsInterval int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the command pipeline on a connection",
	Long: `Run the command pipeline as the device end of a line.

Bytes read from the connection feed the line receiver; the banner, menu and
every reply are written back to the same connection. Each completed line
re-presents the menu.

Commands:
  1  LED on              4  stop blinking
  2  LED off             5  read LED status
  3  start blinking      6  read date and time

Use --console to run against the local terminal instead of a serial port or
WebSocket. Press Ctrl+C to exit; statistics are printed on exit.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runConsole, "console", false, "Use the local terminal (raw mode) as the line")
	runCmd.Flags().StringVar(&runJournalPath, "journal", "", "Append a CBOR dispatch journal to this file (overrides config)")
	runCmd.Flags().IntVar(&runStatsInterval, "stats-interval", 0, "Log statistics every N seconds (0 disables)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runJournalPath != "" {
		cfg.Journal = runJournalPath
	}

	logger := slog.Default()

	var conn Connection
	var connInfo string
	if runConsole {
		connInfo = "Console: stdin/stdout (raw mode)"
		printRunHeader(connInfo, cfg)
		// Logs share the raw terminal with the pipeline output
		if logger, err = newLogger(logLevel, rawTerminalWriter{w: os.Stderr}); err != nil {
			return err
		}
		slog.SetDefault(logger)
		conn, err = OpenConsoleConnection()
	} else {
		conn, connInfo, err = OpenConnection()
		if err == nil {
			printRunHeader(connInfo, cfg)
		}
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	led := pipeline.NewLED(func(on bool) {
		logger.Debug("led changed", "on", on)
	})
	opts := pipeline.Options{
		Output:   conn,
		Actuator: led,
		Logger:   logger,
	}

	if cfg.Journal != "" {
		jw, err := journal.Create(cfg.Journal)
		if err != nil {
			return err
		}
		defer jw.Close()
		opts.Journal = jw
	}

	p, err := pipeline.New(cfg, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reader goroutine stands in for the receive interrupt
	go func() {
		defer stop()
		if err := p.Receiver().Consume(ctx, conn); err != nil && ctx.Err() == nil {
			logger.Error("connection read failed", "error", err)
			return
		}
		logger.Info("connection closed")
	}()

	if runStatsInterval > 0 {
		go logStatistics(ctx, p.Statistics(), time.Duration(runStatsInterval)*time.Second, logger)
	}

	runErr := p.Run(ctx)

	// Restore the terminal before printing the summary
	conn.Close()
	fmt.Printf("\n%s", p.Statistics().Snapshot())
	if missed := p.MissedLines(); missed > 0 {
		fmt.Printf("Missed lines: %d\n", missed)
	}
	return runErr
}

func printRunHeader(connInfo string, cfg pipeline.Config) {
	fmt.Printf("Beacon - Queue Command Processing\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Toggle period: %v\n", cfg.TogglePeriod)
	if cfg.Journal != "" {
		fmt.Printf("Journal: %s\n", cfg.Journal)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")
}

// logStatistics logs a statistics snapshot every interval until ctx is done.
func logStatistics(ctx context.Context, stats *pipeline.Statistics, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := stats.Snapshot()
			logger.Info("statistics",
				"lines", snap.LinesReceived,
				"commands", snap.CommandsDispatched,
				"invalid", snap.InvalidCommands,
				"overflows", snap.Overflows,
				"write_errors", snap.WriteErrors,
				"cmd_rate", fmt.Sprintf("%.1f", snap.CommandRate))
		}
	}
}
