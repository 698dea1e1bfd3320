// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	sendTimeout  int
	sendInterval int
	sendQuiet    bool
)

var sendCmd = &cobra.Command{
	Use:   "send <line> [line...]",
	Short: "Send command lines to a remote beacon and print the replies",
	Long: `Send one or more command lines to a beacon over serial or WebSocket.

Each argument is sent as one CR-terminated line. Replies are printed as they
arrive until no data has been received for --timeout seconds.

Examples:
  beacon send -p /dev/ttyUSB0 5        # read LED status
  beacon send -u ws://bridge/uart 1 5  # LED on, then read status

Exit codes:
  0 - Lines sent and at least one reply received
  1 - No reply before the timeout
  2 - Connection error`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 2, "Seconds to wait for further replies")
	sendCmd.Flags().IntVar(&sendInterval, "interval", 100, "Delay between lines in milliseconds")
	sendCmd.Flags().BoolVarP(&sendQuiet, "quiet", "q", false, "Hide the menu text in replies")
}

func runSend(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Fprintf(os.Stderr, "Connection: %s\n", connInfo)

	// Reader goroutine
	readChan := make(chan []byte, 100)
	errChan := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				readChan <- data
			}
			if err != nil {
				errChan <- err
				return
			}
		}
	}()

	for i, line := range args {
		if _, err := conn.Write(commandLine(line)); err != nil {
			return fmt.Errorf("failed to send %q: %w", line, err)
		}
		if i < len(args)-1 {
			time.Sleep(time.Duration(sendInterval) * time.Millisecond)
		}
	}

	var reply strings.Builder
	timeout := time.Duration(sendTimeout) * time.Second
	timer := time.NewTimer(timeout)
	defer timer.Stop()

wait:
	for {
		select {
		case data := <-readChan:
			reply.Write(data)
			timer.Reset(timeout)
		case err := <-errChan:
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			break wait
		case <-timer.C:
			break wait
		}
	}

	if reply.Len() == 0 {
		fmt.Fprintf(os.Stderr, "No reply within %ds\n", sendTimeout)
		os.Exit(1)
	}
	fmt.Print(formatReply(reply.String(), sendQuiet))
	return nil
}

// commandLine terminates line with CR. A trailing CR or LF the shell
// passed through is replaced, since LF would start the next line.
func commandLine(line string) []byte {
	line = strings.TrimRight(line, "\r\n")
	return []byte(line + "\r")
}

// formatReply converts device line endings for a terminal and optionally
// drops menu lines.
func formatReply(reply string, hideMenu bool) string {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	reply = strings.ReplaceAll(reply, "\r", "\n")
	if !hideMenu {
		return reply
	}

	var out []string
	for _, line := range strings.Split(reply, "\n") {
		if strings.Contains(line, "---->") || strings.HasPrefix(line, "Type your option") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
