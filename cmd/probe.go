// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var probeTimeout int

// menuPrompt ends every menu a beacon presents.
var menuPrompt = []byte("Type your option here : ")

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test a connection by waiting for a beacon menu",
	Long: `Wait for a beacon option menu on the connection until timeout.

This command connects to a serial port or WebSocket, sends a bare CR to
provoke a menu, and waits for the menu prompt. An empty line is answered
with "Invalid command received" followed by the menu, so the LED is never
touched.

Exit codes:
  0 - Menu received before timeout
  1 - Timeout reached without seeing a menu
  2 - Connection error`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 5, "Timeout in seconds to wait for a menu")
}

func runProbe(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Beacon - Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for menu...\n\n")

	menuChan := make(chan int, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		var seen []byte
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			seen = append(seen, buf[:n]...)
			if bytes.Contains(seen, menuPrompt) {
				menuChan <- len(seen)
				return
			}
			if err != nil {
				errChan <- err
				return
			}
		}
	}()

	start := time.Now()
	if _, err := conn.Write([]byte{'\r'}); err != nil {
		fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
		os.Exit(2)
	}

	select {
	case n := <-menuChan:
		fmt.Printf("SUCCESS: Menu received\n")
		fmt.Printf("  Bytes: %d\n", n)
		fmt.Printf("  Round trip: %v\n", time.Since(start).Round(time.Millisecond))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No menu received within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
