// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Beacon - Queue Command Processing Demo
//
// A line-oriented command processor that drives a single LED and reports
// its status and the time over a serial line, WebSocket or local terminal.

package main

import (
	"os"

	"github.com/Thermoquad/beacon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
