// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package journal

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatEntry formats an entry into a human-readable line.
func FormatEntry(e Entry) string {
	timestamp := e.Time().Format("2006-01-02 15:04:05.000")
	result := fmt.Sprintf("[%s] #%d %s (code=%d) %s", timestamp, e.Seq, e.Name, e.Code, e.Outcome)

	if len(e.Args) > 0 {
		result += fmt.Sprintf(" args=%s", strconv.Quote(string(e.Args)))
	}
	if reply := strings.TrimSpace(e.Reply); reply != "" {
		result += fmt.Sprintf("\n  Reply: %s", strings.Join(strings.Fields(reply), " "))
	}
	return result + "\n"
}
