// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

import "time"

// Line protocol
const (
	Terminator = '\r' // Ends a command line
	ArgsSize   = 10   // Argument bytes carried by a Command
)

// Command codes (first byte of a line minus '0')
const (
	CodeExit          = 0 // Advertised in the menu, no handler
	CodeLEDOn         = 1
	CodeLEDOff        = 2
	CodeToggleStart   = 3
	CodeToggleStop    = 4
	CodeLEDStatus     = 5
	CodeReadClock     = 6
	CodeInvalid       = -1 // Empty line
	minHandledCommand = CodeLEDOn
	maxHandledCommand = CodeReadClock
)

// Defaults
const (
	DefaultLineCapacity     = 20
	DefaultCommandQueueSize = 10
	DefaultOutputQueueSize  = 10
	DefaultTogglePeriod     = 500 * time.Millisecond
)

// DefaultMenu is presented after startup and after every completed line.
const DefaultMenu = "\r\nLED_ON\t\t\t\t\t\t----> 1 " +
	"\r\nLED_OFF\t\t\t\t\t\t----> 2 " +
	"\r\nLED_TOGGLE\t\t\t\t\t----> 3 " +
	"\r\nLED_TOGGLE_OFF\t\t\t\t\t----> 4 " +
	"\r\nLED_READ_STATUS\t\t\t\t\t----> 5 " +
	"\r\nRTC_PRINT_DATETIME\t\t\t\t----> 6 " +
	"\r\nEXIT_APP\t\t\t\t\t----> 0 " +
	"\r\nType your option here : "

// DefaultBanner is written once before the first menu.
const DefaultBanner = "\r\nThis is Queue Command Processing Demo\r\n"

// Replies
const (
	replyStatusFormat     = "\r\nLED status is: %d\r\n"
	replyClockFormat      = "\r\nTime: %02d:%02d:%02d \r\n Date : %02d-%02d-%02d \r\n"
	replyInvalidCommand   = "\r\nInvalid command received\r\n"
	replyToggleNotStarted = "\r\nLED toggle is not running\r\n"
)
