// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pipeline

// Command is one parsed input line. A Command is owned by exactly one
// party at a time: the builder that got it from the CommandPool, then the
// CommandQueue, then the dispatcher that puts it back.
type Command struct {
	Code  int
	Args  [ArgsSize]byte
	NArgs int // Valid bytes in Args
}

// Arguments returns the valid argument bytes.
func (c *Command) Arguments() []byte {
	return c.Args[:c.NArgs]
}

func (c *Command) reset() {
	*c = Command{}
}

// ArgumentParser fills args from the bytes that follow the code byte and
// returns how many argument bytes are valid.
type ArgumentParser func(raw []byte, args *[ArgsSize]byte) int

// CopyArguments is the default ArgumentParser. It keeps the raw bytes,
// truncated to ArgsSize.
func CopyArguments(raw []byte, args *[ArgsSize]byte) int {
	return copy(args[:], raw)
}

// ParseCode derives the command code from the first byte of a line: the
// byte value minus '0'. Non-digit bytes give codes outside 0-9 that the
// dispatcher treats as unknown. An empty line gives CodeInvalid.
func ParseCode(line []byte) int {
	if len(line) == 0 {
		return CodeInvalid
	}
	return int(line[0]) - '0'
}

// CommandName returns the human-readable name for a command code.
func CommandName(code int) string {
	switch code {
	case CodeExit:
		return "EXIT_APP"
	case CodeLEDOn:
		return "LED_ON"
	case CodeLEDOff:
		return "LED_OFF"
	case CodeToggleStart:
		return "LED_TOGGLE"
	case CodeToggleStop:
		return "LED_TOGGLE_OFF"
	case CodeLEDStatus:
		return "LED_READ_STATUS"
	case CodeReadClock:
		return "RTC_PRINT_DATETIME"
	default:
		return "UNKNOWN"
	}
}
