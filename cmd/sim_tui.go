// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Thermoquad/beacon/pkg/pipeline"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	simTickInterval    = 100 * time.Millisecond // Fast enough to show the blink
	maxTranscriptLines = 500
	maxSimEvents       = 100
	simReservedLines   = 14 // Header, status box, input and event lines
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

type simEvent struct {
	timestamp time.Time
	message   string
}

// simModel is the Bubble Tea model for the simulator
type simModel struct {
	pl *pipeline.Pipeline

	input  textinput.Model
	output viewport.Model

	transcript []string // Completed output lines
	partial    string   // Output after the last newline
	events     []simEvent

	// Polled pipeline state
	ledOn  bool
	toggle pipeline.ToggleState
	stats  pipeline.StatisticsSnapshot

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type simTickMsg time.Time
type simOutputMsg string
type simLogMsg string

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialSimModel(pl *pipeline.Pipeline) simModel {
	ti := textinput.New()
	ti.Placeholder = "5"
	ti.Prompt = "> "
	ti.CharLimit = pl.Config().LineCapacity
	ti.Width = 30
	ti.Focus()

	return simModel{
		pl:     pl,
		input:  ti,
		output: viewport.New(76, 10),
		events: make([]simEvent, 0),
		width:  80,
		height: 24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m simModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, simTickCmd())
}

func simTickCmd() tea.Cmd {
	return tea.Tick(simTickInterval, func(t time.Time) tea.Msg {
		return simTickMsg(t)
	})
}

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.submit()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = max(msg.Width-4, 20)
		m.output.Height = max(msg.Height-simReservedLines, 5)
		m.refreshOutput()
		return m, nil

	case simTickMsg:
		m.ledOn = m.pl.Actuator().State()
		m.toggle = m.pl.Toggle().State()
		m.stats = m.pl.Statistics().Snapshot()
		return m, simTickCmd()

	case simOutputMsg:
		m.appendOutput(string(msg))
		return m, nil

	case simLogMsg:
		m.addEvent(string(msg))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit feeds the typed line to the receiver, terminated with CR.
func (m *simModel) submit() {
	line := m.input.Value()
	m.pl.Receiver().Write(commandLine(line))
	m.addEvent("sent " + strconv.Quote(line+"\r"))
	m.input.Reset()
}

func (m *simModel) addEvent(message string) {
	m.events = append(m.events, simEvent{timestamp: time.Now(), message: message})

	// Keep only last N entries
	if len(m.events) > maxSimEvents {
		m.events = m.events[len(m.events)-maxSimEvents:]
	}
}

func (m *simModel) appendOutput(s string) {
	lines := strings.Split(m.partial+normalizeOutput(s), "\n")
	m.partial = lines[len(lines)-1]
	m.transcript = append(m.transcript, lines[:len(lines)-1]...)

	if len(m.transcript) > maxTranscriptLines {
		m.transcript = m.transcript[len(m.transcript)-maxTranscriptLines:]
	}
	m.refreshOutput()
}

func (m *simModel) refreshOutput() {
	content := strings.Join(m.transcript, "\n")
	if len(m.transcript) > 0 {
		content += "\n"
	}
	m.output.SetContent(content + m.partial)
	m.output.GotoBottom()
}

// normalizeOutput turns device output into terminal text: CR is dropped
// and tabs are expanded to 8-column stops.
func normalizeOutput(s string) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\r':
		case '\n':
			b.WriteRune(r)
			col = 0
		case '\t':
			pad := 8 - col%8
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m simModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	ledOnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("BEACON - QUEUE COMMAND PROCESSING"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render("Virtual LED | Enter sends the line with CR | PgUp/PgDn scroll | Esc to quit"))
	s.WriteString("\n")

	// Status
	led := headerStyle.Render("○ OFF")
	if m.ledOn {
		led = ledOnStyle.Render("● ON")
	}
	blink := headerStyle.Render(m.toggle.String())
	if m.toggle == pipeline.ToggleRunning {
		blink = valueStyle.Render(fmt.Sprintf("%s (%v)", m.toggle, m.pl.Toggle().Period()))
	}

	errorCount := m.stats.InvalidCommands + m.stats.Overflows + m.stats.ToggleErrors + m.stats.WriteErrors
	errorText := valueStyle.Render("0")
	if errorCount > 0 {
		errorText = errorStyle.Render(fmt.Sprintf("%d", errorCount))
	}

	status := fmt.Sprintf("%s %s   %s %s\n%s %s   %s %s   %s %s",
		labelStyle.Render("LED:"), led,
		labelStyle.Render("Blink:"), blink,
		labelStyle.Render("Lines:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.LinesReceived)),
		labelStyle.Render("Commands:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.CommandsDispatched)),
		labelStyle.Render("Errors:"), errorText,
	)
	s.WriteString(boxStyle.Render(status))
	s.WriteString("\n")

	// Output
	s.WriteString(boxStyle.Render(m.output.View()))
	s.WriteString("\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")

	// Last event
	if n := len(m.events); n > 0 {
		entry := m.events[n-1]
		s.WriteString(headerStyle.Render(fmt.Sprintf("%s %s",
			entry.timestamp.Format("15:04:05.000"), entry.message)))
	}

	return s.String()
}
