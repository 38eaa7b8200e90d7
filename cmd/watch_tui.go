// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The openknob authors

package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openknob/knobctl/pkg/knob"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	dialRows = 17 // character rows of the dial canvas
	dialCols = 31 // character columns (2:1 cell aspect compensation)

	sliderWidth = 30
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// watchLogEntry is one line of the TUI event log
type watchLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// paramEdit describes one interactively editable firmware parameter
type paramEdit struct {
	label string
	build func(value string) (string, error)
}

// paramEdits maps the trigger key to its edit prompt. The keys mirror the
// firmware's single-letter command set.
var paramEdits = map[string]paramEdit{
	"d": {"Number of detents", func(v string) (string, error) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("invalid detent count: %q", v)
		}
		return knob.SetNumDetents(n), nil
	}},
	"p": {"Detent strength", func(v string) (string, error) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("invalid strength: %q", v)
		}
		return knob.SetDetentStrength(f), nil
	}},
	"r": {"Steps per revolution", func(v string) (string, error) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("invalid step count: %q", v)
		}
		return knob.SetStepsPerRevolution(n), nil
	}},
	"n": {"Min angle (rad)", func(v string) (string, error) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("invalid angle: %q", v)
		}
		return knob.SetMinAngle(f), nil
	}},
	"x": {"Max angle (rad)", func(v string) (string, error) {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("invalid angle: %q", v)
		}
		return knob.SetMaxAngle(f), nil
	}},
}

// watchModel is the Bubble Tea model for the watch TUI
type watchModel struct {
	// Session (for sending commands; reads arrive as messages)
	sess     *session
	connInfo string

	// Knob state
	position    int
	hasPosition bool
	cfg         knob.Config
	hasConfig   bool

	// Parameter editing
	editKey    string // "" when not editing
	paramInput textinput.Model

	// Event log
	eventLog      []watchLogEntry
	maxLogEntries int

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialWatchModel(sess *session, connInfo string) watchModel {
	ti := textinput.New()
	ti.CharLimit = 12
	ti.Width = 14

	return watchModel{
		sess:           sess,
		connInfo:       connInfo,
		paramInput:     ti,
		eventLog:       make([]watchLogEntry, 0),
		maxLogEntries:  100,
		width:          80,
		height:         24,
		connectionLost: true, // until the first sessionConnectedMsg
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m watchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case positionMsg:
		m.position = int(msg)
		m.hasPosition = true

	case snapshotMsg:
		m.cfg = knob.Config(msg)
		m.hasConfig = true
		name := m.cfg.Name
		if name == "" {
			name = "(unnamed)"
		}
		m.addLogEntry(fmt.Sprintf("Settings received: %s", name), false)

	case sessionConnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.info
		m.addLogEntry(fmt.Sprintf("Connected: %s", msg.info), false)

	case sessionLostMsg:
		m.connectionLost = true
		m.addLogEntry(fmt.Sprintf("Connection lost (%v) - reconnecting...", msg.err), true)

	case sessionLogMsg:
		m.addLogEntry(msg.text, msg.isError)
	}

	return m, nil
}

func (m *watchModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Parameter prompt swallows everything except enter/esc
	if m.editKey != "" {
		switch msg.String() {
		case "esc":
			m.editKey = ""
			m.paramInput.Blur()
			return m, nil
		case "enter":
			return m.applyEdit()
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.paramInput, cmd = m.paramInput.Update(msg)
		return m, cmd
	}

	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "0", "1", "2", "3", "4", "5":
		n, _ := strconv.Atoi(key)
		command, err := knob.SelectPreset(n)
		if err != nil {
			m.addLogEntry(err.Error(), true)
			return m, nil
		}
		m.sendCommand(command, fmt.Sprintf("Preset %d (%s)", n, knob.PresetLabels[n]))
		return m, nil

	case "s":
		m.sendCommand(knob.RequestSettings(), "Settings refresh")
		return m, nil

	case "B":
		if !m.hasConfig {
			m.addLogEntry("No settings yet - press s to request them first", true)
			return m, nil
		}
		m.sendCommand(knob.SetBounded(!m.cfg.Bounded), "Bounded toggle")
		m.sendCommand(knob.RequestSettings(), "")
		return m, nil
	}

	if _, ok := paramEdits[key]; ok {
		m.editKey = key
		m.paramInput.SetValue("")
		m.paramInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m *watchModel) applyEdit() (tea.Model, tea.Cmd) {
	edit := paramEdits[m.editKey]
	value := strings.TrimSpace(m.paramInput.Value())
	m.editKey = ""
	m.paramInput.Blur()

	command, err := edit.build(value)
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	m.sendCommand(command, fmt.Sprintf("%s = %s", edit.label, value))
	m.sendCommand(knob.RequestSettings(), "")
	return m, nil
}

// sendCommand sends a firmware command through the session and logs the
// outcome. An empty note suppresses the success log line.
func (m *watchModel) sendCommand(command, note string) {
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", true)
		return
	}
	if err := m.sess.send(command); err != nil {
		m.addLogEntry(fmt.Sprintf("Failed to send %q: %v", command, err), true)
		return
	}
	if note != "" {
		m.addLogEntry(fmt.Sprintf("Sent %q (%s)", command, note), false)
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

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

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	s.WriteString(titleStyle.Render("KNOBCTL WATCH"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	helpText := "q=quit 0-5=preset s=refresh B=bounds d/p/r/n/x=edit"
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | %s", connStatus, helpText)))
	s.WriteString("\n\n")

	// Main layout: visual panel | parameter panel
	visualPanel := boxStyle.Render(m.renderVisual(labelStyle, valueStyle, headerStyle))
	paramPanel := boxStyle.Render(m.renderParams(labelStyle, valueStyle, headerStyle))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, visualPanel, " ", paramPanel))
	s.WriteString("\n")

	// Parameter prompt
	if m.editKey != "" {
		edit := paramEdits[m.editKey]
		s.WriteString(fmt.Sprintf("%s %s  %s\n",
			labelStyle.Render(edit.label+":"),
			m.paramInput.View(),
			headerStyle.Render("enter=apply esc=cancel")))
	}
	s.WriteString("\n")

	// Event log
	s.WriteString(m.renderEventLog(labelStyle, warningStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m watchModel) renderVisual(labelStyle, valueStyle, headerStyle lipgloss.Style) string {
	if !m.hasConfig {
		return headerStyle.Render("Waiting for settings...") +
			"\n\n" + m.renderPositionLine(labelStyle, valueStyle)
	}

	var s strings.Builder
	if knob.VisualFor(m.cfg) == knob.VisualSlider {
		s.WriteString(m.renderSlider(valueStyle))
	} else {
		frame := knob.Compute(m.position, m.cfg)
		s.WriteString(renderDial(frame))
	}
	s.WriteString("\n")
	s.WriteString(m.renderPositionLine(labelStyle, valueStyle))
	return s.String()
}

func (m watchModel) renderPositionLine(labelStyle, valueStyle lipgloss.Style) string {
	pos := "--"
	if m.hasPosition {
		pos = strconv.Itoa(m.position)
	}
	return fmt.Sprintf("%s %s", labelStyle.Render("Step:"), valueStyle.Render(pos))
}

// renderSlider draws a horizontal gauge for volume-style modes. The travel
// spans one revolution, or 0-100 when the step count is unknown.
func (m watchModel) renderSlider(valueStyle lipgloss.Style) string {
	span := m.cfg.StepsPerRevolution
	if span <= 0 {
		span = 100
	}

	frac := float64(m.position) / float64(span)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(math.Round(frac * float64(sliderWidth)))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", sliderWidth-filled)
	return fmt.Sprintf("\n[%s]\n%s\n", bar,
		valueStyle.Render(fmt.Sprintf("%d / %d", m.position, span)))
}

func (m watchModel) renderParams(labelStyle, valueStyle, headerStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("PARAMETERS"))
	s.WriteString("\n")

	if !m.hasConfig {
		s.WriteString(headerStyle.Render("(none yet)"))
		s.WriteString("\n\n")
	} else {
		name := m.cfg.Name
		if name == "" {
			name = "(unnamed)"
		}
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Mode:"), valueStyle.Render(name)))
		if m.cfg.Bounded {
			s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Bounds:"),
				valueStyle.Render(fmt.Sprintf("%.3f to %.3f rad", m.cfg.MinAngle, m.cfg.MaxAngle))))
		} else {
			s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Bounds:"), valueStyle.Render("unbounded")))
		}
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Detents:"),
			valueStyle.Render(strconv.Itoa(m.cfg.NumDetents))))
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Strength:"),
			valueStyle.Render(fmt.Sprintf("%.1f", m.cfg.DetentStrength))))
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Steps/rev:"),
			valueStyle.Render(strconv.Itoa(m.cfg.StepsPerRevolution))))
		s.WriteString("\n")
	}

	s.WriteString(labelStyle.Render("PRESETS"))
	s.WriteString("\n")
	for i, label := range knob.PresetLabels {
		s.WriteString(headerStyle.Render(fmt.Sprintf("%d %s", i, label)))
		s.WriteString("\n")
	}

	return s.String()
}

func (m watchModel) renderEventLog(labelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 8
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}

	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(timestamp),
				style.Render(icon),
				entry.message))
		}
	}

	width := m.width - 4
	if width < 40 {
		width = 40
	}
	return boxStyle.Width(width).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Dial Rendering
//////////////////////////////////////////////////////////////

// renderDial rasterizes a dial frame onto a character canvas. Horizontal
// distances are doubled to compensate for the 2:1 cell aspect of terminal
// fonts. Screen angles come straight from the frame: y grows downward and
// -pi/2 points at 12 o'clock.
func renderDial(frame knob.Frame) string {
	grid := make([][]rune, dialRows)
	for y := range grid {
		grid[y] = make([]rune, dialCols)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	cy := dialRows / 2
	cx := dialCols / 2
	radius := float64(dialRows/2 - 1)

	plot := func(angle, dist float64, ch rune) {
		x := cx + int(math.Round(dist*radius*2*math.Cos(angle)))
		y := cy + int(math.Round(dist*radius*math.Sin(angle)))
		if y >= 0 && y < dialRows && x >= 0 && x < dialCols {
			grid[y][x] = ch
		}
	}

	// Face outline
	for deg := 0; deg < 360; deg += 3 {
		plot(float64(deg)*math.Pi/180, 1.0, '·')
	}

	// Valid travel range overlays the outline. Arc angles use the drawing
	// convention of a y-up canvas, so the sign flips for screen rows.
	if frame.Arc != nil {
		samples := int(math.Abs(frame.Arc.ExtentDeg))/2 + 1
		for i := 0; i <= samples; i++ {
			deg := frame.Arc.StartDeg + frame.Arc.ExtentDeg*float64(i)/float64(samples)
			plot(-deg*math.Pi/180, 1.0, '=')
		}
	}

	// Detent / step ticks
	for _, t := range frame.Ticks {
		if t.Major {
			plot(t.Angle, 0.9, '+')
			plot(t.Angle, 0.74, '+')
		} else {
			plot(t.Angle, 0.9, '.')
		}
	}

	// Needle
	for f := 0.12; f <= 0.62; f += 0.06 {
		plot(frame.Needle, f, '*')
	}
	grid[cy][cx] = 'o'

	var s strings.Builder
	for y := range grid {
		s.WriteString(strings.TrimRight(string(grid[y]), " "))
		s.WriteString("\n")
	}
	if frame.StepLabel > 0 {
		s.WriteString(fmt.Sprintf("%*s\n", cx+6, fmt.Sprintf("(%d steps/rev)", frame.StepLabel)))
	}
	return s.String()
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *watchModel) addLogEntry(message string, isError bool) {
	entry := watchLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}
