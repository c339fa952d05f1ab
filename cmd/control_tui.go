// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	maxLogEntries    = 100
	visibleLogLines  = 8
	zoneListWidth    = 30
	controlTickDelay = time.Second
)

// Editable zone fields, keyed by the key that starts editing them
const (
	editNone   = ""
	editVolume = "v"
	editSource = "s"
	editGroup  = "g"
	editBass   = "b"
	editTreble = "t"
)

var editFieldNames = map[string]string{
	editVolume: "Volume (dB)",
	editSource: "Source",
	editGroup:  "Group",
	editBass:   "Bass",
	editTreble: "Treble",
}

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("12"))
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// zoneItem adapts a cached zone to the list
type zoneItem struct {
	zone essentia.Zone
}

func (z zoneItem) Title() string { return fmt.Sprintf("Zone %d", z.zone.ID) }
func (z zoneItem) Description() string {
	if !z.zone.On() {
		return "OFF"
	}
	if z.zone.Mute {
		return fmt.Sprintf("ON  src %d  muted", z.zone.Source)
	}
	return fmt.Sprintf("ON  src %d  %d dB", z.zone.Source, z.zone.Volume)
}
func (z zoneItem) FilterValue() string { return strconv.Itoa(z.zone.ID) }

// eventLogEntry is one line of the event log
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	driver   *essentia.Driver
	connInfo string

	zones    [essentia.NumZones]essentia.Zone
	zoneList list.Model

	input   textinput.Model
	editing string

	eventLog []eventLogEntry

	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type zoneUpdateMsg struct {
	zone   essentia.Zone
	report essentia.Report
}

type discardedLineMsg struct {
	line string
	err  error
}

type connectionLostMsg struct {
	err error
}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(d *essentia.Driver, connInfo string) controlModel {
	ti := textinput.New()
	ti.CharLimit = 4
	ti.Width = 8

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	zoneList := list.New([]list.Item{}, delegate, zoneListWidth, essentia.NumZones*3)
	zoneList.Title = "Zones"
	zoneList.SetShowStatusBar(false)
	zoneList.SetShowHelp(false)
	zoneList.SetFilteringEnabled(false)

	m := controlModel{
		driver:   d,
		connInfo: connInfo,
		zones:    d.Zones(),
		zoneList: zoneList,
		input:    ti,
		eventLog: make([]eventLogEntry, 0),
		width:    80,
		height:   24,
	}
	m.updateZoneList()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(controlTickDelay, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case controlTickMsg:
		m.driver.Statistics().CalculateRates()
		return m, controlTickCmd()

	case zoneUpdateMsg:
		m.applyZoneUpdate(msg.zone)

	case discardedLineMsg:
		m.addLogEntry(fmt.Sprintf("Discarded %q: %v", msg.line, msg.err), true)

	case connectionLostMsg:
		m.connectionLost = true
		m.addLogEntry(fmt.Sprintf("Connection lost (%v) - reconnecting...", msg.err), true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected - refreshing zones", false)
	}

	return m, nil
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.editing != editNone {
		return m.handleEditKey(msg)
	}

	id := m.selectedZone()
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return tea.Quit

	case "up", "k", "down", "j":
		var cmd tea.Cmd
		m.zoneList, cmd = m.zoneList.Update(msg)
		return cmd

	case "p":
		if m.zones[id-1].On() {
			m.queue(fmt.Sprintf("Zone %d: power off", id), m.driver.PowerOff(id))
		} else {
			m.queue(fmt.Sprintf("Zone %d: power on", id), m.driver.PowerOn(id))
		}

	case "m":
		if m.zones[id-1].Mute {
			m.queue(fmt.Sprintf("Zone %d: unmute", id), m.driver.MuteOff(id))
		} else {
			m.queue(fmt.Sprintf("Zone %d: mute", id), m.driver.MuteOn(id))
		}

	case "+", "=":
		vol := m.zones[id-1].Volume + 1
		m.queue(fmt.Sprintf("Zone %d: volume %d dB", id, vol), m.driver.SetVolume(id, float64(vol)))

	case "-":
		vol := m.zones[id-1].Volume - 1
		m.queue(fmt.Sprintf("Zone %d: volume %d dB", id, vol), m.driver.SetVolume(id, float64(vol)))

	case "a":
		if m.driver.AllOn() {
			m.driver.SetAllOff()
			m.queue("All zones: power off", nil)
		} else {
			m.driver.SetAllOn()
			m.queue("All zones: power on", nil)
		}

	case "r":
		m.queue(fmt.Sprintf("Zone %d: refresh", id), m.driver.RefreshZone(id))

	case "R":
		m.driver.Refresh()
		m.queue("All zones: refresh", nil)

	case editVolume, editSource, editGroup, editBass, editTreble:
		m.startEditing(msg.String(), id)
		return textinput.Blink
	}

	return nil
}

func (m *controlModel) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit

	case "esc":
		m.stopEditing()
		return nil

	case "enter":
		m.submitEdit()
		m.stopEditing()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *controlModel) startEditing(field string, id int) {
	z := m.zones[id-1]
	current := map[string]int{
		editVolume: z.Volume,
		editSource: z.Source,
		editGroup:  z.Group,
		editBass:   z.Bass,
		editTreble: z.Treble,
	}[field]

	m.editing = field
	m.input.SetValue("")
	m.input.Placeholder = strconv.Itoa(current)
	m.input.Focus()
}

func (m *controlModel) stopEditing() {
	m.editing = editNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *controlModel) submitEdit() {
	id := m.selectedZone()
	text := m.input.Value()
	if text == "" {
		text = m.input.Placeholder
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("Invalid value: %s", text), true)
		return
	}

	var setter func(id int, v float64) error
	switch m.editing {
	case editVolume:
		setter = m.driver.SetVolume
	case editSource:
		setter = m.driver.SetSource
	case editGroup:
		setter = m.driver.SetGroup
	case editBass:
		setter = m.driver.SetBass
	case editTreble:
		setter = m.driver.SetTreble
	default:
		return
	}
	m.queue(fmt.Sprintf("Zone %d: %s %s", id, strings.ToLower(editFieldNames[m.editing]), text), setter(id, v))
}

// queue logs the outcome of a setter call
func (m *controlModel) queue(description string, err error) {
	if err != nil {
		m.addLogEntry(fmt.Sprintf("%s rejected: %v", description, err), true)
		return
	}
	if m.connectionLost {
		m.addLogEntry(description+" (queued, connection lost)", true)
		return
	}
	m.addLogEntry(description, false)
}

func (m *controlModel) applyZoneUpdate(z essentia.Zone) {
	if !essentia.ValidZone(z.ID) {
		return
	}
	old := m.zones[z.ID-1]
	m.zones[z.ID-1] = z
	m.updateZoneList()

	if old.Power != z.Power {
		m.addLogEntry(fmt.Sprintf("Zone %d: %s -> %s", z.ID, old.Power, z.Power), false)
	}
	if old.Mute != z.Mute {
		state := "unmuted"
		if z.Mute {
			state = "muted"
		}
		m.addLogEntry(fmt.Sprintf("Zone %d: %s", z.ID, state), false)
	}
}

func (m *controlModel) selectedZone() int {
	return m.zoneList.Index() + 1
}

func (m *controlModel) updateZoneList() {
	items := make([]list.Item, len(m.zones))
	for i, z := range m.zones {
		items[i] = zoneItem{zone: z}
	}
	m.zoneList.SetItems(items)
}

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("ESSENTIA CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit p=power m=mute +/-=vol v/s/g/b/t=set r/R=refresh a=all", connStatus)))
	s.WriteString("\n\n")

	listStyle := focusedBoxStyle.Width(zoneListWidth)
	zonePanel := listStyle.Render(m.zoneList.View())

	rightWidth := m.width - zoneListWidth - 6
	if rightWidth < 20 {
		rightWidth = 20
	}
	controlPanel := boxStyle.Width(rightWidth).Render(m.renderZonePanel())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, zonePanel, " ", controlPanel))
	s.WriteString("\n\n")
	s.WriteString(m.renderStatisticsBar())
	s.WriteString("\n\n")
	s.WriteString(m.renderEventLog())

	return s.String()
}

func (m controlModel) renderZonePanel() string {
	var s strings.Builder
	z := m.zones[m.selectedZone()-1]

	row := func(label, value string) {
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render(fmt.Sprintf("%-8s", label)), statsValueStyle.Render(value)))
	}

	s.WriteString(statsLabelStyle.Render(fmt.Sprintf("ZONE %d", z.ID)))
	s.WriteString("\n\n")

	power := z.Power.String()
	if !z.On() {
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render(fmt.Sprintf("%-8s", "Power:")), warningStyle.Render(power)))
	} else {
		row("Power:", power)
	}
	vol := fmt.Sprintf("%d dB", z.Volume)
	if z.Mute {
		vol += " (muted)"
	}
	row("Volume:", vol)
	row("Source:", strconv.Itoa(z.Source))
	row("Group:", strconv.Itoa(z.Group))
	row("Bass:", fmt.Sprintf("%+d", z.Bass))
	row("Treble:", fmt.Sprintf("%+d", z.Treble))
	row("VRST:", strconv.Itoa(z.Vrst))

	if m.editing != editNone {
		s.WriteString("\n")
		s.WriteString(statsLabelStyle.Render(editFieldNames[m.editing] + ": "))
		s.WriteString(m.input.View())
		s.WriteString(headerStyle.Render("  enter=send esc=cancel"))
	}

	return s.String()
}

func (m controlModel) renderStatisticsBar() string {
	c := m.driver.Statistics().Snapshot()

	var discardPercent float64
	if c.TotalLines > 0 {
		discardPercent = float64(c.Discarded()) * 100.0 / float64(c.TotalLines)
	}
	discarded := statsValueStyle.Render("0.0%")
	if discardPercent > 0 {
		discarded = errorStyle.Render(fmt.Sprintf("%.1f%%", discardPercent))
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Lines:"), statsValueStyle.Render(fmt.Sprintf("%d", c.TotalLines)),
		statsLabelStyle.Render("Discarded:"), discarded,
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f line/s", c.LineRate)),
		statsLabelStyle.Render("Sent:"), statsValueStyle.Render(fmt.Sprintf("%d", c.CommandsSent)),
		statsLabelStyle.Render("Pending:"), statsValueStyle.Render(fmt.Sprintf("%d", m.driver.QueueLen())),
	)
	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog() string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
		return boxStyle.Width(m.width - 4).Render(s.String())
	}

	start := len(m.eventLog) - visibleLogLines
	if start < 0 {
		start = 0
	}
	for _, entry := range m.eventLog[start:] {
		icon := "i"
		style := warningStyle
		if entry.isError {
			icon = "x"
			style = errorStyle
		}
		s.WriteString(fmt.Sprintf("%s %s %s\n",
			headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
			style.Render(icon),
			entry.message))
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}
