// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusUnitList = iota
	focusActionList
)

// Console action identifiers
const (
	actionReset = iota
	actionHello
	actionStatus
	actionVersion
	actionRegister
	actionDeregister
	actionRaiseAlert
	actionClearAlert
	actionBattery
	actionRssi
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// boardUnit represents one HAN unit on the expansion board
type boardUnit struct {
	number   byte
	name     string
	details  string
	lastSeen time.Time
	seen     bool
}

// Implement list.Item interface
func (u boardUnit) Title() string { return fmt.Sprintf("Unit %d: %s", u.number, u.name) }
func (u boardUnit) Description() string {
	if !u.seen {
		return u.details
	}
	return fmt.Sprintf("%s (last seen %s)", u.details, u.lastSeen.Format("15:04:05"))
}
func (u boardUnit) FilterValue() string { return u.name }

// consoleAction is a provisioning action the operator can run
type consoleAction struct {
	id      int
	name    string
	details string
}

// Implement list.Item interface
func (a consoleAction) Title() string       { return a.name }
func (a consoleAction) Description() string { return a.details }
func (a consoleAction) FilterValue() string { return a.name }

// consoleModel is the Bubble Tea model for the console TUI
type consoleModel struct {
	// Connection manager (for sending commands and reconnection)
	connMgr  *connectionManager
	connInfo string

	// Unit and action lists
	units      []boardUnit
	unitList   list.Model
	actionList list.Model

	// Monitoring
	stats         *cmnd.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	board         *boardStatus

	// UI state
	focusedField   int
	width          int
	height         int
	synchronized   bool
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type consoleTickMsg time.Time

type consoleDataMsg struct {
	message          *cmnd.Message
	decodeErr        error
	validationErrors []cmnd.ValidationError
}

type consoleSyncMsg struct {
	invalidBytes int
}

type consoleBatchMsg struct {
	messages []consoleDataMsg
	syncMsg  *consoleSyncMsg
}

type consoleConnLostMsg struct{}

type consoleReconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

// boardUnits lists the units the starter application exposes
func boardUnits() []boardUnit {
	return []boardUnit{
		{number: 0, name: "Management", details: "Device management and status"},
		{number: 1, name: "Voice Call", details: "ULE voice call endpoint"},
		{number: 2, name: "Smoke Alert", details: "Smoke detector alert unit"},
		{number: cmnd.RawDataUnitNumber, name: "Raw Data", details: "Raw FUN data channel"},
	}
}

func consoleActions() []consoleAction {
	return []consoleAction{
		{actionReset, "Reset board", "Reset and wait for the hello announcement"},
		{actionHello, "Hello", "Ask the board to announce itself"},
		{actionStatus, "Get status", "Read powerup mode and registration"},
		{actionVersion, "Get version", "Read the firmware version"},
		{actionRegister, "Register", "Register with any base in range"},
		{actionDeregister, "Deregister", "Drop the base registration"},
		{actionRaiseAlert, "Raise alert", "Send an alert from the selected unit"},
		{actionClearAlert, "Clear alert", "Clear the alert on the selected unit"},
		{actionBattery, "Measure battery", "Read the battery level"},
		{actionRssi, "Read RSSI", "Read the link signal strength"},
	}
}

func initialConsoleModel(connMgr *connectionManager, connInfo string) consoleModel {
	units := boardUnits()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)

	unitItems := make([]list.Item, len(units))
	for i, u := range units {
		unitItems[i] = u
	}
	unitList := list.New(unitItems, delegate, 30, 12)
	unitList.Title = "Units"
	unitList.SetShowStatusBar(false)
	unitList.SetShowHelp(false)
	unitList.SetFilteringEnabled(false)

	actions := consoleActions()
	actionItems := make([]list.Item, len(actions))
	for i, a := range actions {
		actionItems[i] = a
	}
	actionList := list.New(actionItems, delegate, 40, 12)
	actionList.Title = "Actions"
	actionList.SetShowStatusBar(false)
	actionList.SetShowHelp(false)
	actionList.SetFilteringEnabled(false)

	return consoleModel{
		connMgr:       connMgr,
		connInfo:      connInfo,
		units:         units,
		unitList:      unitList,
		actionList:    actionList,
		stats:         cmnd.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		focusedField:  focusActionList,
		width:         80,
		height:        24,
		synchronized:  false,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m consoleModel) Init() tea.Cmd {
	return consoleTickCmd()
}

func consoleTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return consoleTickMsg(t)
	})
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSizes()

	case consoleTickMsg:
		m.stats.CalculateRates()
		return m, consoleTickCmd()

	case consoleSyncMsg:
		m.synchronized = true
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case consoleBatchMsg:
		if msg.syncMsg != nil {
			m.synchronized = true
			if msg.syncMsg.invalidBytes > 0 {
				m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.syncMsg.invalidBytes), false)
			} else {
				m.addLogEntry("Synchronized", false)
			}
		}
		for _, data := range msg.messages {
			m.processConsoleData(data)
		}

	case consoleConnLostMsg:
		m.connectionLost = true
		m.synchronized = false
		m.addLogEntry("Connection lost - reconnecting...", true)

	case consoleReconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected - resetting board", false)
	}

	// Update child components
	var cmd tea.Cmd
	if m.focusedField == focusUnitList {
		m.unitList, cmd = m.unitList.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.focusedField == focusActionList {
		m.actionList, cmd = m.actionList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *consoleModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focusedField == focusUnitList {
			m.focusedField = focusActionList
		} else {
			m.focusedField = focusUnitList
		}
		return m, nil

	case "enter":
		return m.runSelectedAction()
	}

	// Pass through to focused component
	var cmd tea.Cmd
	if m.focusedField == focusUnitList {
		m.unitList, cmd = m.unitList.Update(msg)
	} else {
		m.actionList, cmd = m.actionList.Update(msg)
	}
	return m, cmd
}

//////////////////////////////////////////////////////////////
// Actions
//////////////////////////////////////////////////////////////

func (m *consoleModel) runSelectedAction() (tea.Model, tea.Cmd) {
	// Don't allow actions while connection is lost
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", true)
		return m, nil
	}

	idx := m.actionList.Index()
	actions := consoleActions()
	if idx < 0 || idx >= len(actions) {
		return m, nil
	}
	action := actions[idx]
	unit := m.selectedUnit()

	var msg *cmnd.Message
	var what string

	switch action.id {
	case actionReset:
		msg = cmnd.NewResetRequest()
		what = "Sent reset request"
	case actionHello:
		msg = cmnd.NewHelloRequest()
		what = "Sent hello request"
	case actionStatus:
		msg = cmnd.NewGetStatusRequest()
		what = "Sent status request"
	case actionVersion:
		msg = cmnd.NewGetVersionRequest()
		what = "Sent version request"
	case actionRegister:
		msg = cmnd.NewRegisterDeviceRequest(nil)
		what = "Sent registration request"
	case actionDeregister:
		msg = cmnd.NewDeregisterDeviceRequest()
		what = "Sent deregistration request"
	case actionRaiseAlert:
		msg = cmnd.NewAlertNotifyRequest(unit.number, cmnd.FunUnitTypeSmokeDetector, cmnd.AlertStateAlerting)
		what = fmt.Sprintf("Sent alert from unit %d", unit.number)
	case actionClearAlert:
		msg = cmnd.NewAlertNotifyRequest(unit.number, cmnd.FunUnitTypeSmokeDetector, cmnd.AlertStateCleared)
		what = fmt.Sprintf("Cleared alert on unit %d", unit.number)
	case actionBattery:
		msg = cmnd.NewBatteryMeasureRequest()
		what = "Sent battery measure request"
	case actionRssi:
		msg = cmnd.NewRssiRequest()
		what = "Sent RSSI request"
	default:
		return m, nil
	}

	if err := m.connMgr.send(msg); err != nil {
		m.addLogEntry(fmt.Sprintf("Failed to send command: %v", err), true)
		return m, nil
	}

	m.addLogEntry(what, false)
	return m, nil
}

func (m *consoleModel) selectedUnit() boardUnit {
	idx := m.unitList.Index()
	if idx < 0 || idx >= len(m.units) {
		return m.units[0]
	}
	return m.units[idx]
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *consoleModel) processConsoleData(msg consoleDataMsg) {
	if msg.decodeErr != nil {
		if m.synchronized {
			m.stats.Update(nil, msg.decodeErr, nil)
			m.addLogEntry(fmt.Sprintf("FRAME ERROR: %v", msg.decodeErr), true)
		}
		return
	}

	if msg.message == nil {
		return
	}

	m.stats.Update(msg.message, nil, msg.validationErrors)
	m.markUnitSeen(msg.message.UnitID())

	rcv := msg.message
	switch {
	case rcv.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralHelloInd),
		rcv.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralGetStatusRes):
		var status cmnd.IEGeneralStatus
		if err := rcv.GetIE(&status); err == nil {
			m.setBoardStatus(&status)
			if rcv.MessageID() == cmnd.MsgGeneralHelloInd {
				m.addLogEntry(fmt.Sprintf("Board announced itself (%s)", formatPowerup(status.PowerupMode)), false)
			}
		}

	case rcv.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralGetVersionRes):
		var version cmnd.IEVersion
		if err := rcv.GetIE(&version); err == nil {
			m.ensureBoard()
			m.board.version = version.Version
			m.addLogEntry(fmt.Sprintf("Firmware version: %s", version.Version), false)
		}

	case rcv.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralLinkCfm):
		if result, ok := responseResult(rcv); ok {
			if result == cmnd.ResultOk {
				m.addLogEntry("Delivery confirmed by the base", false)
			} else {
				m.addLogEntry(fmt.Sprintf("Delivery failed with result 0x%02X", result), true)
			}
		}

	case rcv.Is(cmnd.ServiceDeviceManagement, cmnd.MsgDevMgntRegisterDeviceCfm):
		if result, ok := responseResult(rcv); ok && result != cmnd.ResultOk {
			m.addLogEntry(fmt.Sprintf("Registration refused with result 0x%02X", result), true)
		} else {
			m.addLogEntry("Registration in progress...", false)
		}

	case rcv.Is(cmnd.ServiceDeviceManagement, cmnd.MsgDevMgntRegisterDeviceInd):
		var reg cmnd.IERegistrationResponse
		if err := rcv.GetIE(&reg); err == nil {
			if reg.ResponseCode == cmnd.ResultOk {
				m.addLogEntry(fmt.Sprintf("Registered: device address 0x%04X", reg.DeviceAddress), false)
			} else {
				m.addLogEntry(fmt.Sprintf("Registration failed with code 0x%02X", reg.ResponseCode), true)
			}
		}

	case rcv.Is(cmnd.ServiceDeviceManagement, cmnd.MsgDevMgntDeregisterDeviceCfm):
		m.addLogEntry("Deregistered", false)

	case rcv.Is(cmnd.ServiceSystem, cmnd.MsgSysBatteryMeasureGetRes):
		var level cmnd.IEU8
		if err := rcv.GetIE(&level); err == nil {
			m.ensureBoard()
			m.board.battery = level.Value
			m.board.hasBattery = true
			m.addLogEntry(fmt.Sprintf("Battery level: 0x%02X", level.Value), false)
		}

	case rcv.Is(cmnd.ServiceSystem, cmnd.MsgSysRssiGetRes):
		var rssi cmnd.IEU8
		if err := rcv.GetIE(&rssi); err == nil {
			m.ensureBoard()
			m.board.rssi = rssi.Value
			m.board.hasRSSI = true
			m.addLogEntry(fmt.Sprintf("RSSI: 0x%02X", rssi.Value), false)
		}

	case rcv.Is(cmnd.ServiceSystem, cmnd.MsgSysBatteryIndLowInd):
		m.addLogEntry("Board reports LOW BATTERY", true)

	default:
		// Other messages - just log if there are validation errors
		if len(msg.validationErrors) > 0 {
			name := cmnd.MessageName(rcv.ServiceID(), rcv.MessageID())
			for _, err := range msg.validationErrors {
				m.addLogEntry(fmt.Sprintf("%s: %s", name, err.Message), true)
			}
		}
	}
}

// responseResult extracts the result of a carried response IE
func responseResult(m *cmnd.Message) (byte, bool) {
	var resp cmnd.IEResponse
	if err := m.GetIE(&resp); err != nil {
		return 0, false
	}
	return resp.Result, true
}

func (m *consoleModel) ensureBoard() {
	if m.board == nil {
		m.board = &boardStatus{timestamp: time.Now()}
	}
	m.board.timestamp = time.Now()
}

func (m *consoleModel) setBoardStatus(status *cmnd.IEGeneralStatus) {
	m.ensureBoard()
	m.board.status = status
}

func (m *consoleModel) markUnitSeen(unitID byte) {
	for i := range m.units {
		if m.units[i].number == unitID {
			m.units[i].lastSeen = time.Now()
			m.units[i].seen = true
			m.refreshUnitList()
			return
		}
	}
}

func (m *consoleModel) refreshUnitList() {
	items := make([]list.Item, len(m.units))
	for i, u := range m.units {
		items[i] = u
	}
	m.unitList.SetItems(items)
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *consoleModel) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m *consoleModel) updateListSizes() {
	listHeight := m.height / 3
	if listHeight < 6 {
		listHeight = 6
	}
	m.unitList.SetSize(28, listHeight)
	m.actionList.SetSize(40, listHeight)
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m consoleModel) View() string {
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

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("ULESCOPE CONSOLE"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit Tab=switch Enter=run", connStatus)))
	s.WriteString("\n")

	// Board status line (below header)
	if m.board != nil && m.board.status != nil {
		registration := "not registered"
		if m.board.status.Registered() {
			registration = fmt.Sprintf("registered, device 0x%04X", m.board.status.DeviceID)
		}
		s.WriteString(fmt.Sprintf(" %s %s, %s",
			statsLabelStyle.Render("Board:"),
			statsValueStyle.Render(formatPowerup(m.board.status.PowerupMode)),
			statsValueStyle.Render(registration)))
		if m.board.version != "" {
			s.WriteString(fmt.Sprintf("  %s %s",
				statsLabelStyle.Render("Firmware:"),
				statsValueStyle.Render(m.board.version)))
		}
	} else if !m.synchronized {
		s.WriteString(warningStyle.Render(" Waiting for the board to announce itself..."))
	}
	s.WriteString("\n\n")

	// Layout: left panel (units) | right panel (actions)
	leftWidth := 30
	rightWidth := 42
	if m.width < leftWidth+rightWidth+8 {
		rightWidth = m.width - leftWidth - 8
	}

	unitStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusUnitList {
		unitStyle = focusedBoxStyle.Width(leftWidth)
	}
	unitPanel := unitStyle.Render(m.unitList.View())

	actionStyle := boxStyle.Width(rightWidth)
	if m.focusedField == focusActionList {
		actionStyle = focusedBoxStyle.Width(rightWidth)
	}
	actionPanel := actionStyle.Render(m.actionList.View())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, unitPanel, " ", actionPanel))
	s.WriteString("\n\n")

	// Statistics bar
	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))

	return s.String()
}

func (m consoleModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle lipgloss.Style) string {
	m.stats.CalculateRates()
	var validPercent, errorPercent float64
	if m.stats.TotalMessages > 0 {
		validPercent = float64(m.stats.ValidMessages) * 100.0 / float64(m.stats.TotalMessages)
		totalErrors := m.stats.ChecksumErrors + m.stats.FramingErrors + m.stats.AnomalousMessages
		errorPercent = float64(totalErrors) * 100.0 / float64(m.stats.TotalMessages)
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalMessages)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%.1f%%", validPercent)),
		statsLabelStyle.Render("Errors:"), func() string {
			if errorPercent > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f%%", errorPercent))
			}
			return statsValueStyle.Render("0.0%")
		}(),
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f msg/s", m.stats.MessageRate)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m consoleModel) renderEventLog(statsLabelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	// Calculate available height for log
	logHeight := 8
	if len(m.errorLog) < logHeight {
		logHeight = len(m.errorLog)
	}

	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
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

	return boxStyle.Width(m.width - 4).Render(s.String())
}
