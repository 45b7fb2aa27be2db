// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
)

// Event log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for informational entries
}

// Last known board state, assembled from passing traffic
type boardStatus struct {
	timestamp  time.Time
	status     *cmnd.IEGeneralStatus
	version    string
	battery    byte
	hasBattery bool
	rssi       byte
	hasRSSI    bool
}

// Monitor TUI model
type monitorModel struct {
	connInfo      string
	statsInterval int
	showAll       bool
	stats         *cmnd.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	connClosed    bool
	width         int
	height        int
	quitting      bool
	board         *boardStatus
}

// Messages
type monitorTickMsg time.Time
type streamDataMsg struct {
	message          *cmnd.Message
	decodeErr        error
	validationErrors []cmnd.ValidationError
}
type monitorSyncMsg struct {
	invalidBytes int
}
type monitorConnClosedMsg struct{}

func initialMonitorModel(connInfo string, statsInterval int, showAll bool) monitorModel {
	return monitorModel{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         cmnd.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		synchronized:  false,
		invalidBytes:  0,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		m.stats.CalculateRates()
		return m, monitorTickCmd()

	case monitorSyncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case monitorConnClosedMsg:
		m.connClosed = true
		m.addLogEntry("Connection closed", true)

	case streamDataMsg:
		if msg.decodeErr != nil {
			if m.synchronized {
				m.stats.Update(nil, msg.decodeErr, nil)
				m.addLogEntry(fmt.Sprintf("FRAME ERROR: %v", msg.decodeErr), true)
			}
		} else if msg.message != nil {
			m.stats.Update(msg.message, nil, msg.validationErrors)

			// Keep the board panel current
			m.parseBoardStatus(msg.message)

			if len(msg.validationErrors) > 0 {
				name := cmnd.MessageName(msg.message.ServiceID(), msg.message.MessageID())
				for _, err := range msg.validationErrors {
					m.addLogEntry(fmt.Sprintf("%s: %s", name, err.Message), true)
				}
			} else if m.showAll {
				m.addLogEntry(fmt.Sprintf("%s %s (valid)",
					cmnd.ServiceName(msg.message.ServiceID()),
					cmnd.MessageName(msg.message.ServiceID(), msg.message.MessageID())), false)
			}
		}
	}

	return m, nil
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

// parseBoardStatus folds status-bearing messages into the board panel
func (m *monitorModel) parseBoardStatus(msg *cmnd.Message) {
	if m.board == nil {
		m.board = &boardStatus{timestamp: msg.Timestamp()}
	}

	switch {
	case msg.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralHelloInd),
		msg.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralGetStatusRes):
		var status cmnd.IEGeneralStatus
		if err := msg.GetIE(&status); err == nil {
			m.board.status = &status
			m.board.timestamp = msg.Timestamp()
			if msg.MessageID() == cmnd.MsgGeneralHelloInd {
				m.addLogEntry(fmt.Sprintf("Board announced itself (%s)", formatPowerup(status.PowerupMode)), false)
			}
		}

	case msg.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralGetVersionRes):
		var version cmnd.IEVersion
		if err := msg.GetIE(&version); err == nil {
			m.board.version = version.Version
			m.board.timestamp = msg.Timestamp()
		}

	case msg.Is(cmnd.ServiceSystem, cmnd.MsgSysBatteryMeasureGetRes):
		var level cmnd.IEU8
		if err := msg.GetIE(&level); err == nil {
			m.board.battery = level.Value
			m.board.hasBattery = true
			m.board.timestamp = msg.Timestamp()
		}

	case msg.Is(cmnd.ServiceSystem, cmnd.MsgSysRssiGetRes):
		var rssi cmnd.IEU8
		if err := msg.GetIE(&rssi); err == nil {
			m.board.rssi = rssi.Value
			m.board.hasRSSI = true
			m.board.timestamp = msg.Timestamp()
		}
	}
}

func (m monitorModel) View() string {
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

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("ULESCOPE - MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | Press 'q' to quit",
		m.connInfo, func() string {
			if m.showAll {
				return "All messages"
			}
			return "Anomalies only"
		}())))
	s.WriteString("\n\n")

	// Sync status
	if m.connClosed {
		s.WriteString(errorStyle.Render("✗ Connection closed"))
		s.WriteString("\n\n")
	} else if !m.synchronized {
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	var validPercent, errorPercent float64
	if m.stats.TotalMessages > 0 {
		validPercent = float64(m.stats.ValidMessages) * 100.0 / float64(m.stats.TotalMessages)
		totalErrors := m.stats.ChecksumErrors + m.stats.FramingErrors + m.stats.AnomalousMessages
		errorPercent = float64(totalErrors) * 100.0 / float64(m.stats.TotalMessages)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalMessages)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidMessages, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ChecksumErrors+m.stats.FramingErrors+m.stats.AnomalousMessages, errorPercent)),
	))

	if m.stats.ChecksumErrors > 0 || m.stats.FramingErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Checksum Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
			statsLabelStyle.Render("Framing Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.FramingErrors)),
		))
	}

	if m.stats.AnomalousMessages > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s",
			statsLabelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousMessages)),
		))
		if m.stats.UnknownServices > 0 || m.stats.UnknownMessages > 0 || m.stats.FailedRequests > 0 {
			statsContent.WriteString(fmt.Sprintf(" (%s: %d, %s: %d, %s: %d)",
				headerStyle.Render("unknown services"), m.stats.UnknownServices,
				headerStyle.Render("unknown messages"), m.stats.UnknownMessages,
				headerStyle.Render("failed requests"), m.stats.FailedRequests,
			))
		}
		statsContent.WriteString("\n")
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Message Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f msg/s", m.stats.MessageRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Board panel (only shown once status traffic has been seen)
	if m.board != nil && (m.board.status != nil || m.board.version != "" || m.board.hasBattery || m.board.hasRSSI) {
		s.WriteString(statsLabelStyle.Render("Board:"))
		s.WriteString("\n")

		boardContent := strings.Builder{}

		if m.board.status != nil {
			registration := "NOT REGISTERED"
			if m.board.status.Registered() {
				registration = fmt.Sprintf("REGISTERED (device 0x%04X)", m.board.status.DeviceID)
			}
			boardContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
				statsLabelStyle.Render("Powerup:"), statsValueStyle.Render(formatPowerup(m.board.status.PowerupMode)),
				statsLabelStyle.Render("Registration:"), statsValueStyle.Render(registration),
			))
		}

		if m.board.version != "" {
			boardContent.WriteString(fmt.Sprintf("%s %s\n",
				statsLabelStyle.Render("Firmware:"), statsValueStyle.Render(m.board.version),
			))
		}

		if m.board.hasBattery {
			boardContent.WriteString(fmt.Sprintf("%s %s   ",
				statsLabelStyle.Render("Battery:"), statsValueStyle.Render(fmt.Sprintf("0x%02X", m.board.battery)),
			))
		}
		if m.board.hasRSSI {
			boardContent.WriteString(fmt.Sprintf("%s %s",
				statsLabelStyle.Render("RSSI:"), statsValueStyle.Render(fmt.Sprintf("0x%02X", m.board.rssi)),
			))
		}

		s.WriteString(boxStyle.Render(strings.TrimRight(boardContent.String(), " \n")))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 15 // Reserve space for header and stats
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
