// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
)

var (
	showAll            bool
	statsInterval      int
	useTUI             bool
	monitorLogFile     string
	monitorMetricsAddr string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live decode of CMND traffic with anomaly detection",
	Long: `Decode every frame on the connection and track protocol anomalies.

This command validates each message and detects:
  - Framing errors (lost sync, undersized or oversized frames)
  - Checksum mismatches
  - Anomalous messages (unknown services, unexpected cookies,
    failed requests, inconsistent IE lengths)
  - Statistics and trends (message rate, error rate)

By default, only anomalies are displayed. Use --show-all to display valid
messages too. Board hello announcements are always shown.

With --log-file, every decode outcome is also written to a rotated JSON log.
With --metrics-addr, Prometheus counters are served on /metrics.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all messages (not just anomalies)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
	monitorCmd.Flags().StringVar(&monitorLogFile, "log-file", "", "Write decode outcomes to a rotated JSON log")
	monitorCmd.Flags().StringVar(&monitorMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	frameLog := zap.NewNop()
	if monitorLogFile != "" {
		logger := buildFrameLogger(appConfig.Logging, monitorLogFile)
		defer logger.Sync()
		frameLog = logger
	}

	metricsAddr := monitorMetricsAddr
	if metricsAddr == "" {
		metricsAddr = appConfig.Metrics.Addr
	}
	metrics := newStreamMetrics()
	if metricsAddr != "" {
		go func() {
			if err := metrics.Serve(metricsAddr); err != nil {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	if useTUI {
		return runMonitorTUI(conn, connInfo, frameLog, metrics)
	}
	return runMonitorText(conn, connInfo, frameLog, metrics)
}

// logDecodeOutcome writes one decode outcome to the frame log
func logDecodeOutcome(frameLog *zap.Logger, m *cmnd.Message, decodeErr error, validationErrors []cmnd.ValidationError) {
	if decodeErr != nil {
		frameLog.Warn("frame error", zap.Error(decodeErr))
		return
	}
	if m == nil {
		return
	}
	fields := []zap.Field{
		zap.String("service", cmnd.ServiceName(m.ServiceID())),
		zap.String("message", cmnd.MessageName(m.ServiceID(), m.MessageID())),
		zap.Uint8("unit", m.UnitID()),
		zap.Uint16("length", m.DataLength()),
	}
	if len(validationErrors) > 0 {
		anomalies := make([]string, len(validationErrors))
		for i, e := range validationErrors {
			anomalies[i] = e.Message
		}
		frameLog.Warn("anomalous message", append(fields, zap.Strings("anomalies", anomalies))...)
		return
	}
	frameLog.Info("message", fields...)
}

// printFrameError prints a framing error in highlighted format
func printFrameError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mFRAME ERROR:\033[0m %v\n", timestamp, err)
	fmt.Printf("  >>> FRAME DISCARDED <<<\n\n")
}

// printHelloIndication prints a board announcement with its status
func printHelloIndication(m *cmnd.Message) {
	timestamp := m.Timestamp().Format("15:04:05.000")

	var status cmnd.IEGeneralStatus
	if err := m.GetIE(&status); err != nil {
		fmt.Printf("[%s] \033[1;32mHELLO_IND:\033[0m (no status IE)\n\n", timestamp)
		return
	}

	registration := "not registered"
	if status.Registered() {
		registration = fmt.Sprintf("registered, device 0x%04X", status.DeviceID)
	}
	fmt.Printf("[%s] \033[1;32mHELLO_IND:\033[0m board announced itself (%s, %s)\n\n",
		timestamp, formatPowerup(status.PowerupMode), registration)
}

func formatPowerup(mode cmnd.PowerupMode) string {
	switch mode {
	case cmnd.PowerupModeNormal:
		return "normal mode"
	case cmnd.PowerupModeSafe:
		return "safe mode"
	case cmnd.PowerupModeProduction:
		return "production mode"
	default:
		return fmt.Sprintf("powerup mode 0x%02X", byte(mode))
	}
}

// printValidationErrors prints validation errors for a message
func printValidationErrors(m *cmnd.Message, errors []cmnd.ValidationError) {
	timestamp := m.Timestamp().Format("15:04:05.000")
	name := cmnd.MessageName(m.ServiceID(), m.MessageID())

	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s %s (unit %d)\n",
		timestamp, cmnd.ServiceName(m.ServiceID()), name, m.UnitID())
	fmt.Printf("  Checksum: \033[1;32mOK\033[0m\n")

	for i, err := range errors {
		switch err.Type {
		case cmnd.AnomalyUnexpectedCookie:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)

		case cmnd.AnomalyUnknownService:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if service, ok := err.Details["service"].(uint16); ok {
				fmt.Printf("    serviceId=0x%04X\n", service)
			}

		case cmnd.AnomalyUnknownMessage:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if message, ok := err.Details["message"].(byte); ok {
				fmt.Printf("    messageId=0x%02X\n", message)
			}

		case cmnd.AnomalyRequestFailed:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if result, ok := err.Details["result"].(byte); ok {
				fmt.Printf("    result=0x%02X\n", result)
			}

		case cmnd.AnomalyMalformedIE:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if length, ok := err.Details["length"].(uint16); ok {
				fmt.Printf("    payload length=%d\n", length)
			}

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}

	fmt.Printf("  >>> MESSAGE FLAGGED <<<\n\n")
}

// runMonitorTUI runs the monitor in TUI mode
func runMonitorTUI(conn Connection, connInfo string, frameLog *zap.Logger, metrics *streamMetrics) error {
	framer := cmnd.NewFramer()
	synchronized := false
	invalidBytesBeforeSync := 0

	m := initialMonitorModel(connInfo, statsInterval, showAll)
	p := tea.NewProgram(m)

	// Reader goroutine
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					p.Send(monitorConnClosedMsg{})
					return
				}
				time.Sleep(10 * time.Millisecond)
				continue
			}
			metrics.BytesRead.Add(float64(n))

			for i := 0; i < n; i++ {
				msg, decodeErr := framer.DecodeByte(buf[i])

				if decodeErr != nil {
					metrics.observe(nil, decodeErr, nil)
					if synchronized {
						logDecodeOutcome(frameLog, nil, decodeErr, nil)
						p.Send(streamDataMsg{decodeErr: decodeErr})
					} else {
						invalidBytesBeforeSync++
					}
				} else if msg != nil {
					if !synchronized {
						synchronized = true
						p.Send(monitorSyncMsg{invalidBytes: invalidBytesBeforeSync})
					}

					validationErrors := cmnd.ValidateMessage(msg)
					metrics.observe(msg, nil, validationErrors)
					logDecodeOutcome(frameLog, msg, nil, validationErrors)
					p.Send(streamDataMsg{
						message:          msg,
						validationErrors: validationErrors,
					})
				}
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}

// runMonitorText runs the monitor in text mode
func runMonitorText(conn Connection, connInfo string, frameLog *zap.Logger, metrics *streamMetrics) error {
	fmt.Printf("Ulescope - Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All messages\n")
	} else {
		fmt.Printf("Mode: Anomalies only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	framer := cmnd.NewFramer()
	stats := cmnd.NewStatistics()

	// Sync tracking - ignore frame errors until the first valid message
	synchronized := false
	invalidBytesBeforeSync := 0

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Channel for non-blocking reads
	dataChan := make(chan []byte, 10)
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					close(dataChan)
					return
				}
				time.Sleep(10 * time.Millisecond)
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			dataChan <- data
		}
	}()

	for {
		select {
		case data, ok := <-dataChan:
			if !ok {
				log.Printf("Connection closed")
				fmt.Println()
				fmt.Print(stats.String())
				return nil
			}
			metrics.BytesRead.Add(float64(len(data)))

			for _, b := range data {
				m, decodeErr := framer.DecodeByte(b)

				if decodeErr != nil {
					metrics.observe(nil, decodeErr, nil)
					if synchronized {
						stats.Update(nil, decodeErr, nil)
						logDecodeOutcome(frameLog, nil, decodeErr, nil)
						printFrameError(decodeErr)
					} else {
						invalidBytesBeforeSync++
					}
				} else if m != nil {
					if !synchronized {
						synchronized = true
						if invalidBytesBeforeSync > 0 {
							fmt.Printf("[SYNC] Synchronized after skipping %d invalid bytes\n\n", invalidBytesBeforeSync)
						} else {
							fmt.Printf("[SYNC] Synchronized\n\n")
						}
					}

					validationErrors := cmnd.ValidateMessage(m)
					stats.Update(m, nil, validationErrors)
					metrics.observe(m, nil, validationErrors)
					logDecodeOutcome(frameLog, m, nil, validationErrors)

					if len(validationErrors) > 0 {
						printValidationErrors(m, validationErrors)
					} else if m.Is(cmnd.ServiceGeneral, cmnd.MsgGeneralHelloInd) {
						// Always print board announcements
						printHelloIndication(m)
					} else if showAll {
						fmt.Print(cmnd.FormatMessage(m))
					}
				}
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
