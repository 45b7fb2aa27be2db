// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive TUI for provisioning the expansion board",
	Long: `Drive a DECT ULE expansion board via an interactive terminal UI.

This command provides a TUI for monitoring and provisioning a board
connected via WebSocket (through a bridge) or UART (direct connection).

Features:
  - Board status panel (powerup mode, registration, firmware)
  - Unit list with per-unit actions
  - Actions: reset, hello, status, version, register, deregister,
    alert, battery, RSSI
  - Statistics tracking
  - Event logging
  - Automatic reconnection on connection loss

Tab switches between the unit list and the action list. Enter runs the
selected action against the selected unit.

Supports both serial and WebSocket connections.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	conn     Connection
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}
}

func (cm *connectionManager) getConn() Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

// send encodes and writes one message on the current connection
func (cm *connectionManager) send(m *cmnd.Message) error {
	conn := cm.getConn()
	if conn == nil {
		return fmt.Errorf("connection lost")
	}
	_, err := conn.Write(cmnd.EncodeMessage(m))
	return err
}

func runConsole(cmd *cobra.Command, args []string) error {
	// Open initial connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	// Create connection manager
	cm := &connectionManager{
		conn:     conn,
		connInfo: connInfo,
		done:     make(chan struct{}),
	}

	// Create TUI model with connection manager
	m := initialConsoleModel(cm, connInfo)

	// Create TUI program with alt screen
	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	// Start reader goroutines
	go cm.readerLoop()

	// Ask the board to announce itself
	sendInitialResetRequest(cm)

	// Run TUI
	if _, err := p.Run(); err != nil {
		close(cm.done) // Signal goroutines to stop
		cm.getConn().Close()
		return fmt.Errorf("TUI error: %v", err)
	}

	close(cm.done) // Signal goroutines to stop
	cm.getConn().Close()
	return nil
}

// readerLoop handles reading from connection with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		// Start reading from current connection
		connLost := cm.readFromConnection()

		if connLost {
			// Notify TUI about connection loss
			cm.p.Send(consoleConnLostMsg{})

			// Attempt to reconnect
			if !cm.reconnect() {
				return // Shutdown requested during reconnect
			}
		}
	}
}

// readFromConnection reads messages from the connection until it fails.
// Returns true if connection was lost, false if shutdown requested.
func (cm *connectionManager) readFromConnection() bool {
	framer := cmnd.NewFramer()
	synchronized := false
	invalidBytesBeforeSync := 0

	// Buffered channel for batching updates
	batchChan := make(chan consoleDataMsg, 100)
	syncChan := make(chan consoleSyncMsg, 1)
	readerDone := make(chan struct{})

	// Reader goroutine - decodes messages and sends to batch channel
	go func() {
		defer close(readerDone)
		buf := make([]byte, 128)
		for {
			select {
			case <-cm.done:
				return
			default:
			}

			conn := cm.getConn()
			if conn == nil {
				return
			}

			n, err := conn.Read(buf)
			if err != nil {
				// Check if we're shutting down
				select {
				case <-cm.done:
					return
				default:
					// For WebSocket connections, a read error usually means
					// the connection is permanently closed
					if err == ErrConnectionClosed {
						return
					}
					// Brief pause before retry on transient errors (e.g., serial)
					time.Sleep(10 * time.Millisecond)
					continue
				}
			}

			for i := 0; i < n; i++ {
				m, decodeErr := framer.DecodeByte(buf[i])

				if decodeErr != nil {
					if synchronized {
						select {
						case batchChan <- consoleDataMsg{decodeErr: decodeErr}:
						default:
						}
					} else {
						invalidBytesBeforeSync++
					}
				} else if m != nil {
					if !synchronized {
						synchronized = true
						select {
						case syncChan <- consoleSyncMsg{invalidBytes: invalidBytesBeforeSync}:
						default:
						}
					}

					validationErrors := cmnd.ValidateMessage(m)
					select {
					case batchChan <- consoleDataMsg{
						message:          m,
						validationErrors: validationErrors,
					}:
					default:
					}
				}
			}
		}
	}()

	// Batch sender goroutine - sends batched updates to TUI at fixed rate
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-cm.done:
				return
			case <-readerDone:
				return
			case <-ticker.C:
				var batch consoleBatchMsg

				// Check for sync message
				select {
				case sync := <-syncChan:
					batch.syncMsg = &sync
				default:
				}

				// Drain all available messages from batch channel
			drainLoop:
				for {
					select {
					case msg := <-batchChan:
						batch.messages = append(batch.messages, msg)
					default:
						break drainLoop
					}
				}

				// Send batch if we have anything
				if batch.syncMsg != nil || len(batch.messages) > 0 {
					cm.p.Send(batch)
				}
			}
		}
	}()

	// Wait for reader to finish (connection lost or shutdown)
	<-readerDone

	// Check if we're shutting down
	select {
	case <-cm.done:
		return false
	default:
		return true // Connection lost
	}
}

// reconnect attempts to reconnect with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (cm *connectionManager) reconnect() bool {
	// Close old connection
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		// Attempt to reconnect
		conn, connInfo, err := OpenConnection()
		if err == nil {
			cm.setConn(conn, connInfo)

			// Notify TUI about reconnection
			cm.p.Send(consoleReconnectedMsg{connInfo: connInfo})

			// Ask the board to announce itself again
			sendInitialResetRequest(cm)

			return true
		}

		// Exponential backoff
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// sendInitialResetRequest resets the board so it announces itself
func sendInitialResetRequest(cm *connectionManager) {
	cm.send(cmnd.NewResetRequest())
}
