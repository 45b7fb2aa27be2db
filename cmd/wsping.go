// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	wsPingTimeout int
	wsPingCount   int
)

var wsCmd = &cobra.Command{
	Use:   "ws",
	Short: "WebSocket bridge diagnostics",
	Long: `Diagnostics for the WebSocket bridge in front of the board.

These commands talk to the bridge itself rather than to the board, which
makes them useful for telling bridge problems apart from board problems.`,
}

var wsPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure the bridge's round-trip time with control pings",
	Long: `Send WebSocket control pings to the bridge and measure the round trip.

Control pings are answered by the bridge itself, before any CMND traffic
reaches the board, so this measures bridge and network latency only. A
board that is wedged or unplugged does not affect the result.

This is useful for verifying:
  - WebSocket connection is established
  - HTTP Basic authentication works
  - The bridge is responsive and how much latency it adds

Exit codes:
  0 - All pings answered
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runWsPing,
}

func init() {
	rootCmd.AddCommand(wsCmd)
	wsCmd.AddCommand(wsPingCmd)
	wsPingCmd.Flags().IntVar(&wsPingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	wsPingCmd.Flags().IntVar(&wsPingCount, "count", 3, "Number of pings to send")
}

func runWsPing(cmd *cobra.Command, args []string) error {
	if wsURL == "" {
		return fmt.Errorf("ws ping requires a WebSocket connection (--url)")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	wsc, ok := conn.(*WebSocketConnection)
	if !ok {
		return fmt.Errorf("connection is not a WebSocket")
	}

	fmt.Printf("Ulescope - WebSocket Bridge Ping\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", wsPingTimeout)
	fmt.Printf("Count: %d pings\n\n", wsPingCount)

	successCount := 0
	failCount := 0
	var minRtt, maxRtt, totalRtt time.Duration

	for i := 1; i <= wsPingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, wsPingCount)

		rtt, err := wsc.ControlPing(time.Duration(wsPingTimeout) * time.Second)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		} else {
			fmt.Printf("pong from bridge, rtt=%v\n", rtt.Round(time.Millisecond))
			successCount++
			totalRtt += rtt
			if minRtt == 0 || rtt < minRtt {
				minRtt = rtt
			}
			if rtt > maxRtt {
				maxRtt = rtt
			}
		}

		if i < wsPingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Summary
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d pongs received, %.0f%% loss\n",
		wsPingCount, successCount, float64(failCount)/float64(wsPingCount)*100)
	if successCount > 0 {
		avgRtt := totalRtt / time.Duration(successCount)
		fmt.Printf("round-trip min/avg/max = %v/%v/%v\n",
			minRtt.Round(time.Millisecond),
			avgRtt.Round(time.Millisecond),
			maxRtt.Round(time.Millisecond))
	}

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
