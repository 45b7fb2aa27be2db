// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var (
	pingTimeout  int
	pingCount    int
	pingInterval int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure the board's round-trip time over CMND",
	Long: `Send status requests to the expansion board and measure the round trip.

Each ping is a GET_STATUS_REQ answered by the board's CMND module, so the
round trip covers the full path through the transport, the board's UART and
its firmware. Other traffic on the stream (keep-alives, indications) is
ignored while waiting.

Exit codes:
  0 - All pings answered
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
	pingCmd.Flags().IntVar(&pingInterval, "interval", 1, "Seconds between pings")
}

func runPing(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	client := dueb.NewClient(conn, commandLogger())
	defer client.Close()

	fmt.Printf("Ulescope - Board Ping\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	successCount := 0
	failCount := 0
	var minRtt, maxRtt, totalRtt time.Duration

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(pingTimeout)*time.Second)
		startTime := time.Now()
		res, err := client.Request(ctx, cmnd.NewGetStatusRequest(),
			cmnd.ServiceGeneral, cmnd.MsgGeneralGetStatusRes)
		cancel()

		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		} else {
			rtt := time.Since(startTime)
			var status cmnd.IEGeneralStatus
			mode := "?"
			if err := res.GetIE(&status); err == nil {
				mode = formatPowerup(status.PowerupMode)
			}
			fmt.Printf("answer from board (%s), rtt=%v\n", mode, rtt.Round(time.Millisecond))

			successCount++
			totalRtt += rtt
			if minRtt == 0 || rtt < minRtt {
				minRtt = rtt
			}
			if rtt > maxRtt {
				maxRtt = rtt
			}
		}

		if i < pingCount {
			time.Sleep(time.Duration(pingInterval) * time.Second)
		}
	}

	// Summary
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d answered, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)
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
