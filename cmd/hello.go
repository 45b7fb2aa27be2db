// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var (
	helloTimeout int
	helloNoReset bool
)

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Test connection by waiting for the board's hello announcement",
	Long: `Reset the expansion board and wait for its hello announcement.

This command connects to a serial port or WebSocket, resets the board and
waits for the HELLO_IND message the CMND module sends after booting. The
announcement carries the powerup mode and registration state, which are
printed on success.

With --no-reset the board is not reset; a HELLO_REQ is sent instead and the
command waits for the board to answer.

Exit codes:
  0 - Hello received before timeout
  1 - Timeout reached without a hello from the board
  2 - Connection error

Useful for checking that a board is wired up and speaking CMND.`,
	RunE: runHello,
}

func init() {
	rootCmd.AddCommand(helloCmd)
	helloCmd.Flags().IntVar(&helloTimeout, "timeout", 10, "Timeout in seconds to wait for the hello")
	helloCmd.Flags().BoolVar(&helloNoReset, "no-reset", false, "Ask for a hello instead of resetting the board")
}

func runHello(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	client := dueb.NewClient(conn, commandLogger())
	defer client.Close()

	fmt.Printf("Ulescope - Hello Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", helloTimeout)
	if helloNoReset {
		fmt.Printf("Waiting for the board to answer a hello request...\n\n")
	} else {
		fmt.Printf("Resetting the board and waiting for its announcement...\n\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(helloTimeout)*time.Second)
	defer cancel()

	var status *cmnd.IEGeneralStatus
	if helloNoReset {
		status, err = client.Hello(ctx)
	} else {
		status, err = client.Connect(ctx)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintf(os.Stderr, "TIMEOUT: No hello from the board within %d seconds\n", helloTimeout)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("SUCCESS: Board announced itself\n")
	printBoardStatus(status)
	os.Exit(0)

	return nil
}

// printBoardStatus prints the fields of a general status IE
func printBoardStatus(status *cmnd.IEGeneralStatus) {
	fmt.Printf("  Powerup mode:  %s\n", formatPowerup(status.PowerupMode))
	if status.Registered() {
		fmt.Printf("  Registration:  registered (device 0x%04X)\n", status.DeviceID)
	} else {
		fmt.Printf("  Registration:  not registered\n")
	}
	fmt.Printf("  EEPROM:        0x%02X\n", status.EepromStatus)
}
