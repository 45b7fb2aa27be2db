// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var (
	funTimeout int
	funDevice  uint16
)

var funCmd = &cobra.Command{
	Use:   "fun <hex bytes | @file>",
	Short: "Send raw data to the base over the FUN raw data interface",
	Long: `Send proprietary raw data through the base's FUN raw data interface.

The payload is given as hex bytes on the command line, or read verbatim
from a file with @path. The board must be registered; the command waits
for the base's delivery confirmation.

The raw data interface is how the expansion board firmware tunnels
application traffic; this command lets you inject such traffic by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: runFun,
}

func init() {
	rootCmd.AddCommand(funCmd)
	funCmd.Flags().IntVar(&funTimeout, "timeout", 15, "Timeout in seconds for the delivery confirmation")
	funCmd.Flags().Uint16Var(&funDevice, "device", 0, "Source device address to claim")
}

func runFun(cmd *cobra.Command, args []string) error {
	var data []byte
	if strings.HasPrefix(args[0], "@") {
		raw, err := os.ReadFile(args[0][1:])
		if err != nil {
			return fmt.Errorf("reading payload file: %w", err)
		}
		data = raw
	} else {
		cleaned := strings.NewReplacer(":", "", " ", "").Replace(args[0])
		raw, err := hex.DecodeString(cleaned)
		if err != nil {
			return fmt.Errorf("invalid hex bytes %q: %w", args[0], err)
		}
		data = raw
	}
	if len(data) == 0 {
		return fmt.Errorf("no payload to send")
	}

	return withClient(time.Duration(funTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		if err := client.SendRawData(ctx, funDevice, data); err != nil {
			return fmt.Errorf("sending raw data: %w", err)
		}

		fmt.Printf("%d bytes delivered to the base\n", len(data))
		return nil
	})
}
