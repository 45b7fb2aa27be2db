// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var (
	infoTimeout int
	infoAll     bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Read the board's status and firmware version",
	Long: `Query the expansion board for its general status and firmware version.

The board is not reset; the command sends status and version requests and
prints the answers. With --all the battery level and link RSSI are read as
well (RSSI is only meaningful while the board is registered with a base).`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().IntVar(&infoTimeout, "timeout", 10, "Timeout in seconds for the whole query")
	infoCmd.Flags().BoolVar(&infoAll, "all", false, "Also read battery level and RSSI")
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withClient(time.Duration(infoTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		fmt.Printf("Connection: %s\n\n", connInfo)

		status, err := client.Status(ctx)
		if err != nil {
			return fmt.Errorf("status query failed: %w", err)
		}
		printBoardStatus(status)

		version, err := client.Version(ctx)
		if err != nil {
			return fmt.Errorf("version query failed: %w", err)
		}
		fmt.Printf("  Firmware:      %s\n", version)

		if !infoAll {
			return nil
		}

		battery, err := client.Request(ctx, cmnd.NewBatteryMeasureRequest(),
			cmnd.ServiceSystem, cmnd.MsgSysBatteryMeasureGetRes)
		if err != nil {
			fmt.Printf("  Battery:       (no answer: %v)\n", err)
		} else {
			var level cmnd.IEU8
			if err := battery.GetIE(&level); err != nil {
				fmt.Printf("  Battery:       (unreadable: %v)\n", err)
			} else {
				fmt.Printf("  Battery:       0x%02X\n", level.Value)
			}
		}

		rssi, err := client.Request(ctx, cmnd.NewRssiRequest(),
			cmnd.ServiceSystem, cmnd.MsgSysRssiGetRes)
		if err != nil {
			fmt.Printf("  RSSI:          (no answer: %v)\n", err)
		} else {
			var value cmnd.IEU8
			if err := rssi.GetIE(&value); err != nil {
				fmt.Printf("  RSSI:          (unreadable: %v)\n", err)
			} else {
				fmt.Printf("  RSSI:          0x%02X\n", value.Value)
			}
		}

		return nil
	})
}
