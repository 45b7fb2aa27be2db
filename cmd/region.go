// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var regionTimeout int

var regionCmd = &cobra.Command{
	Use:   "region [name]",
	Short: "Configure the board's regulatory radio region",
	Long: `Configure the radio parameters for a regulatory region.

Without an argument the supported regions and their settings are listed.
With a region name the board is put into production mode, the region's
radio parameters (carrier plan, FCC support, power, deviation, PA
compensation) are written to EEPROM and the board is reset back to normal
operation.

You are responsible for picking the region that is legal where the board
actually transmits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegion,
}

func init() {
	rootCmd.AddCommand(regionCmd)
	regionCmd.Flags().IntVar(&regionTimeout, "timeout", 60, "Timeout in seconds for the whole sequence")
}

func runRegion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Printf("%-6s %-8s %-5s %-6s %-10s %-8s\n", "NAME", "CARRIER", "FCC", "POWER", "DEVIATION", "PA2COMP")
		for _, r := range cmnd.Regions {
			s := r.Settings
			fmt.Printf("%-6s 0x%02X     0x%02X  0x%02X   0x%02X       0x%02X\n",
				r.Name, s.UsDect, s.SupportFcc, s.FullPower, s.Deviation, s.Pa2Comp)
		}
		return nil
	}

	name := strings.ToLower(args[0])
	region, ok := cmnd.LookupRegion(name)
	if !ok {
		names := make([]string, 0, len(cmnd.Regions))
		for _, r := range cmnd.Regions {
			names = append(names, r.Name)
		}
		return fmt.Errorf("unknown region %q (known: %s)", args[0], strings.Join(names, ", "))
	}

	return withClient(time.Duration(regionTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		fmt.Printf("Setting region %s (the board resets twice during this)...\n", region.Name)

		if err := client.SetRegion(ctx, region); err != nil {
			return fmt.Errorf("setting region %s: %w", region.Name, err)
		}

		fmt.Printf("Region %s configured\n", region.Name)
		return nil
	})
}
