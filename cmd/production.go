// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var productionTimeout int

var productionCmd = &cobra.Command{
	Use:   "production <on|off>",
	Short: "Switch the board's production mode",
	Long: `Switch the expansion board in or out of production mode.

Production mode unlocks factory operations (preset loading, region
configuration). Each switch resets the board; it comes back up announcing
the new mode. Most users want the "preset" and "region" commands instead,
which handle production mode themselves.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runProduction,
}

func init() {
	rootCmd.AddCommand(productionCmd)
	productionCmd.Flags().IntVar(&productionTimeout, "timeout", 30, "Timeout in seconds")
}

func runProduction(cmd *cobra.Command, args []string) error {
	return withClient(time.Duration(productionTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		switch args[0] {
		case "on":
			if err := client.EnterProductionMode(ctx); err != nil {
				return fmt.Errorf("entering production mode: %w", err)
			}
			fmt.Printf("Board is in production mode\n")
		case "off":
			if err := client.ExitProductionMode(ctx); err != nil {
				return fmt.Errorf("exiting production mode: %w", err)
			}
			fmt.Printf("Board is back in normal mode\n")
		default:
			return fmt.Errorf("argument must be \"on\" or \"off\", got %q", args[0])
		}
		return nil
	})
}
