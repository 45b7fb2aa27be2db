// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var presetTimeout int

var presetCmd = &cobra.Command{
	Use:   "preset [name|id]",
	Short: "Load a factory EEPROM preset",
	Long: `Load one of the factory EEPROM presets.

Without an argument the known presets are listed. With a preset name or
numeric id the board is put into production mode, the preset is loaded and
the board is reset back to normal operation.

A preset overwrites the EEPROM wholesale: registration, parameters and
region settings are all replaced by the preset's defaults. The expansion
board ships with the "expansion_board" preset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreset,
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.Flags().IntVar(&presetTimeout, "timeout", 60, "Timeout in seconds for the whole sequence")
}

func runPreset(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Printf("%-22s %s\n", "NAME", "ID")
		for _, p := range cmnd.Presets {
			fmt.Printf("%-22s 0x%02X\n", p.Name, p.ID)
		}
		return nil
	}

	preset, ok := cmnd.LookupPreset(args[0])
	if !ok {
		id, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return fmt.Errorf("unknown preset %q (use \"preset\" without arguments to list them)", args[0])
		}
		preset = cmnd.Preset{Name: cmnd.PresetName(byte(id)), ID: byte(id)}
	}

	return withClient(time.Duration(presetTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		fmt.Printf("Loading preset %s (0x%02X), the board resets twice during this...\n", preset.Name, preset.ID)

		err := client.InProductionMode(ctx, func(ctx context.Context) error {
			return client.SetPreset(ctx, preset.ID)
		})
		if err != nil {
			return fmt.Errorf("loading preset %s: %w", preset.Name, err)
		}

		fmt.Printf("Preset %s loaded\n", preset.Name)
		return nil
	})
}
