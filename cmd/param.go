// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var paramTimeout int

var paramCmd = &cobra.Command{
	Use:   "param",
	Short: "Read and write named board parameters",
	Long: `Read and write the board parameters exposed by name.

Parameters live in the board's HAN EEPROM; writes are persistent and take
effect after the next reset. Use "param list" to see what is available.`,
}

var paramListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the named parameters",
	Run:   runParamList,
}

var paramGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Read a parameter from the board",
	Args:  cobra.ExactArgs(1),
	RunE:  runParamGet,
}

var paramSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Write a parameter to the board",
	Long: `Write a named parameter to the board's EEPROM.

The value is an unsigned integer; 0x-prefixed hex is accepted. The board
applies EEPROM parameters at the next reset.`,
	Args: cobra.ExactArgs(2),
	RunE: runParamSet,
}

func init() {
	rootCmd.AddCommand(paramCmd)
	paramCmd.AddCommand(paramListCmd)
	paramCmd.AddCommand(paramGetCmd)
	paramCmd.AddCommand(paramSetCmd)
	paramCmd.PersistentFlags().IntVar(&paramTimeout, "timeout", 10, "Timeout in seconds")
}

func runParamList(cmd *cobra.Command, args []string) {
	fmt.Printf("%-20s %-6s %-5s %-6s %s\n", "NAME", "ID", "SIZE", "ORDER", "DESCRIPTION")
	for _, p := range cmnd.NamedParams {
		order := "BE"
		if p.LittleEndian {
			order = "LE"
		}
		fmt.Printf("%-20s 0x%02X   %-5d %-6s %s\n", p.Name, byte(p.ID), p.Size, order, p.Description)
	}
}

func lookupParamArg(name string) (cmnd.NamedParam, error) {
	p, ok := cmnd.LookupParam(name)
	if !ok {
		names := make([]string, 0, len(cmnd.NamedParams))
		for _, np := range cmnd.NamedParams {
			names = append(names, np.Name)
		}
		return cmnd.NamedParam{}, fmt.Errorf("unknown parameter %q (known: %s)", name, strings.Join(names, ", "))
	}
	return p, nil
}

func runParamGet(cmd *cobra.Command, args []string) error {
	p, err := lookupParamArg(args[0])
	if err != nil {
		return err
	}

	return withClient(time.Duration(paramTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		data, err := client.GetParam(ctx, cmnd.ParamAddressHanEeprom, byte(p.ID))
		if err != nil {
			return fmt.Errorf("reading %s: %w", p.Name, err)
		}

		value, err := p.DecodeValue(data)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p.Name, err)
		}

		fmt.Printf("%s = %d (0x%08X)\n", p.Name, value, value)
		return nil
	})
}

func runParamSet(cmd *cobra.Command, args []string) error {
	p, err := lookupParamArg(args[0])
	if err != nil {
		return err
	}

	value, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[1], err)
	}

	return withClient(time.Duration(paramTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		if err := client.SetParam(ctx, cmnd.ParamAddressHanEeprom, byte(p.ID), p.EncodeValue(uint32(value))); err != nil {
			return fmt.Errorf("writing %s: %w", p.Name, err)
		}

		fmt.Printf("%s = %d saved (applies at the next reset)\n", p.Name, value)
		return nil
	})
}
