// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var eepromTimeout int

var eepromCmd = &cobra.Command{
	Use:   "eeprom",
	Short: "Raw access to the board's DECT EEPROM",
	Long: `Read and write raw bytes in the board's DECT EEPROM.

This is the sharp tool: offsets are not validated against any layout, and a
bad write can unregister or brick the radio side of the board until it is
reflashed. Offsets and lengths accept 0x-prefixed hex.`,
}

var eepromGetCmd = &cobra.Command{
	Use:   "get <offset> <length>",
	Short: "Read bytes from the EEPROM",
	Args:  cobra.ExactArgs(2),
	RunE:  runEepromGet,
}

var eepromSetCmd = &cobra.Command{
	Use:   "set <offset> <hex bytes>",
	Short: "Write bytes to the EEPROM",
	Args:  cobra.ExactArgs(2),
	RunE:  runEepromSet,
}

func init() {
	rootCmd.AddCommand(eepromCmd)
	eepromCmd.AddCommand(eepromGetCmd)
	eepromCmd.AddCommand(eepromSetCmd)
	eepromCmd.PersistentFlags().IntVar(&eepromTimeout, "timeout", 10, "Timeout in seconds")
}

func parseOffset(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return uint32(v), nil
}

// hexDump prints data in 16-byte rows addressed from the given offset
func hexDump(offset uint32, data []byte) {
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[i:end]

		var hexPart strings.Builder
		var asciiPart strings.Builder
		for j, b := range row {
			if j == 8 {
				hexPart.WriteByte(' ')
			}
			fmt.Fprintf(&hexPart, "%02X ", b)
			if b >= 0x20 && b < 0x7F {
				asciiPart.WriteByte(b)
			} else {
				asciiPart.WriteByte('.')
			}
		}

		fmt.Printf("%08X  %-49s |%s|\n", offset+uint32(i), hexPart.String(), asciiPart.String())
	}
}

func runEepromGet(cmd *cobra.Command, args []string) error {
	offset, err := parseOffset(args[0])
	if err != nil {
		return err
	}
	length, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return fmt.Errorf("invalid length %q: %w", args[1], err)
	}
	if length == 0 {
		return fmt.Errorf("length must be at least 1")
	}

	return withClient(time.Duration(eepromTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		data, err := client.GetEeprom(ctx, offset, uint16(length))
		if err != nil {
			return fmt.Errorf("eeprom read failed: %w", err)
		}

		hexDump(offset, data)
		return nil
	})
}

func runEepromSet(cmd *cobra.Command, args []string) error {
	offset, err := parseOffset(args[0])
	if err != nil {
		return err
	}

	cleaned := strings.NewReplacer(":", "", " ", "").Replace(args[1])
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return fmt.Errorf("invalid hex bytes %q: %w", args[1], err)
	}
	if len(data) == 0 {
		return fmt.Errorf("no bytes to write")
	}

	return withClient(time.Duration(eepromTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		if err := client.SetEeprom(ctx, offset, data); err != nil {
			return fmt.Errorf("eeprom write failed: %w", err)
		}

		fmt.Printf("%d bytes written at offset 0x%X\n", len(data), offset)
		return nil
	})
}
