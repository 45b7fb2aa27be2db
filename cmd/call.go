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
	callTimeout int
	callUnit    int
	callDigits  string
	callName    string
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Control ULE voice calls",
	Long: `Place and end ULE voice calls from the board's voice call unit.

The board must be registered with a base that supports ULE voice. "call
start" waits until the base reports the call connected; audio then flows
between the board's codec and the base until "call end".`,
}

var callStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Place a call and wait until it is connected",
	RunE:  runCallStart,
}

var callEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Hang up the active call",
	RunE:  runCallEnd,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.AddCommand(callStartCmd)
	callCmd.AddCommand(callEndCmd)
	callCmd.PersistentFlags().IntVar(&callTimeout, "timeout", 30, "Timeout in seconds")
	callCmd.PersistentFlags().IntVar(&callUnit, "unit", 1, "Voice call unit number")
	callStartCmd.Flags().StringVar(&callDigits, "digits", "", "Digits to dial")
	callStartCmd.Flags().StringVar(&callName, "name", "", "Caller name to present")
}

func runCallStart(cmd *cobra.Command, args []string) error {
	if callUnit < 0 || callUnit > 255 {
		return fmt.Errorf("unit must be between 0 and 255, got %d", callUnit)
	}

	settings := &cmnd.IECallSettings{}
	if callDigits != "" {
		settings.FieldMask |= cmnd.CallSettingDigits
		settings.Digits = callDigits
	}
	if callName != "" {
		settings.FieldMask |= cmnd.CallSettingOtherPartyName
		settings.OtherPartyName = callName
	}

	return withClient(time.Duration(callTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		if callDigits != "" {
			fmt.Printf("Calling %s...\n", callDigits)
		} else {
			fmt.Printf("Calling...\n")
		}

		if err := client.StartCall(ctx, byte(callUnit), settings); err != nil {
			return fmt.Errorf("starting call: %w", err)
		}

		fmt.Printf("Call connected\n")
		return nil
	})
}

func runCallEnd(cmd *cobra.Command, args []string) error {
	if callUnit < 0 || callUnit > 255 {
		return fmt.Errorf("unit must be between 0 and 255, got %d", callUnit)
	}

	return withClient(time.Duration(callTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		if err := client.EndCall(ctx, byte(callUnit)); err != nil {
			return fmt.Errorf("ending call: %w", err)
		}

		fmt.Printf("Call ended\n")
		return nil
	})
}
