// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
	"github.com/Thermoquad/ulescope/pkg/dueb"
)

var (
	registerTimeout   int
	registerBase      string
	deregisterTimeout int
	deregisterLocally bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the board with a DECT ULE base",
	Long: `Register the expansion board with a DECT ULE base station.

The base must be in pairing (subscription) mode before running this command.
By default the board registers with any base in range; --base restricts the
search to the base with the given RFPI (10 hex digits, colons optional).

Registration can take a while: the board scans, locks to the base and runs
the access-rights exchange before the result comes back.`,
	RunE: runRegister,
}

var deregisterCmd = &cobra.Command{
	Use:   "deregister",
	Short: "Drop the board's base registration",
	Long: `Ask the expansion board to delete its registration with the base.

The board tells the base it is leaving and clears its own subscription data.
If the base is gone or out of reach that exchange never completes; --local
wipes the subscription record in the board's EEPROM instead, without talking
to the base.`,
	RunE: runDeregister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(deregisterCmd)
	registerCmd.Flags().IntVar(&registerTimeout, "timeout", 60, "Timeout in seconds for the whole registration")
	registerCmd.Flags().StringVar(&registerBase, "base", "", "RFPI of the base to register with (e.g. 02:3F:10:23:81)")
	deregisterCmd.Flags().IntVar(&deregisterTimeout, "timeout", 10, "Timeout in seconds")
	deregisterCmd.Flags().BoolVar(&deregisterLocally, "local", false, "Wipe the subscription in EEPROM without telling the base")
}

// parseRfpi converts an RFPI string into a base wanted IE
func parseRfpi(s string) (*cmnd.IEBaseWanted, error) {
	cleaned := strings.NewReplacer(":", "", "-", "", " ", "").Replace(s)
	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid RFPI %q: %w", s, err)
	}
	if len(raw) != cmnd.RfpiSize {
		return nil, fmt.Errorf("invalid RFPI %q: want %d bytes, got %d", s, cmnd.RfpiSize, len(raw))
	}
	base := &cmnd.IEBaseWanted{}
	copy(base.Rfpi[:], raw)
	return base, nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	var base *cmnd.IEBaseWanted
	if registerBase != "" {
		var err error
		base, err = parseRfpi(registerBase)
		if err != nil {
			return err
		}
	}

	return withClient(time.Duration(registerTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		if base != nil {
			fmt.Printf("Registering with base %s...\n", registerBase)
		} else {
			fmt.Printf("Registering with any base in range...\n")
		}
		fmt.Printf("(make sure the base is in pairing mode)\n\n")

		reg, err := client.Register(ctx, base)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Printf("Registered: device address 0x%04X\n", reg.DeviceAddress)
		return nil
	})
}

func runDeregister(cmd *cobra.Command, args []string) error {
	return withClient(time.Duration(deregisterTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		if deregisterLocally {
			if err := client.DeleteSubscription(ctx); err != nil {
				return fmt.Errorf("wiping subscription failed: %w", err)
			}
			fmt.Printf("Subscription wiped (takes effect at the next reset)\n")
			return nil
		}

		if err := client.Deregister(ctx); err != nil {
			return fmt.Errorf("deregistration failed: %w", err)
		}
		fmt.Printf("Deregistered\n")
		return nil
	})
}
