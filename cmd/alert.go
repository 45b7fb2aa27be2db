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

var (
	alertTimeout int
	alertUnit    int
	alertClear   bool
	alertTamper  bool
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Raise or clear an alert through the base",
	Long: `Send a smoke-detector alert notification to the base.

The board must be registered; the command waits for the base's delivery
confirmation. --clear sends the alert-cleared state instead of alerting,
--tamper raises a tamper alert instead of a smoke alert.`,
	RunE: runAlert,
}

func init() {
	rootCmd.AddCommand(alertCmd)
	alertCmd.Flags().IntVar(&alertTimeout, "timeout", 15, "Timeout in seconds for the delivery confirmation")
	alertCmd.Flags().IntVar(&alertUnit, "unit", 2, "Unit number the alert originates from")
	alertCmd.Flags().BoolVar(&alertClear, "clear", false, "Send the cleared state instead of alerting")
	alertCmd.Flags().BoolVar(&alertTamper, "tamper", false, "Raise a tamper alert instead of a smoke alert")
}

func runAlert(cmd *cobra.Command, args []string) error {
	if alertUnit < 0 || alertUnit > 255 {
		return fmt.Errorf("unit must be between 0 and 255, got %d", alertUnit)
	}

	return withClient(time.Duration(alertTimeout)*time.Second, func(ctx context.Context, client *dueb.Client, connInfo string) error {
		state := uint32(cmnd.AlertStateAlerting)
		what := "Alert"
		if alertClear {
			state = cmnd.AlertStateCleared
			what = "Alert clear"
		}

		if alertTamper {
			if err := client.SendTamper(ctx, byte(alertUnit), cmnd.FunUnitTypeSmokeDetector, state); err != nil {
				return fmt.Errorf("sending tamper alert: %w", err)
			}
			fmt.Printf("Tamper %s from unit %d delivered to the base\n", strings.ToLower(what), alertUnit)
			return nil
		}

		if err := client.SendAlert(ctx, byte(alertUnit), cmnd.FunUnitTypeSmokeDetector, state); err != nil {
			return fmt.Errorf("sending alert: %w", err)
		}

		fmt.Printf("%s from unit %d delivered to the base\n", what, alertUnit)
		return nil
	})
}
