// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Config file flag
	cfgFile string

	// Debug output flag
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "ulescope",
	Short: "DECT ULE Expansion Board Analyzer",
	Long: `Ulescope - A CLI tool for monitoring and provisioning DECT ULE expansion
boards over the CMND API byte stream.

Provides commands for live traffic decoding, anomaly detection, board
provisioning (registration, parameters, EEPROM, regulatory region), alert
and FUN delivery, voice call control, and capture/replay of sessions.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Defaults for every connection flag may also come from a ulescope.yaml config
file or ULESCOPE_* environment variables; explicit flags win.

For WebSocket authentication, the password is read from the ULESCOPE_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.2.0",
}

func init() {
	cobra.OnInitialize(initConfig)

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ulescope.yaml in cwd or home)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Log every frame exchanged with the board to stderr")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
