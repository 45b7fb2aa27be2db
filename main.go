// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

// Ulescope is an analyzer and provisioning tool for DECT ULE expansion
// boards speaking the CMND API. It decodes the CMND byte stream from a
// serial port or WebSocket bridge, flags protocol anomalies, and drives
// board provisioning (registration, parameters, EEPROM, regulatory
// region, presets, alerts and voice calls) from the command line or an
// interactive console.
package main

import (
	"os"

	"github.com/Thermoquad/ulescope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
