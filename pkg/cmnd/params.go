// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"encoding/binary"
	"fmt"
)

// NamedParam describes a board parameter exposed to operators by name
type NamedParam struct {
	Name         string
	ID           EepromParam
	Size         int
	LittleEndian bool // keep_alive is stored little-endian; everything else big-endian
	Description  string
}

// NamedParams lists the operator-facing parameters in display order
var NamedParams = []NamedParam{
	{
		Name:         "keep_alive",
		ID:           ParamHanKeepAliveTimeout,
		Size:         4,
		LittleEndian: true,
		Description:  "Keep alive interval in ms.",
	},
	{
		Name:        "minimum_sleep_time",
		ID:          ParamHanMinSleepTime,
		Size:        4,
		Description: "Minimum time the device should be sleeping between pages, in ms.",
	},
}

// LookupParam finds a named parameter
func LookupParam(name string) (NamedParam, bool) {
	for _, p := range NamedParams {
		if p.Name == name {
			return p, true
		}
	}
	return NamedParam{}, false
}

// EncodeValue renders an integer value in the parameter's wire layout
func (p NamedParam) EncodeValue(value uint32) []byte {
	buf := make([]byte, p.Size)
	if p.LittleEndian {
		binary.LittleEndian.PutUint32(buf, value)
	} else {
		binary.BigEndian.PutUint32(buf, value)
	}
	return buf
}

// DecodeValue reads an integer value from the parameter's wire layout
func (p NamedParam) DecodeValue(data []byte) (uint32, error) {
	if len(data) != p.Size {
		return 0, fmt.Errorf("parameter %s: got %d bytes, expected %d", p.Name, len(data), p.Size)
	}
	if p.LittleEndian {
		return binary.LittleEndian.Uint32(data), nil
	}
	return binary.BigEndian.Uint32(data), nil
}

// Preset names one factory EEPROM preset selectable in production mode
type Preset struct {
	Name string
	ID   byte
}

// Presets lists the factory presets in display order
var Presets = []Preset{
	{"cr_local", 0x00},
	{"cr_cmnd", 0x01},
	{"ac", 0x02},
	{"smoke_uart", 0x03},
	{"smoke", 0x04},
	{"ule_voice_call", 0x05},
	{"ule_voice_call_cmnd", 0x06},
	{"spmkt", 0x07},
	{"ac_uart", 0x08},
	{"simple_pwr_mtr_uart", 0x09},
	{"sws_btn", 0x0A},
	{"wakeup_uart", 0x0B},
	{"simple_pwr_mtr", 0x0C},
	{"euro_thermostat", 0x0D},
	{"euro_wallswitch", 0x0E},
	{"euro_window", 0x0F},
	{"host_extention", 0x10},
	{"smoke_pageable", 0x11},
	{"ac_broadcast", 0x12},
	{"ac_broadcast_cmnd", 0x13},
	{"generic_cmnd", 0x14},
	{"expansion_board", 0x15},
}

// LookupPreset finds a preset by name
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetName returns the name for a preset id, or its hex form when unknown
func PresetName(id byte) string {
	for _, p := range Presets {
		if p.ID == id {
			return p.Name
		}
	}
	return fmt.Sprintf("0x%02X", id)
}

// RegionSettings holds the radio parameters that differ between regulatory
// regions. Each is written to its own EEPROM parameter.
type RegionSettings struct {
	UsDect     byte // ParamDectCarrier
	SupportFcc byte // ParamDectSupportFcc
	FullPower  byte // ParamDectFullPower
	Deviation  byte // ParamDectDeviation
	Pa2Comp    byte // ParamDectPa2Comp
}

// Region pairs a region name with its radio settings
type Region struct {
	Name     string
	Settings RegionSettings
}

// Regions lists the supported regulatory regions in display order
var Regions = []Region{
	{"eu", RegionSettings{UsDect: 0x00, SupportFcc: 0x00, FullPower: 0x7F, Deviation: 0x13, Pa2Comp: 0x3C}},
	{"us", RegionSettings{UsDect: 0x01, SupportFcc: 0x01, FullPower: 0xDE, Deviation: 0x23, Pa2Comp: 0x3C}},
	{"jp", RegionSettings{UsDect: 0x12, SupportFcc: 0x02, FullPower: 0xDE, Deviation: 0x00, Pa2Comp: 0xAC}},
	{"kr", RegionSettings{UsDect: 0x0B, SupportFcc: 0x00, FullPower: 0x7F, Deviation: 0x13, Pa2Comp: 0x3C}},
}

// LookupRegion finds a region by name
func LookupRegion(name string) (Region, bool) {
	for _, r := range Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// EepromSubscriptionOffset is the DECT EEPROM offset of the subscription
// record; zeroing its first byte deletes the base registration.
const EepromSubscriptionOffset = 58
