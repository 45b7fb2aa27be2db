// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

// CalculateChecksum computes the additive 8-bit checksum for a packet.
// The sum covers the two frame length bytes, the packet header up to but not
// including the checksum byte, and every payload byte.
func CalculateChecksum(frameLength uint16, cookie byte, unitID byte, serviceID ServiceID, messageID byte, payload []byte) byte {
	sum := uint32(frameLength>>8) + uint32(frameLength&0xFF)
	sum += uint32(cookie)
	sum += uint32(unitID)
	sum += uint32(serviceID>>8) + uint32(serviceID&0xFF)
	sum += uint32(messageID)
	for _, b := range payload {
		sum += uint32(b)
	}
	return byte(sum & 0xFF)
}
