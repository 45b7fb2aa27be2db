// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"fmt"
	"time"
)

// Message represents a decoded CMND protocol packet
type Message struct {
	cookie    byte
	unitID    byte
	serviceID ServiceID
	messageID byte
	checksum  byte
	payload   []byte
	timestamp time.Time
}

// NewMessage creates a message with the default cookie and a checksum
// computed from the remaining fields
func NewMessage(unitID byte, serviceID ServiceID, messageID byte, payload []byte) *Message {
	frameLength := uint16(HeaderSize + len(payload))
	return &Message{
		cookie:    DefaultCookie,
		unitID:    unitID,
		serviceID: serviceID,
		messageID: messageID,
		checksum:  CalculateChecksum(frameLength, DefaultCookie, unitID, serviceID, messageID, payload),
		payload:   payload,
		timestamp: time.Now(),
	}
}

// ParseMessage parses a single packet from a complete buffer laid out as
// cookie, unitId, serviceId (big-endian), messageId, checksum, payload.
// The checksum byte is recorded, not verified; stream framing verifies it
// before this layout is ever reached.
func ParseMessage(buf []byte) (*Message, error) {
	if len(buf) < HeaderSize {
		return nil, &FrameError{
			Type:    FrameErrTooShort,
			Message: fmt.Sprintf("buffer too short: %d bytes (header needs %d)", len(buf), HeaderSize),
		}
	}

	dataLength := len(buf) - HeaderSize
	if dataLength >= MaxPayloadSize {
		return nil, &FrameError{
			Type:    FrameErrPayloadTooLarge,
			Message: fmt.Sprintf("payload too large: %d bytes (max %d)", dataLength, MaxPayloadSize-1),
		}
	}

	payload := make([]byte, dataLength)
	copy(payload, buf[HeaderSize:])

	return &Message{
		cookie:    buf[0],
		unitID:    buf[1],
		serviceID: ServiceID(buf[2])<<8 | ServiceID(buf[3]),
		messageID: buf[4],
		checksum:  buf[5],
		payload:   payload,
		timestamp: time.Now(),
	}, nil
}

// Cookie returns the framing cookie byte
func (m *Message) Cookie() byte {
	return m.cookie
}

// UnitID returns the addressed sub-unit
func (m *Message) UnitID() byte {
	return m.unitID
}

// ServiceID returns the protocol service identifier
func (m *Message) ServiceID() ServiceID {
	return m.serviceID
}

// MessageID returns the message identifier within the service
func (m *Message) MessageID() byte {
	return m.messageID
}

// Checksum returns the checksum byte as carried on the wire
func (m *Message) Checksum() byte {
	return m.checksum
}

// DataLength returns the payload byte count
func (m *Message) DataLength() uint16 {
	return uint16(len(m.payload))
}

// Payload returns the raw payload bytes
func (m *Message) Payload() []byte {
	return m.payload
}

// Timestamp returns the message's decode timestamp
func (m *Message) Timestamp() time.Time {
	return m.timestamp
}

// Is reports whether the message matches a service and message identifier
func (m *Message) Is(serviceID ServiceID, messageID byte) bool {
	return m.serviceID == serviceID && m.messageID == messageID
}

// String renders the message as SERVICE<0xNNNN> MESSAGE<0xNN> with names
// resolved where known
func (m *Message) String() string {
	return fmt.Sprintf("%s<0x%04X> %s<0x%02X>",
		ServiceName(m.serviceID), uint16(m.serviceID),
		MessageName(m.serviceID, m.messageID), m.messageID)
}
