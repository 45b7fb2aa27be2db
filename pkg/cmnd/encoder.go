package cmnd

import (
	"encoding/binary"
	"fmt"
)

// Encoder encodes CMND messages for transmission.
// Handles stream framing, length fields, and checksum calculation.
type Encoder struct{}

// NewEncoder creates a new CMND frame encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode encodes a Message to wire format, preserving its cookie and checksum
// bytes exactly as carried. Messages built locally always carry a checksum
// consistent with their fields, so the output is a valid frame; a re-encoded
// capture stays byte-identical to what was observed.
func (e *Encoder) Encode(m *Message) ([]byte, error) {
	if len(m.payload) >= MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(m.payload), MaxPayloadSize-1)
	}
	return encodeFrame(m.cookie, m.unitID, m.serviceID, m.messageID, m.checksum, m.payload), nil
}

// EncodeMessageFromValues creates a complete wire-formatted CMND frame with
// the default cookie and a freshly computed checksum.
func EncodeMessageFromValues(unitID byte, serviceID ServiceID, messageID byte, payload []byte) ([]byte, error) {
	if len(payload) >= MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize-1)
	}
	frameLength := uint16(HeaderSize + len(payload))
	checksum := CalculateChecksum(frameLength, DefaultCookie, unitID, serviceID, messageID, payload)
	return encodeFrame(DefaultCookie, unitID, serviceID, messageID, checksum, payload), nil
}

// EncodeMessage encodes an existing Message back to wire format.
// Panics on encoding error (use Encoder.Encode for error handling).
func EncodeMessage(m *Message) []byte {
	data, err := NewEncoder().Encode(m)
	if err != nil {
		panic(fmt.Sprintf("cmnd: encode error: %v", err))
	}
	return data
}

// encodeFrame lays out sync, length, header fields, and payload
func encodeFrame(cookie byte, unitID byte, serviceID ServiceID, messageID byte, checksum byte, payload []byte) []byte {
	frameLength := uint16(HeaderSize + len(payload))
	frame := make([]byte, 0, FrameOverhead+int(frameLength))

	frame = append(frame, SyncByte, SyncByte)
	frame = binary.BigEndian.AppendUint16(frame, frameLength)
	frame = append(frame, cookie, unitID)
	frame = binary.BigEndian.AppendUint16(frame, uint16(serviceID))
	frame = append(frame, messageID, checksum)
	frame = append(frame, payload...)

	return frame
}
