// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"fmt"
	"time"
)

// Framer implements the CMND byte-stream deframing state machine. It owns the
// reassembly state for exactly one stream: feed it bytes in arrival order from
// a single caller. A frame is emitted exactly once, on its final byte, and the
// framer then resets itself for the next frame. All failures are local; the
// framer discards the partial frame and hunts for the next sync sequence.
type Framer struct {
	state       int
	frameLength uint16 // declared packet length, valid from stateLenLow on
	buffer      []byte // packet bytes (cookie through payload), no framing
	bufferIndex int
	rawBuffer   []byte // everything consumed since the last emit, framing included
}

// NewFramer creates a framer in the sync-hunting state
func NewFramer() *Framer {
	return &Framer{
		state:     stateIdle,
		buffer:    make([]byte, HeaderSize+MaxPayloadSize),
		rawBuffer: make([]byte, 0, 2*MaxFrameSize),
	}
}

// Reset returns the framer to the sync-hunting state
func (f *Framer) Reset() {
	f.state = stateIdle
	f.frameLength = 0
	f.bufferIndex = 0
	f.rawBuffer = f.rawBuffer[:0]
}

// GetRawBytes returns the raw bytes consumed since the last emitted frame,
// including framing bytes and any noise skipped while hunting
func (f *Framer) GetRawBytes() []byte {
	return f.rawBuffer
}

// DecodeByte processes a single byte through the framer state machine.
// Returns a completed message, or nil while the frame is incomplete.
// Returns an error when a partial frame is discarded; the stream stays usable.
func (f *Framer) DecodeByte(b byte) (*Message, error) {
	// Keep the raw view bounded while hunting through garbage
	if len(f.rawBuffer) == cap(f.rawBuffer) {
		n := copy(f.rawBuffer, f.rawBuffer[len(f.rawBuffer)-MaxFrameSize:])
		f.rawBuffer = f.rawBuffer[:n]
	}
	f.rawBuffer = append(f.rawBuffer, b)

	switch f.state {
	case stateIdle:
		if b == SyncByte {
			f.state = stateSync
		}
		return nil, nil

	case stateSync:
		if b == SyncByte {
			f.state = stateLenHigh
		} else {
			// A lone sync byte is noise; resume hunting
			f.state = stateIdle
		}
		return nil, nil

	case stateLenHigh:
		f.frameLength = uint16(b) << 8
		f.state = stateLenLow
		return nil, nil

	case stateLenLow:
		f.frameLength |= uint16(b)
		if f.frameLength < HeaderSize {
			err := f.resync(&FrameError{
				Type:    FrameErrTooShort,
				Message: fmt.Sprintf("declared frame length %d below header size %d", f.frameLength, HeaderSize),
			})
			return nil, err
		}
		if int(f.frameLength)-HeaderSize >= MaxPayloadSize {
			err := f.resync(&FrameError{
				Type:    FrameErrPayloadTooLarge,
				Message: fmt.Sprintf("declared payload %d exceeds max %d", int(f.frameLength)-HeaderSize, MaxPayloadSize-1),
			})
			return nil, err
		}
		f.bufferIndex = 0
		f.state = statePacket
		return nil, nil

	case statePacket:
		if f.bufferIndex >= len(f.buffer) {
			// Unreachable while the length checks above hold
			err := f.resync(&FrameError{
				Type:    FrameErrPayloadTooLarge,
				Message: "packet buffer overflow",
			})
			return nil, err
		}
		f.buffer[f.bufferIndex] = b
		f.bufferIndex++
		if f.bufferIndex < int(f.frameLength) {
			return nil, nil
		}
		return f.complete()

	default:
		f.Reset()
		return nil, fmt.Errorf("invalid framer state: %d", f.state)
	}
}

// complete validates the finished frame and emits the decoded message
func (f *Framer) complete() (*Message, error) {
	packet := f.buffer[:f.frameLength]
	payload := packet[HeaderSize:]
	serviceID := ServiceID(packet[2])<<8 | ServiceID(packet[3])

	calculated := CalculateChecksum(f.frameLength, packet[0], packet[1], serviceID, packet[4], payload)
	if calculated != packet[5] {
		err := &FrameError{
			Type:    FrameErrChecksumInvalid,
			Message: fmt.Sprintf("checksum mismatch: expected 0x%02X, got 0x%02X", calculated, packet[5]),
		}
		f.Reset()
		return nil, err
	}

	msg := &Message{
		cookie:    packet[0],
		unitID:    packet[1],
		serviceID: serviceID,
		messageID: packet[4],
		checksum:  packet[5],
		payload:   append([]byte(nil), payload...),
		timestamp: time.Now(),
	}
	f.Reset()
	return msg, nil
}

// resync discards the in-progress frame and wraps the cause
func (f *Framer) resync(cause *FrameError) error {
	f.Reset()
	return &FrameError{
		Type:    FrameErrResynchronized,
		Message: fmt.Sprintf("frame discarded, hunting for sync: %s", cause.Message),
		Cause:   cause,
	}
}
