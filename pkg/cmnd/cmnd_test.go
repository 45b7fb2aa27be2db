// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"bytes"
	"strings"
	"testing"
)

// ============================================================
// Frame Test Helpers
// ============================================================

// helloFrame is a complete GENERAL HELLO_REQ frame:
// sync, length 6, cookie 0x68, unit 0, service 0x0000, message 0x0A, checksum
var helloFrame = []byte{0xDA, 0xDA, 0x00, 0x06, 0x68, 0x00, 0x00, 0x00, 0x0A, 0x78}

// feedFrame feeds every byte of a frame and returns the emitted message
// along with the last error seen
func feedFrame(f *Framer, frame []byte) (*Message, error) {
	var msg *Message
	var lastErr error
	for _, b := range frame {
		m, err := f.DecodeByte(b)
		if err != nil {
			lastErr = err
		}
		if m != nil {
			msg = m
		}
	}
	return msg, lastErr
}

// mustEncode builds a wire frame from values, failing the test on error
func mustEncode(t *testing.T, unitID byte, serviceID ServiceID, messageID byte, payload []byte) []byte {
	t.Helper()
	frame, err := EncodeMessageFromValues(unitID, serviceID, messageID, payload)
	if err != nil {
		t.Fatalf("EncodeMessageFromValues failed: %v", err)
	}
	return frame
}

// ============================================================
// Checksum Tests
// ============================================================

func TestCalculateChecksum_KnownFrame(t *testing.T) {
	// HELLO_REQ: length 0x0006, cookie 0x68, unit 0, service 0x0000, message 0x0A
	checksum := CalculateChecksum(0x0006, 0x68, 0x00, ServiceGeneral, MsgGeneralHelloReq, nil)
	if checksum != 0x78 {
		t.Errorf("checksum mismatch: expected 0x78, got 0x%02X", checksum)
	}
}

func TestCalculateChecksum_Wraparound(t *testing.T) {
	// 0x01 + 6*0xFF = 1531 = 0x5FB, low byte 0xFB
	checksum := CalculateChecksum(0x01FF, 0xFF, 0xFF, ServiceID(0xFFFF), 0xFF, nil)
	if checksum != 0xFB {
		t.Errorf("checksum should keep only the low byte: expected 0xFB, got 0x%02X", checksum)
	}
}

func TestCalculateChecksum_PayloadContribution(t *testing.T) {
	base := CalculateChecksum(0x000A, 0x68, 0x01, ServiceParameters, MsgParamGetReq, []byte{0x10, 0x20})

	// A zero byte adds nothing
	withZero := CalculateChecksum(0x000A, 0x68, 0x01, ServiceParameters, MsgParamGetReq, []byte{0x10, 0x20, 0x00})
	if withZero != base {
		t.Errorf("zero payload byte changed checksum: 0x%02X != 0x%02X", withZero, base)
	}

	// A 0x01 byte adds exactly one
	withOne := CalculateChecksum(0x000A, 0x68, 0x01, ServiceParameters, MsgParamGetReq, []byte{0x10, 0x20, 0x01})
	if withOne != base+1 {
		t.Errorf("0x01 payload byte should add one: expected 0x%02X, got 0x%02X", base+1, withOne)
	}
}

func TestCalculateChecksum_Deterministic(t *testing.T) {
	payload := []byte{0x1E, 0x00, 0x01, 0xFF}
	c1 := CalculateChecksum(0x000A, 0x68, 0x00, ServiceProduction, MsgProdSpecificPresetReq, payload)
	c2 := CalculateChecksum(0x000A, 0x68, 0x00, ServiceProduction, MsgProdSpecificPresetReq, payload)
	if c1 != c2 {
		t.Errorf("checksum should be deterministic: 0x%02X != 0x%02X", c1, c2)
	}
}

// ============================================================
// Buffer Parsing Tests
// ============================================================

func TestParseMessage_MinimalHeader(t *testing.T) {
	buf := []byte{0xAA, 0x03, 0x00, 0x01, 0x05, 0x7A}

	m, err := ParseMessage(buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if m.Cookie() != 0xAA {
		t.Errorf("Cookie mismatch: expected 0xAA, got 0x%02X", m.Cookie())
	}
	if m.UnitID() != 3 {
		t.Errorf("UnitID mismatch: expected 3, got %d", m.UnitID())
	}
	if m.ServiceID() != ServiceDeviceManagement {
		t.Errorf("ServiceID mismatch: expected 0x0001, got 0x%04X", uint16(m.ServiceID()))
	}
	if m.MessageID() != 5 {
		t.Errorf("MessageID mismatch: expected 5, got %d", m.MessageID())
	}
	if m.Checksum() != 0x7A {
		t.Errorf("Checksum mismatch: expected 0x7A, got 0x%02X", m.Checksum())
	}
	if m.DataLength() != 0 {
		t.Errorf("DataLength mismatch: expected 0, got %d", m.DataLength())
	}
}

func TestParseMessage_TooShort(t *testing.T) {
	m, err := ParseMessage([]byte{0x68, 0x00, 0x00, 0x00, 0x0A})
	if err == nil {
		t.Fatal("Expected error for 5-byte buffer")
	}
	if m != nil {
		t.Error("Expected nil message on error")
	}
	if !IsFrameError(err, FrameErrTooShort) {
		t.Errorf("Expected FrameErrTooShort, got %v", err)
	}
}

func TestParseMessage_Empty(t *testing.T) {
	_, err := ParseMessage([]byte{})
	if !IsFrameError(err, FrameErrTooShort) {
		t.Errorf("Expected FrameErrTooShort for empty buffer, got %v", err)
	}
}

func TestParseMessage_WithPayload(t *testing.T) {
	payload := []byte{0x1E, 0x00, 0x01, 0xFF}
	buf := append([]byte{0x68, 0x00, 0x02, 0x0B, 0x12, 0x00}, payload...)

	m, err := ParseMessage(buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.DataLength() != 4 {
		t.Errorf("DataLength mismatch: expected 4, got %d", m.DataLength())
	}
	if !bytes.Equal(m.Payload(), payload) {
		t.Errorf("Payload mismatch: expected % X, got % X", payload, m.Payload())
	}
	if m.ServiceID() != ServiceProduction {
		t.Errorf("ServiceID mismatch: expected 0x020B, got 0x%04X", uint16(m.ServiceID()))
	}
}

func TestParseMessage_PayloadSizeBoundary(t *testing.T) {
	// Largest accepted payload is MaxPayloadSize-1
	largest := make([]byte, HeaderSize+MaxPayloadSize-1)
	m, err := ParseMessage(largest)
	if err != nil {
		t.Fatalf("Parse error at largest accepted size: %v", err)
	}
	if int(m.DataLength()) != MaxPayloadSize-1 {
		t.Errorf("DataLength mismatch: expected %d, got %d", MaxPayloadSize-1, m.DataLength())
	}

	// One byte more is rejected
	oversize := make([]byte, HeaderSize+MaxPayloadSize)
	m, err = ParseMessage(oversize)
	if err == nil {
		t.Fatal("Expected error one byte past the payload limit")
	}
	if m != nil {
		t.Error("Expected nil message on error")
	}
	if !IsFrameError(err, FrameErrPayloadTooLarge) {
		t.Errorf("Expected FrameErrPayloadTooLarge, got %v", err)
	}
}

func TestParseMessage_ChecksumRecordedNotVerified(t *testing.T) {
	// Nothing about 0xEE is consistent with the other fields
	m, err := ParseMessage([]byte{0x68, 0x00, 0x00, 0x00, 0x0A, 0xEE})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.Checksum() != 0xEE {
		t.Errorf("Checksum should be recorded as carried: expected 0xEE, got 0x%02X", m.Checksum())
	}
}

func TestParseMessage_CopiesPayload(t *testing.T) {
	buf := []byte{0x68, 0x00, 0x00, 0x00, 0x0A, 0x78, 0x11, 0x22}
	m, err := ParseMessage(buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	buf[6] = 0xFF
	if m.Payload()[0] != 0x11 {
		t.Error("Payload should be copied, not aliased to the input buffer")
	}
}

// ============================================================
// Message Tests
// ============================================================

func TestNewMessage(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x01, 0x00}
	m := NewMessage(2, ServiceAlert, MsgAlertNotifyStatusReq, payload)

	if m.Cookie() != DefaultCookie {
		t.Errorf("Cookie mismatch: expected 0x%02X, got 0x%02X", DefaultCookie, m.Cookie())
	}
	if m.UnitID() != 2 {
		t.Errorf("UnitID mismatch: expected 2, got %d", m.UnitID())
	}
	if m.ServiceID() != ServiceAlert {
		t.Errorf("ServiceID mismatch: expected 0x0100, got 0x%04X", uint16(m.ServiceID()))
	}
	if m.MessageID() != MsgAlertNotifyStatusReq {
		t.Errorf("MessageID mismatch: expected 0x%02X, got 0x%02X", MsgAlertNotifyStatusReq, m.MessageID())
	}

	expected := CalculateChecksum(uint16(HeaderSize+len(payload)), DefaultCookie, 2, ServiceAlert, MsgAlertNotifyStatusReq, payload)
	if m.Checksum() != expected {
		t.Errorf("Checksum mismatch: expected 0x%02X, got 0x%02X", expected, m.Checksum())
	}
	if m.Timestamp().IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestMessage_Is(t *testing.T) {
	m := NewHelloRequest()
	if !m.Is(ServiceGeneral, MsgGeneralHelloReq) {
		t.Error("Is() should match the message's own service and id")
	}
	if m.Is(ServiceGeneral, MsgGeneralHelloInd) {
		t.Error("Is() should not match a different message id")
	}
	if m.Is(ServiceSystem, MsgGeneralHelloReq) {
		t.Error("Is() should not match a different service")
	}
}

func TestMessage_String(t *testing.T) {
	m := NewMessage(0, ServiceProduction, MsgProdCfm, nil)
	s := m.String()
	if !strings.Contains(s, "PRODUCTION") {
		t.Errorf("String should contain the service name, got '%s'", s)
	}
	if !strings.Contains(s, "CFM") {
		t.Errorf("String should contain the message name, got '%s'", s)
	}
	if !strings.Contains(s, "0x020B") {
		t.Errorf("String should contain the service id, got '%s'", s)
	}
}

// ============================================================
// Framer Tests
// ============================================================

func TestFramer_KnownFrame(t *testing.T) {
	f := NewFramer()

	// Every byte before the last must emit nothing
	for i, b := range helloFrame[:len(helloFrame)-1] {
		m, err := f.DecodeByte(b)
		if err != nil {
			t.Fatalf("Unexpected error at byte %d: %v", i, err)
		}
		if m != nil {
			t.Fatalf("Message emitted early at byte %d", i)
		}
	}

	m, err := f.DecodeByte(helloFrame[len(helloFrame)-1])
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if m == nil {
		t.Fatal("Expected message on final byte")
	}

	if m.Cookie() != DefaultCookie {
		t.Errorf("Cookie mismatch: expected 0x68, got 0x%02X", m.Cookie())
	}
	if m.UnitID() != 0 {
		t.Errorf("UnitID mismatch: expected 0, got %d", m.UnitID())
	}
	if !m.Is(ServiceGeneral, MsgGeneralHelloReq) {
		t.Errorf("Expected GENERAL HELLO_REQ, got %s", m)
	}
	if m.Checksum() != 0x78 {
		t.Errorf("Checksum mismatch: expected 0x78, got 0x%02X", m.Checksum())
	}
	if m.DataLength() != 0 {
		t.Errorf("DataLength mismatch: expected 0, got %d", m.DataLength())
	}
}

func TestFramer_RoundTrip(t *testing.T) {
	status := &IEGeneralStatus{PowerupMode: PowerupModeNormal, RegStatus: RegStatusRegistered, DeviceID: 0x1234}
	alert := &IEAlert{UnitType: FunUnitTypeSmokeDetector, State: AlertStateAlerting}

	tests := []struct {
		name      string
		unitID    byte
		serviceID ServiceID
		messageID byte
		payload   []byte
	}{
		{
			name:      "hello request with no payload",
			unitID:    0,
			serviceID: ServiceGeneral,
			messageID: MsgGeneralHelloReq,
		},
		{
			name:      "status response with one IE",
			unitID:    0,
			serviceID: ServiceGeneral,
			messageID: MsgGeneralGetStatusRes,
			payload:   status.Pack(),
		},
		{
			name:      "alert notification from unit 2",
			unitID:    2,
			serviceID: ServiceAlert,
			messageID: MsgAlertNotifyStatusReq,
			payload:   alert.Pack(),
		},
		{
			name:      "largest accepted payload",
			unitID:    0,
			serviceID: ServiceFun,
			messageID: MsgFunRecvInd,
			payload:   bytes.Repeat([]byte{0x5A}, MaxPayloadSize-1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := mustEncode(t, tt.unitID, tt.serviceID, tt.messageID, tt.payload)

			m, err := feedFrame(NewFramer(), frame)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if m == nil {
				t.Fatal("Framer did not produce a message")
			}

			if m.UnitID() != tt.unitID {
				t.Errorf("UnitID mismatch: expected %d, got %d", tt.unitID, m.UnitID())
			}
			if m.ServiceID() != tt.serviceID {
				t.Errorf("ServiceID mismatch: expected 0x%04X, got 0x%04X", uint16(tt.serviceID), uint16(m.ServiceID()))
			}
			if m.MessageID() != tt.messageID {
				t.Errorf("MessageID mismatch: expected 0x%02X, got 0x%02X", tt.messageID, m.MessageID())
			}
			if !bytes.Equal(m.Payload(), tt.payload) {
				t.Errorf("Payload mismatch: expected %d bytes, got %d", len(tt.payload), len(m.Payload()))
			}
		})
	}
}

func TestFramer_MatchesBufferParse(t *testing.T) {
	param := &IEParameter{Type: ParamAddressHanEeprom, ID: byte(ParamHanKeepAliveTimeout)}
	frame := mustEncode(t, 1, ServiceParameters, MsgParamGetReq, param.Pack())

	streamed, err := feedFrame(NewFramer(), frame)
	if err != nil {
		t.Fatalf("Stream decode error: %v", err)
	}
	if streamed == nil {
		t.Fatal("Framer did not produce a message")
	}

	// The packet starts after sync and length
	parsed, err := ParseMessage(frame[FrameOverhead:])
	if err != nil {
		t.Fatalf("Buffer parse error: %v", err)
	}

	if streamed.Cookie() != parsed.Cookie() {
		t.Errorf("Cookie mismatch: stream 0x%02X, buffer 0x%02X", streamed.Cookie(), parsed.Cookie())
	}
	if streamed.UnitID() != parsed.UnitID() {
		t.Errorf("UnitID mismatch: stream %d, buffer %d", streamed.UnitID(), parsed.UnitID())
	}
	if streamed.ServiceID() != parsed.ServiceID() {
		t.Errorf("ServiceID mismatch: stream 0x%04X, buffer 0x%04X", uint16(streamed.ServiceID()), uint16(parsed.ServiceID()))
	}
	if streamed.MessageID() != parsed.MessageID() {
		t.Errorf("MessageID mismatch: stream 0x%02X, buffer 0x%02X", streamed.MessageID(), parsed.MessageID())
	}
	if streamed.Checksum() != parsed.Checksum() {
		t.Errorf("Checksum mismatch: stream 0x%02X, buffer 0x%02X", streamed.Checksum(), parsed.Checksum())
	}
	if !bytes.Equal(streamed.Payload(), parsed.Payload()) {
		t.Error("Payload mismatch between stream and buffer paths")
	}
}

func TestFramer_DeclaredLengthBelowHeader(t *testing.T) {
	f := NewFramer()

	f.DecodeByte(0xDA)
	f.DecodeByte(0xDA)
	f.DecodeByte(0x00)
	m, err := f.DecodeByte(0x05)

	if err == nil {
		t.Fatal("Expected error for declared length below header size")
	}
	if m != nil {
		t.Error("Expected nil message on error")
	}
	if !IsFrameError(err, FrameErrResynchronized) {
		t.Errorf("Expected FrameErrResynchronized, got %v", err)
	}
	if !IsFrameError(err, FrameErrTooShort) {
		t.Errorf("Resync should wrap FrameErrTooShort, got %v", err)
	}

	// The stream stays usable
	recovered, err := feedFrame(f, helloFrame)
	if err != nil {
		t.Fatalf("Decode error after resync: %v", err)
	}
	if recovered == nil {
		t.Fatal("Expected message after resync")
	}
}

func TestFramer_PayloadOversizeByOne(t *testing.T) {
	f := NewFramer()

	// Declared length 0x0106 = header + MaxPayloadSize, one past the limit
	f.DecodeByte(0xDA)
	f.DecodeByte(0xDA)
	f.DecodeByte(0x01)
	m, err := f.DecodeByte(0x06)

	if err == nil {
		t.Fatal("Expected error one byte past the payload limit")
	}
	if m != nil {
		t.Error("Expected nil message on error")
	}
	if !IsFrameError(err, FrameErrResynchronized) {
		t.Errorf("Expected FrameErrResynchronized, got %v", err)
	}
	if !IsFrameError(err, FrameErrPayloadTooLarge) {
		t.Errorf("Resync should wrap FrameErrPayloadTooLarge, got %v", err)
	}
}

func TestFramer_ChecksumMismatch(t *testing.T) {
	f := NewFramer()

	frame := append([]byte(nil), helloFrame...)
	frame[len(frame)-1] ^= 0xFF

	m, err := feedFrame(f, frame)
	if err == nil {
		t.Fatal("Expected checksum error")
	}
	if m != nil {
		t.Error("Expected nil message on checksum error")
	}
	if !IsFrameError(err, FrameErrChecksumInvalid) {
		t.Errorf("Expected FrameErrChecksumInvalid, got %v", err)
	}
	if IsFrameError(err, FrameErrResynchronized) {
		t.Error("Checksum failure is reported directly, not as a resync")
	}

	// A following valid frame decodes
	recovered, err := feedFrame(f, helloFrame)
	if err != nil {
		t.Fatalf("Decode error after checksum failure: %v", err)
	}
	if recovered == nil {
		t.Fatal("Expected message after checksum failure")
	}
}

func TestFramer_IgnoresNoiseBeforeSync(t *testing.T) {
	f := NewFramer()

	noise := []byte{0x00, 0x13, 0xFF, 0xDA, 0x42, 0x99}
	for i, b := range noise {
		m, err := f.DecodeByte(b)
		if err != nil {
			t.Fatalf("Unexpected error on noise byte %d: %v", i, err)
		}
		if m != nil {
			t.Fatalf("Unexpected message on noise byte %d", i)
		}
	}

	m, err := feedFrame(f, helloFrame)
	if err != nil {
		t.Fatalf("Decode error after noise: %v", err)
	}
	if m == nil {
		t.Fatal("Expected message after noise")
	}
}

func TestFramer_RecoversWithinOneFrame(t *testing.T) {
	f := NewFramer()

	// A truncated frame start swallows the head of the next frame; the
	// checksum catches it and the frame after that decodes cleanly.
	stream := []byte{0xDA, 0xDA, 0x00, 0x08}
	stream = append(stream, helloFrame...)
	stream = append(stream, helloFrame...)

	var messages []*Message
	var errs []error
	for _, b := range stream {
		m, err := f.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
		}
		if m != nil {
			messages = append(messages, m)
		}
	}

	if len(errs) != 1 {
		t.Fatalf("Expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if !IsFrameError(errs[0], FrameErrChecksumInvalid) {
		t.Errorf("Expected FrameErrChecksumInvalid, got %v", errs[0])
	}
	if len(messages) != 1 {
		t.Fatalf("Expected exactly 1 message, got %d", len(messages))
	}
	if !messages[0].Is(ServiceGeneral, MsgGeneralHelloReq) {
		t.Errorf("Expected GENERAL HELLO_REQ, got %s", messages[0])
	}
}

func TestFramer_PayloadMayContainSyncBytes(t *testing.T) {
	payload := []byte{SyncByte, SyncByte, SyncByte}
	frame := mustEncode(t, 0, ServiceDebug, 0x01, payload)

	m, err := feedFrame(NewFramer(), frame)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if m == nil {
		t.Fatal("Expected message")
	}
	if !bytes.Equal(m.Payload(), payload) {
		t.Errorf("Payload mismatch: expected % X, got % X", payload, m.Payload())
	}
}

func TestFramer_EmitsEachFrameOnce(t *testing.T) {
	f := NewFramer()

	resetFrame := mustEncode(t, 0, ServiceSystem, MsgSysResetReq, nil)
	stream := append(append([]byte(nil), helloFrame...), resetFrame...)

	var emitted []int
	for i, b := range stream {
		m, err := f.DecodeByte(b)
		if err != nil {
			t.Fatalf("Decode error at byte %d: %v", i, err)
		}
		if m != nil {
			emitted = append(emitted, i)
		}
	}

	if len(emitted) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(emitted))
	}
	if emitted[0] != len(helloFrame)-1 {
		t.Errorf("First message should emit on its final byte %d, got %d", len(helloFrame)-1, emitted[0])
	}
	if emitted[1] != len(stream)-1 {
		t.Errorf("Second message should emit on its final byte %d, got %d", len(stream)-1, emitted[1])
	}
}

func TestFramer_Reset(t *testing.T) {
	f := NewFramer()

	f.DecodeByte(0xDA)
	f.DecodeByte(0xDA)
	f.DecodeByte(0x00)
	f.DecodeByte(0x08)
	f.Reset()

	m, err := feedFrame(f, helloFrame)
	if err != nil {
		t.Fatalf("Decode error after reset: %v", err)
	}
	if m == nil {
		t.Fatal("Expected message after reset")
	}
}

func TestFramer_GetRawBytes(t *testing.T) {
	f := NewFramer()

	f.DecodeByte(0x13)
	f.DecodeByte(0xDA)
	f.DecodeByte(0xDA)

	raw := f.GetRawBytes()
	if !bytes.Equal(raw, []byte{0x13, 0xDA, 0xDA}) {
		t.Errorf("GetRawBytes mismatch: expected 13 DA DA, got % X", raw)
	}

	// Emitting a frame clears the raw view
	f.Reset()
	if m, _ := feedFrame(f, helloFrame); m == nil {
		t.Fatal("Expected message")
	}
	if len(f.GetRawBytes()) != 0 {
		t.Errorf("Raw buffer should be empty after an emitted frame, got %d bytes", len(f.GetRawBytes()))
	}
}

func TestFramer_RawBufferBounded(t *testing.T) {
	f := NewFramer()

	for i := 0; i < 5*MaxFrameSize; i++ {
		f.DecodeByte(0x00)
	}

	if len(f.GetRawBytes()) > 2*MaxFrameSize {
		t.Errorf("Raw buffer should stay bounded: %d bytes", len(f.GetRawBytes()))
	}
}

func TestFramer_InvalidState(t *testing.T) {
	f := NewFramer()
	f.state = 999

	_, err := f.DecodeByte(0x00)
	if err == nil {
		t.Fatal("Expected invalid state error")
	}
	if !strings.Contains(err.Error(), "invalid framer state") {
		t.Errorf("Expected 'invalid framer state' error, got '%s'", err.Error())
	}
}

func TestFramer_LoneSyncByte(t *testing.T) {
	f := NewFramer()

	f.DecodeByte(0xDA)
	m, err := f.DecodeByte(0x42)
	if m != nil || err != nil {
		t.Error("A lone sync byte followed by noise should be ignored")
	}

	recovered, err := feedFrame(f, helloFrame)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if recovered == nil {
		t.Fatal("Expected message after lone sync byte")
	}
}

// ============================================================
// Validation Tests
// ============================================================

func TestValidateMessage_Clean(t *testing.T) {
	errors := ValidateMessage(NewHelloRequest())
	if len(errors) != 0 {
		t.Errorf("Expected no validation errors, got %d: %v", len(errors), errors)
	}
}

func TestValidateMessage_UnexpectedCookie(t *testing.T) {
	m, err := ParseMessage([]byte{0xAA, 0x03, 0x00, 0x01, 0x05, 0x7A})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	errors := ValidateMessage(m)
	if len(errors) != 1 {
		t.Fatalf("Expected 1 validation error, got %d: %v", len(errors), errors)
	}
	if errors[0].Type != AnomalyUnexpectedCookie {
		t.Errorf("Expected AnomalyUnexpectedCookie, got %d", errors[0].Type)
	}
}

func TestValidateMessage_UnknownService(t *testing.T) {
	m, err := ParseMessage([]byte{0x68, 0x00, 0x03, 0x00, 0x01, 0x00})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	errors := ValidateMessage(m)
	if len(errors) != 1 {
		t.Fatalf("Expected 1 validation error, got %d: %v", len(errors), errors)
	}
	if errors[0].Type != AnomalyUnknownService {
		t.Errorf("Expected AnomalyUnknownService, got %d", errors[0].Type)
	}
}

func TestValidateMessage_UnknownMessage(t *testing.T) {
	m := NewMessage(0, ServiceGeneral, 0xEE, nil)

	errors := ValidateMessage(m)
	if len(errors) != 1 {
		t.Fatalf("Expected 1 validation error, got %d: %v", len(errors), errors)
	}
	if errors[0].Type != AnomalyUnknownMessage {
		t.Errorf("Expected AnomalyUnknownMessage, got %d", errors[0].Type)
	}
}

func TestValidateMessage_ServiceWithoutTable(t *testing.T) {
	// Battery has no known message table; any id passes
	m := NewMessage(0, ServiceBattery, 0x42, nil)

	errors := ValidateMessage(m)
	if len(errors) != 0 {
		t.Errorf("Expected no validation errors, got %d: %v", len(errors), errors)
	}
}

func TestValidateMessage_FailedRequest(t *testing.T) {
	response := &IEResponse{Result: 0x01}
	m := NewMessage(0, ServiceProduction, MsgProdCfm, response.Pack())

	errors := ValidateMessage(m)
	if len(errors) != 1 {
		t.Fatalf("Expected 1 validation error, got %d: %v", len(errors), errors)
	}
	if errors[0].Type != AnomalyRequestFailed {
		t.Errorf("Expected AnomalyRequestFailed, got %d", errors[0].Type)
	}
}

func TestValidateMessage_OkResponse(t *testing.T) {
	response := &IEResponse{Result: ResultOk}
	m := NewMessage(0, ServiceProduction, MsgProdCfm, response.Pack())

	errors := ValidateMessage(m)
	if len(errors) != 0 {
		t.Errorf("Expected no validation errors, got %d: %v", len(errors), errors)
	}
}

func TestValidateMessage_MalformedIE(t *testing.T) {
	m := NewMessage(0, ServiceGeneral, MsgGeneralGetStatusRes, []byte{0x0D, 0x00})

	errors := ValidateMessage(m)
	if len(errors) != 1 {
		t.Fatalf("Expected 1 validation error, got %d: %v", len(errors), errors)
	}
	if errors[0].Type != AnomalyMalformedIE {
		t.Errorf("Expected AnomalyMalformedIE, got %d", errors[0].Type)
	}
}

func TestValidateMessage_UnexpectedPayload(t *testing.T) {
	ie := &IEU8{Value: 0x01}
	m := NewMessage(0, ServiceGeneral, MsgGeneralHelloReq, ie.Pack())

	errors := ValidateMessage(m)
	if len(errors) != 1 {
		t.Fatalf("Expected 1 validation error, got %d: %v", len(errors), errors)
	}
	if errors[0].Type != AnomalyUnexpectedPayload {
		t.Errorf("Expected AnomalyUnexpectedPayload, got %d", errors[0].Type)
	}
}

func TestValidateMessage_HelloIndicationCarriesStatus(t *testing.T) {
	// The board's boot announcement carries a general status IE
	status := &IEGeneralStatus{PowerupMode: PowerupModeNormal, RegStatus: RegStatusRegistered}
	m := NewMessage(0, ServiceGeneral, MsgGeneralHelloInd, status.Pack())

	errors := ValidateMessage(m)
	if len(errors) != 0 {
		t.Errorf("Expected no validation errors, got %d: %v", len(errors), errors)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Type:    AnomalyUnknownService,
		Message: "Unknown service 0x0300",
		Details: map[string]interface{}{"service": uint16(0x0300)},
	}
	if err.Error() != "Unknown service 0x0300" {
		t.Errorf("Error() should return message, got '%s'", err.Error())
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestServiceName(t *testing.T) {
	tests := []struct {
		service  ServiceID
		expected string
	}{
		{ServiceGeneral, "GENERAL"},
		{ServiceDeviceManagement, "DEVICE_MANAGEMENT"},
		{ServiceAlert, "ALERT"},
		{ServiceTamperAlert, "TAMPER_ALERT"},
		{ServiceKeepAlive, "KEEP_ALIVE"},
		{ServiceFun, "FUN"},
		{ServiceSystem, "SYSTEM"},
		{ServiceParameters, "PARAMETERS"},
		{ServiceUleVoiceCall, "ULE_VOICE_CALL"},
		{ServiceProduction, "PRODUCTION"},
		{ServiceSuotaProprietary, "SUOTA_PROPRIETARY"},
		{ServiceID(0x0300), "UNKNOWN"},
		{ServiceUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := ServiceName(tt.service)
			if result != tt.expected {
				t.Errorf("ServiceName(0x%04X) = %s, expected %s", uint16(tt.service), result, tt.expected)
			}
		})
	}
}

func TestMessageName(t *testing.T) {
	tests := []struct {
		service   ServiceID
		messageID byte
		expected  string
	}{
		{ServiceGeneral, MsgGeneralHelloInd, "HELLO_IND"},
		{ServiceGeneral, MsgGeneralLinkCfm, "LINK_CFM"},
		{ServiceDeviceManagement, MsgDevMgntRegisterDeviceInd, "REGISTER_DEVICE_IND"},
		{ServiceSystem, MsgSysResetReq, "RESET_REQ"},
		{ServiceParameters, MsgParamSetDirectRes, "SET_DIRECT_RES"},
		{ServiceProduction, MsgProdSpecificPresetReq, "SPECIFIC_PRESET_REQ"},
		{ServiceAlert, MsgAlertNotifyStatusReq, "NOTIFY_STATUS_REQ"},
		{ServiceTamperAlert, MsgAlertNotifyStatusReq, "NOTIFY_STATUS_REQ"},
		{ServiceFun, MsgFunRecvInd, "RECV_IND"},
		{ServiceKeepAlive, MsgKeepAliveImAliveInd, "IM_ALIVE_IND"},
		{ServiceUleVoiceCall, MsgUleCallConnectedInd, "CONNECTED_IND"},
		{ServiceGeneral, 0xEE, "UNKNOWN"},
		{ServiceBattery, 0x01, "UNKNOWN"},
		{ServiceID(0x0300), 0x01, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected+"_"+ServiceName(tt.service), func(t *testing.T) {
			result := MessageName(tt.service, tt.messageID)
			if result != tt.expected {
				t.Errorf("MessageName(0x%04X, 0x%02X) = %s, expected %s",
					uint16(tt.service), tt.messageID, result, tt.expected)
			}
		})
	}
}

func TestFormatMessage_NoPayload(t *testing.T) {
	result := FormatMessage(NewGetStatusRequest())
	if !strings.Contains(result, "GENERAL") {
		t.Error("Should contain the service name")
	}
	if !strings.Contains(result, "GET_STATUS_REQ") {
		t.Error("Should contain the message name")
	}
	if !strings.Contains(result, "unit=0") {
		t.Error("Should contain the unit id")
	}
	if !strings.Contains(result, "len=0") {
		t.Error("Should contain the payload length")
	}
}

func TestFormatMessage_GeneralStatus(t *testing.T) {
	status := &IEGeneralStatus{
		PowerupMode: PowerupModeNormal,
		RegStatus:   RegStatusRegistered,
		DeviceID:    0x1234,
	}
	m := NewMessage(0, ServiceGeneral, MsgGeneralGetStatusRes, status.Pack())

	result := FormatMessage(m)
	if !strings.Contains(result, "GET_STATUS_RES") {
		t.Error("Should contain the message name")
	}
	if !strings.Contains(result, "NORMAL") {
		t.Error("Should contain the powerup mode name")
	}
	if !strings.Contains(result, "REGISTERED") {
		t.Error("Should contain the registration status name")
	}
	if !strings.Contains(result, "0x1234") {
		t.Error("Should contain the device id")
	}
}

func TestFormatIE_Response(t *testing.T) {
	ok := &IEResponse{Result: ResultOk}
	result := FormatIE(IE{Tag: IETagResponse, Value: ok.Pack()[ieHeaderSize:]})
	if !strings.Contains(result, "OK") {
		t.Errorf("Expected OK response rendering, got '%s'", result)
	}

	failed := &IEResponse{Result: 0x03}
	result = FormatIE(IE{Tag: IETagResponse, Value: failed.Pack()[ieHeaderSize:]})
	if !strings.Contains(result, "FAILED") || !strings.Contains(result, "0x03") {
		t.Errorf("Expected failed response rendering, got '%s'", result)
	}
}

func TestFormatIE_UnknownTag(t *testing.T) {
	result := FormatIE(IE{Tag: 0x77, Value: []byte{0x01, 0x02}})
	if !strings.Contains(result, "IE 0x77") {
		t.Errorf("Expected raw rendering for unknown tag, got '%s'", result)
	}
	if !strings.Contains(result, "01 02") {
		t.Errorf("Expected hex dump of the value, got '%s'", result)
	}
}

func TestFormatPayload_Truncated(t *testing.T) {
	result := FormatPayload([]byte{0x0D, 0x00})
	if !strings.Contains(result, "truncated IE data") {
		t.Errorf("Expected truncation note, got '%s'", result)
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_NewStatistics(t *testing.T) {
	s := NewStatistics()
	if s.TotalMessages != 0 {
		t.Error("New statistics should have 0 total messages")
	}
	if s.ValidMessages != 0 {
		t.Error("New statistics should have 0 valid messages")
	}
	if s.StartTime.IsZero() {
		t.Error("StartTime should be set")
	}
	if s.ServiceCounts == nil {
		t.Error("ServiceCounts should be allocated")
	}
}

func TestStatistics_Update_ValidMessage(t *testing.T) {
	s := NewStatistics()

	s.Update(NewHelloRequest(), nil, nil)

	if s.TotalMessages != 1 {
		t.Errorf("TotalMessages should be 1, got %d", s.TotalMessages)
	}
	if s.ValidMessages != 1 {
		t.Errorf("ValidMessages should be 1, got %d", s.ValidMessages)
	}
	if s.ServiceCounts[ServiceGeneral] != 1 {
		t.Errorf("ServiceCounts[GENERAL] should be 1, got %d", s.ServiceCounts[ServiceGeneral])
	}
}

func TestStatistics_Update_ChecksumError(t *testing.T) {
	s := NewStatistics()
	err := &FrameError{Type: FrameErrChecksumInvalid, Message: "checksum mismatch: expected 0x78, got 0x87"}

	s.Update(nil, err, nil)

	if s.TotalMessages != 1 {
		t.Errorf("TotalMessages should be 1, got %d", s.TotalMessages)
	}
	if s.ChecksumErrors != 1 {
		t.Errorf("ChecksumErrors should be 1, got %d", s.ChecksumErrors)
	}
	if s.FramingErrors != 0 {
		t.Errorf("FramingErrors should be 0, got %d", s.FramingErrors)
	}
}

func TestStatistics_Update_FramingError(t *testing.T) {
	s := NewStatistics()
	err := &FrameError{
		Type:    FrameErrResynchronized,
		Message: "frame discarded, hunting for sync: declared frame length 5 below header size 6",
		Cause:   &FrameError{Type: FrameErrTooShort, Message: "declared frame length 5 below header size 6"},
	}

	s.Update(nil, err, nil)

	if s.FramingErrors != 1 {
		t.Errorf("FramingErrors should be 1, got %d", s.FramingErrors)
	}
	if s.ChecksumErrors != 0 {
		t.Errorf("ChecksumErrors should be 0, got %d", s.ChecksumErrors)
	}
}

func TestStatistics_Update_ValidationErrors(t *testing.T) {
	s := NewStatistics()
	m := NewMessage(0, ServiceGeneral, 0xEE, nil)
	validationErrors := []ValidationError{
		{Type: AnomalyUnknownMessage, Message: "Unknown message 0xEE for service GENERAL"},
	}

	s.Update(m, nil, validationErrors)

	if s.TotalMessages != 1 {
		t.Errorf("TotalMessages should be 1, got %d", s.TotalMessages)
	}
	if s.ValidMessages != 0 {
		t.Errorf("ValidMessages should be 0, got %d", s.ValidMessages)
	}
	if s.AnomalousMessages != 1 {
		t.Errorf("AnomalousMessages should be 1, got %d", s.AnomalousMessages)
	}
	if s.UnknownMessages != 1 {
		t.Errorf("UnknownMessages should be 1, got %d", s.UnknownMessages)
	}
}

func TestStatistics_Reset(t *testing.T) {
	s := NewStatistics()
	s.Update(NewHelloRequest(), nil, nil)
	s.Update(nil, &FrameError{Type: FrameErrChecksumInvalid}, nil)

	s.Reset()

	if s.TotalMessages != 0 {
		t.Error("TotalMessages should be 0 after reset")
	}
	if s.ChecksumErrors != 0 {
		t.Error("ChecksumErrors should be 0 after reset")
	}
	if len(s.ServiceCounts) != 0 {
		t.Error("ServiceCounts should be empty after reset")
	}
}

func TestStatistics_CalculateRates(t *testing.T) {
	s := NewStatistics()
	s.TotalMessages = 100
	s.ChecksumErrors = 5
	s.FramingErrors = 3
	s.AnomalousMessages = 2

	s.CalculateRates()

	if s.MessageRate <= 0 {
		t.Error("MessageRate should be positive")
	}
	if s.ErrorRate <= 0 {
		t.Error("ErrorRate should be positive")
	}
}

func TestStatistics_String(t *testing.T) {
	s := NewStatistics()
	s.Update(NewHelloRequest(), nil, nil)
	s.Update(NewResetRequest(), nil, nil)
	s.Update(nil, &FrameError{Type: FrameErrChecksumInvalid}, nil)

	result := s.String()

	if !strings.Contains(result, "Statistics") {
		t.Error("String should contain 'Statistics'")
	}
	if !strings.Contains(result, "Total Messages") {
		t.Error("String should contain 'Total Messages'")
	}
	if !strings.Contains(result, "Checksum Errors") {
		t.Error("String should contain 'Checksum Errors'")
	}
	if !strings.Contains(result, "GENERAL") {
		t.Error("String should contain the per-service breakdown")
	}
}

// ============================================================
// Dispatcher Tests
// ============================================================

func TestDispatcher_ExactMatch(t *testing.T) {
	d := NewDispatcher()
	var got *Message
	d.Handle(ServiceGeneral, MsgGeneralHelloInd, func(m *Message) { got = m })

	m := NewMessage(0, ServiceGeneral, MsgGeneralHelloInd, nil)
	if !d.Dispatch(m) {
		t.Fatal("Dispatch should report the message as handled")
	}
	if got != m {
		t.Error("Handler should receive the dispatched message")
	}
}

func TestDispatcher_ServiceFallback(t *testing.T) {
	d := NewDispatcher()
	count := 0
	d.HandleService(ServiceKeepAlive, func(m *Message) { count++ })

	d.Dispatch(NewKeepAliveIndication())
	d.Dispatch(NewMessage(0, ServiceKeepAlive, 0x7F, nil))

	if count != 2 {
		t.Errorf("Service handler should see every message of its service, got %d", count)
	}
}

func TestDispatcher_DefaultFallback(t *testing.T) {
	d := NewDispatcher()
	count := 0
	d.Default(func(m *Message) { count++ })

	d.Dispatch(NewHelloRequest())
	d.Dispatch(NewResetRequest())

	if count != 2 {
		t.Errorf("Default handler should see unclaimed messages, got %d", count)
	}
}

func TestDispatcher_Unclaimed(t *testing.T) {
	d := NewDispatcher()
	d.Handle(ServiceGeneral, MsgGeneralHelloInd, func(m *Message) {})

	if d.Dispatch(NewResetRequest()) {
		t.Error("Dispatch should report unclaimed messages as unhandled")
	}
}

func TestDispatcher_Priority(t *testing.T) {
	d := NewDispatcher()
	var winner string
	d.Default(func(m *Message) { winner = "default" })
	d.HandleService(ServiceGeneral, func(m *Message) { winner = "service" })
	d.Handle(ServiceGeneral, MsgGeneralHelloInd, func(m *Message) { winner = "exact" })

	d.Dispatch(NewMessage(0, ServiceGeneral, MsgGeneralHelloInd, nil))
	if winner != "exact" {
		t.Errorf("Exact registration should win, got '%s'", winner)
	}

	d.Dispatch(NewMessage(0, ServiceGeneral, MsgGeneralErrorInd, nil))
	if winner != "service" {
		t.Errorf("Service registration should win over default, got '%s'", winner)
	}

	d.Dispatch(NewResetRequest())
	if winner != "default" {
		t.Errorf("Default should claim the rest, got '%s'", winner)
	}
}

func TestDispatcher_Unregister(t *testing.T) {
	d := NewDispatcher()
	count := 0
	d.Handle(ServiceGeneral, MsgGeneralHelloInd, func(m *Message) { count++ })
	d.Handle(ServiceGeneral, MsgGeneralHelloInd, nil)

	if d.Dispatch(NewMessage(0, ServiceGeneral, MsgGeneralHelloInd, nil)) {
		t.Error("Removed handler should not claim messages")
	}
	if count != 0 {
		t.Errorf("Removed handler should not run, ran %d times", count)
	}
}

// ============================================================
// Parameter Table Tests
// ============================================================

func TestLookupParam(t *testing.T) {
	p, ok := LookupParam("keep_alive")
	if !ok {
		t.Fatal("keep_alive should be a known parameter")
	}
	if p.ID != ParamHanKeepAliveTimeout {
		t.Errorf("keep_alive id mismatch: expected 0x%02X, got 0x%02X", byte(ParamHanKeepAliveTimeout), byte(p.ID))
	}
	if !p.LittleEndian {
		t.Error("keep_alive is stored little-endian")
	}

	if _, ok := LookupParam("does_not_exist"); ok {
		t.Error("Unknown parameter name should not resolve")
	}
}

func TestNamedParam_EncodeValue(t *testing.T) {
	keepAlive, _ := LookupParam("keep_alive")
	minSleep, _ := LookupParam("minimum_sleep_time")

	// 300000 ms = 0x000493E0
	le := keepAlive.EncodeValue(300000)
	if !bytes.Equal(le, []byte{0xE0, 0x93, 0x04, 0x00}) {
		t.Errorf("keep_alive encoding mismatch: got % X", le)
	}

	be := minSleep.EncodeValue(300000)
	if !bytes.Equal(be, []byte{0x00, 0x04, 0x93, 0xE0}) {
		t.Errorf("minimum_sleep_time encoding mismatch: got % X", be)
	}
}

func TestNamedParam_DecodeValue(t *testing.T) {
	keepAlive, _ := LookupParam("keep_alive")

	v, err := keepAlive.DecodeValue([]byte{0xE0, 0x93, 0x04, 0x00})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if v != 300000 {
		t.Errorf("Decoded value mismatch: expected 300000, got %d", v)
	}

	if _, err := keepAlive.DecodeValue([]byte{0x01, 0x02}); err == nil {
		t.Error("Expected error for wrong value size")
	}
}

func TestLookupPreset(t *testing.T) {
	p, ok := LookupPreset("smoke")
	if !ok {
		t.Fatal("smoke should be a known preset")
	}
	if p.ID != 0x04 {
		t.Errorf("smoke preset id mismatch: expected 0x04, got 0x%02X", p.ID)
	}

	if _, ok := LookupPreset("does_not_exist"); ok {
		t.Error("Unknown preset name should not resolve")
	}
}

func TestPresetName(t *testing.T) {
	if name := PresetName(0x15); name != "expansion_board" {
		t.Errorf("PresetName(0x15) = %s, expected expansion_board", name)
	}
	if name := PresetName(0xEE); name != "0xEE" {
		t.Errorf("PresetName(0xEE) = %s, expected hex fallback", name)
	}
}

func TestLookupRegion(t *testing.T) {
	r, ok := LookupRegion("us")
	if !ok {
		t.Fatal("us should be a known region")
	}
	if r.Settings.UsDect != 0x01 || r.Settings.SupportFcc != 0x01 {
		t.Errorf("us region settings mismatch: %+v", r.Settings)
	}
	if r.Settings.FullPower != 0xDE || r.Settings.Deviation != 0x23 || r.Settings.Pa2Comp != 0x3C {
		t.Errorf("us region radio settings mismatch: %+v", r.Settings)
	}

	eu, _ := LookupRegion("eu")
	if eu.Settings.UsDect != 0x00 || eu.Settings.FullPower != 0x7F {
		t.Errorf("eu region settings mismatch: %+v", eu.Settings)
	}

	if _, ok := LookupRegion("atlantis"); ok {
		t.Error("Unknown region name should not resolve")
	}
}
