package cmnd

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeMessageFromValues_KnownFrame(t *testing.T) {
	frame, err := EncodeMessageFromValues(0, ServiceGeneral, MsgGeneralHelloReq, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	expected := []byte{0xDA, 0xDA, 0x00, 0x06, 0x68, 0x00, 0x00, 0x00, 0x0A, 0x78}
	if !bytes.Equal(frame, expected) {
		t.Errorf("Frame mismatch:\nexpected % X\ngot      % X", expected, frame)
	}
}

func TestEncodeMessageFromValues_RoundTrip(t *testing.T) {
	response := &IEResponse{Result: ResultOk}

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "no payload"},
		{name: "one IE", payload: response.Pack()},
		{name: "largest accepted payload", payload: bytes.Repeat([]byte{0xA5}, MaxPayloadSize-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeMessageFromValues(1, ServiceProduction, MsgProdCfm, tt.payload)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}

			m, err := feedFrame(NewFramer(), frame)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if m == nil {
				t.Fatal("Framer did not produce a message")
			}
			if !m.Is(ServiceProduction, MsgProdCfm) {
				t.Errorf("Identity mismatch: got %s", m)
			}
			if !bytes.Equal(m.Payload(), tt.payload) {
				t.Errorf("Payload mismatch: expected %d bytes, got %d", len(tt.payload), len(m.Payload()))
			}
		})
	}
}

func TestEncodeMessageFromValues_PayloadTooLarge(t *testing.T) {
	frame, err := EncodeMessageFromValues(0, ServiceFun, MsgFunSendReq, make([]byte, MaxPayloadSize))
	if err == nil {
		t.Fatal("Expected error for oversize payload")
	}
	if frame != nil {
		t.Error("Expected nil frame on error")
	}
	if !strings.Contains(err.Error(), "payload too large") {
		t.Errorf("Expected 'payload too large' error, got '%s'", err.Error())
	}
}

func TestEncoder_PreservesCapturedBytes(t *testing.T) {
	// A packet with a foreign cookie and the checksum it carried on the wire
	packet := []byte{0xAA, 0x03, 0x00, 0x01, 0x05, 0x7A}
	m, err := ParseMessage(packet)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	frame, err := NewEncoder().Encode(m)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	expected := append([]byte{0xDA, 0xDA, 0x00, 0x06}, packet...)
	if !bytes.Equal(frame, expected) {
		t.Errorf("Re-encoded capture should be byte-identical:\nexpected % X\ngot      % X", expected, frame)
	}
}

func TestEncodeMessage_MatchesEncoder(t *testing.T) {
	m := NewResetRequest()

	direct := EncodeMessage(m)
	viaEncoder, err := NewEncoder().Encode(m)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !bytes.Equal(direct, viaEncoder) {
		t.Error("EncodeMessage should match Encoder.Encode output")
	}
}

func TestEncodeMessage_PanicsOnOversizePayload(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for oversize payload")
		}
	}()

	EncodeMessage(NewMessage(0, ServiceFun, MsgFunSendReq, make([]byte, MaxPayloadSize)))
}
