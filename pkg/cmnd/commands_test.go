// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"bytes"
	"testing"
)

func TestSimpleRequests(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *Message
		serviceID ServiceID
		messageID byte
	}{
		{"hello", NewHelloRequest, ServiceGeneral, MsgGeneralHelloReq},
		{"get status", NewGetStatusRequest, ServiceGeneral, MsgGeneralGetStatusReq},
		{"get version", NewGetVersionRequest, ServiceGeneral, MsgGeneralGetVersionReq},
		{"reset", NewResetRequest, ServiceSystem, MsgSysResetReq},
		{"battery measure", NewBatteryMeasureRequest, ServiceSystem, MsgSysBatteryMeasureGetReq},
		{"battery ind enable", NewBatteryIndEnableRequest, ServiceSystem, MsgSysBatteryIndEnableReq},
		{"battery ind disable", NewBatteryIndDisableRequest, ServiceSystem, MsgSysBatteryIndDisableReq},
		{"rssi", NewRssiRequest, ServiceSystem, MsgSysRssiGetReq},
		{"deregister", NewDeregisterDeviceRequest, ServiceDeviceManagement, MsgDevMgntDeregisterDeviceReq},
		{"keep alive", NewKeepAliveIndication, ServiceKeepAlive, MsgKeepAliveImAliveInd},
		{"production start", NewProductionStartRequest, ServiceProduction, MsgProdStartReq},
		{"production end", NewProductionEndRequest, ServiceProduction, MsgProdEndReq},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.build()
			if !m.Is(tt.serviceID, tt.messageID) {
				t.Errorf("Identity mismatch: expected 0x%04X/0x%02X, got %s",
					uint16(tt.serviceID), tt.messageID, m)
			}
			if m.UnitID() != 0 {
				t.Errorf("UnitID mismatch: expected 0, got %d", m.UnitID())
			}
			if m.DataLength() != 0 {
				t.Errorf("Expected empty payload, got %d bytes", m.DataLength())
			}
		})
	}
}

func TestNewRegisterDeviceRequest(t *testing.T) {
	m := NewRegisterDeviceRequest(nil)
	if !m.Is(ServiceDeviceManagement, MsgDevMgntRegisterDeviceReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}
	if m.DataLength() != 0 {
		t.Errorf("Open registration should carry no payload, got %d bytes", m.DataLength())
	}

	base := &IEBaseWanted{Rfpi: [RfpiSize]byte{0x02, 0x3F, 0x10, 0x23, 0x81}}
	m = NewRegisterDeviceRequest(base)

	var got IEBaseWanted
	if err := m.GetIE(&got); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if got.Rfpi != base.Rfpi {
		t.Errorf("RFPI mismatch: % X != % X", got.Rfpi, base.Rfpi)
	}
}

func TestNewAlertNotifyRequest(t *testing.T) {
	m := NewAlertNotifyRequest(2, FunUnitTypeSmokeDetector, AlertStateAlerting)
	if !m.Is(ServiceAlert, MsgAlertNotifyStatusReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}
	if m.UnitID() != 2 {
		t.Errorf("UnitID mismatch: expected 2, got %d", m.UnitID())
	}

	var alert IEAlert
	if err := m.GetIE(&alert); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if alert.UnitType != FunUnitTypeSmokeDetector {
		t.Errorf("UnitType mismatch: got 0x%04X", alert.UnitType)
	}
	if alert.State != AlertStateAlerting {
		t.Errorf("State mismatch: got 0x%08X", alert.State)
	}
}

func TestNewTamperNotifyRequest(t *testing.T) {
	m := NewTamperNotifyRequest(1, 0x0404, AlertStateCleared)
	if !m.Is(ServiceTamperAlert, MsgAlertNotifyStatusReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	var alert IEAlert
	if err := m.GetIE(&alert); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if alert.State != AlertStateCleared {
		t.Errorf("State mismatch: got 0x%08X", alert.State)
	}
}

func TestNewFunSendRequest(t *testing.T) {
	fun := &IEFun{SrcUnitID: 1, DstUnitID: 2, MessageType: FunMsgTypeCommand, Data: []byte{0x01}}

	m, err := NewFunSendRequest(fun)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !m.Is(ServiceFun, MsgFunSendReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}
	if m.UnitID() != fun.SrcUnitID {
		t.Errorf("Message should be addressed from the source unit, got %d", m.UnitID())
	}
}

func TestNewFunSendRequest_DataTooLarge(t *testing.T) {
	fun := &IEFun{Data: make([]byte, MaxFunDataSize+1)}

	m, err := NewFunSendRequest(fun)
	if err == nil {
		t.Fatal("Expected error for oversize fun data")
	}
	if m != nil {
		t.Error("Expected nil message on error")
	}
}

func TestNewRawDataRequest(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	m, err := NewRawDataRequest(0x0005, data)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !m.Is(ServiceFun, MsgFunSendReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}
	if m.UnitID() != RawDataUnitNumber {
		t.Errorf("UnitID mismatch: expected %d, got %d", RawDataUnitNumber, m.UnitID())
	}

	var fun IEFun
	if err := m.GetIE(&fun); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if fun.SrcDeviceID != 0x0005 || fun.SrcUnitID != RawDataUnitNumber {
		t.Errorf("Source mismatch: 0x%04X.%d", fun.SrcDeviceID, fun.SrcUnitID)
	}
	if fun.DstDeviceID != 0 || fun.DstUnitID != 2 {
		t.Errorf("Raw data goes to the base unit: 0x%04X.%d", fun.DstDeviceID, fun.DstUnitID)
	}
	if fun.InterfaceID != RawDataInterfaceID || fun.InterfaceMember != 1 {
		t.Errorf("Interface mismatch: 0x%04X member %d", fun.InterfaceID, fun.InterfaceMember)
	}
	if fun.MessageType != FunMsgTypeCommand {
		t.Errorf("MessageType mismatch: got 0x%02X", fun.MessageType)
	}
	if !bytes.Equal(fun.Data, data) {
		t.Errorf("Data mismatch: % X != % X", fun.Data, data)
	}
}

func TestNewParamGetRequest(t *testing.T) {
	m := NewParamGetRequest(ParamAddressHanEeprom, byte(ParamHanMinSleepTime))
	if !m.Is(ServiceParameters, MsgParamGetReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	var param IEParameter
	if err := m.GetIE(&param); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if param.Type != ParamAddressHanEeprom {
		t.Errorf("Type mismatch: got 0x%02X", byte(param.Type))
	}
	if param.ID != byte(ParamHanMinSleepTime) {
		t.Errorf("ID mismatch: got 0x%02X", param.ID)
	}
	if len(param.Data) != 0 {
		t.Errorf("A read request carries no data, got %d bytes", len(param.Data))
	}
}

func TestNewParamSetRequest(t *testing.T) {
	data := []byte{0xE0, 0x93, 0x04, 0x00}
	m := NewParamSetRequest(ParamAddressHanEeprom, byte(ParamHanKeepAliveTimeout), data)
	if !m.Is(ServiceParameters, MsgParamSetReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	var param IEParameter
	if err := m.GetIE(&param); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if !bytes.Equal(param.Data, data) {
		t.Errorf("Data mismatch: % X != % X", param.Data, data)
	}
}

func TestNewParamGetDirectRequest(t *testing.T) {
	m := NewParamGetDirectRequest(ParamAddressDectEeprom, EepromSubscriptionOffset, 1)
	if !m.Is(ServiceParameters, MsgParamGetDirectReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	// A read request declares its length without data, so inspect the raw IE
	value, ok := FindIE(m.Payload(), IETagParameterDirect)
	if !ok {
		t.Fatal("Expected a parameter direct IE")
	}
	expected := []byte{0x02, 0x00, 0x00, 0x00, 0x3A, 0x00, 0x01}
	if !bytes.Equal(value, expected) {
		t.Errorf("Value mismatch: expected % X, got % X", expected, value)
	}
}

func TestNewParamSetDirectRequest(t *testing.T) {
	m := NewParamSetDirectRequest(ParamAddressDectEeprom, EepromSubscriptionOffset, []byte{0x00})
	if !m.Is(ServiceParameters, MsgParamSetDirectReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	var direct IEParameterDirect
	if err := m.GetIE(&direct); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if direct.Offset != EepromSubscriptionOffset {
		t.Errorf("Offset mismatch: got %d", direct.Offset)
	}
	if !bytes.Equal(direct.Data, []byte{0x00}) {
		t.Errorf("Data mismatch: got % X", direct.Data)
	}
}

func TestNewPresetRequest(t *testing.T) {
	m := NewPresetRequest(0x04)
	if !m.Is(ServiceProduction, MsgProdSpecificPresetReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	var preset IEU8
	if err := m.GetIE(&preset); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if preset.Value != 0x04 {
		t.Errorf("Preset mismatch: got 0x%02X", preset.Value)
	}
}

func TestNewVoiceCallStartRequest(t *testing.T) {
	settings := &IECallSettings{FieldMask: CallSettingDigits, Digits: "1234"}
	m := NewVoiceCallStartRequest(1, settings)
	if !m.Is(ServiceUleVoiceCall, MsgUleCallStartReq) {
		t.Errorf("Identity mismatch: got %s", m)
	}
	if m.UnitID() != 1 {
		t.Errorf("UnitID mismatch: got %d", m.UnitID())
	}

	var got IECallSettings
	if err := m.GetIE(&got); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if got.Digits != "1234" {
		t.Errorf("Digits mismatch: got '%s'", got.Digits)
	}
}

func TestNewVoiceCallStartResponse(t *testing.T) {
	settings := &IECallSettings{FieldMask: CallSettingPreferredCodec, PreferredCodec: 0x01}
	m := NewVoiceCallStartResponse(1, ResultOk, settings)
	if !m.Is(ServiceUleVoiceCall, MsgUleCallStartRes) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	// Both the response and the settings ride in one payload
	var resp IEResponse
	if err := m.GetIE(&resp); err != nil {
		t.Fatalf("GetIE response error: %v", err)
	}
	if !resp.Ok() {
		t.Errorf("Response mismatch: got 0x%02X", resp.Result)
	}

	var got IECallSettings
	if err := m.GetIE(&got); err != nil {
		t.Fatalf("GetIE settings error: %v", err)
	}
	if got.PreferredCodec != 0x01 {
		t.Errorf("Codec mismatch: got 0x%02X", got.PreferredCodec)
	}
}

func TestNewVoiceCallEndResponse(t *testing.T) {
	m := NewVoiceCallEndResponse(1, 0x02)
	if !m.Is(ServiceUleVoiceCall, MsgUleCallEndRes) {
		t.Errorf("Identity mismatch: got %s", m)
	}

	var resp IEResponse
	if err := m.GetIE(&resp); err != nil {
		t.Fatalf("GetIE error: %v", err)
	}
	if resp.Result != 0x02 {
		t.Errorf("Result mismatch: got 0x%02X", resp.Result)
	}
}

func TestCommandOverTheWire(t *testing.T) {
	sent := NewParamGetRequest(ParamAddressHanEeprom, byte(ParamHanKeepAliveTimeout))

	received, err := feedFrame(NewFramer(), EncodeMessage(sent))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if received == nil {
		t.Fatal("Framer did not produce a message")
	}
	if !received.Is(ServiceParameters, MsgParamGetReq) {
		t.Errorf("Identity mismatch: got %s", received)
	}
	if !bytes.Equal(received.Payload(), sent.Payload()) {
		t.Error("Payload should survive the wire unchanged")
	}
}
