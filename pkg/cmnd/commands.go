// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import "fmt"

// Command builder functions create Message structs ready for encoding.
// These are convenience wrappers around NewMessage that pack the right
// information elements for each request. Requests address unit 0 unless a
// unit is part of the operation.

// NewHelloRequest creates a GENERAL HELLO_REQ message (0x0A).
// The board answers with HELLO_IND carrying its general status.
func NewHelloRequest() *Message {
	return NewMessage(0, ServiceGeneral, MsgGeneralHelloReq, nil)
}

// NewGetStatusRequest creates a GENERAL GET_STATUS_REQ message (0x08).
// The board answers with GET_STATUS_RES carrying a general status IE.
func NewGetStatusRequest() *Message {
	return NewMessage(0, ServiceGeneral, MsgGeneralGetStatusReq, nil)
}

// NewGetVersionRequest creates a GENERAL GET_VERSION_REQ message (0x0B).
// The board answers with GET_VERSION_RES carrying a version IE.
func NewGetVersionRequest() *Message {
	return NewMessage(0, ServiceGeneral, MsgGeneralGetVersionReq, nil)
}

// NewResetRequest creates a SYS RESET_REQ message (0x08).
// The board reboots and announces itself with HELLO_IND once booted.
func NewResetRequest() *Message {
	return NewMessage(0, ServiceSystem, MsgSysResetReq, nil)
}

// NewBatteryMeasureRequest creates a SYS BATTERY_MEASURE_GET_REQ message (0x01).
func NewBatteryMeasureRequest() *Message {
	return NewMessage(0, ServiceSystem, MsgSysBatteryMeasureGetReq, nil)
}

// NewBatteryIndEnableRequest creates a SYS BATTERY_IND_ENABLE_REQ message (0x05).
// Enables unsolicited low-battery indications.
func NewBatteryIndEnableRequest() *Message {
	return NewMessage(0, ServiceSystem, MsgSysBatteryIndEnableReq, nil)
}

// NewBatteryIndDisableRequest creates a SYS BATTERY_IND_DISABLE_REQ message (0x06).
func NewBatteryIndDisableRequest() *Message {
	return NewMessage(0, ServiceSystem, MsgSysBatteryIndDisableReq, nil)
}

// NewRssiRequest creates a SYS RSSI_GET_REQ message (0x03).
func NewRssiRequest() *Message {
	return NewMessage(0, ServiceSystem, MsgSysRssiGetReq, nil)
}

// NewRegisterDeviceRequest creates a DEV_MGNT REGISTER_DEVICE_REQ message (0x01).
// With a non-nil base, registration is restricted to the base with that RFPI;
// otherwise the board registers with any base in range that is open for
// registration. The board answers REGISTER_DEVICE_CFM immediately and
// REGISTER_DEVICE_IND once the over-the-air exchange finishes.
func NewRegisterDeviceRequest(base *IEBaseWanted) *Message {
	var payload []byte
	if base != nil {
		payload = base.Pack()
	}
	return NewMessage(0, ServiceDeviceManagement, MsgDevMgntRegisterDeviceReq, payload)
}

// NewDeregisterDeviceRequest creates a DEV_MGNT DEREGISTER_DEVICE_REQ message (0x03).
func NewDeregisterDeviceRequest() *Message {
	return NewMessage(0, ServiceDeviceManagement, MsgDevMgntDeregisterDeviceReq, nil)
}

// NewAlertNotifyRequest creates an ALERT NOTIFY_STATUS_REQ message (0x01)
// from the given unit. Delivery is confirmed by a GENERAL LINK_CFM whose
// response IE reports the transmission result.
func NewAlertNotifyRequest(unitID byte, unitType uint16, state uint32) *Message {
	alert := &IEAlert{UnitType: unitType, State: state}
	return NewMessage(unitID, ServiceAlert, MsgAlertNotifyStatusReq, alert.Pack())
}

// NewTamperNotifyRequest creates a TAMPER_ALERT NOTIFY_STATUS_REQ message (0x01)
// from the given unit.
func NewTamperNotifyRequest(unitID byte, unitType uint16, state uint32) *Message {
	alert := &IEAlert{UnitType: unitType, State: state}
	return NewMessage(unitID, ServiceTamperAlert, MsgAlertNotifyStatusReq, alert.Pack())
}

// NewKeepAliveIndication creates a KEEP_ALIVE I_M_ALIVE_IND message (0x01).
func NewKeepAliveIndication() *Message {
	return NewMessage(0, ServiceKeepAlive, MsgKeepAliveImAliveInd, nil)
}

// NewFunSendRequest creates a FUN SEND_REQ message (0x01) carrying the given
// HAN-FUN frame. Delivery is confirmed by a GENERAL LINK_CFM.
func NewFunSendRequest(fun *IEFun) (*Message, error) {
	if len(fun.Data) > MaxFunDataSize {
		return nil, fmt.Errorf("fun data too large: %d bytes (max %d)", len(fun.Data), MaxFunDataSize)
	}
	return NewMessage(fun.SrcUnitID, ServiceFun, MsgFunSendReq, fun.Pack()), nil
}

// NewRawDataRequest creates a FUN SEND_REQ carrying raw proprietary data on
// the raw data interface, addressed from this device's raw data unit to the
// base.
func NewRawDataRequest(deviceID uint16, data []byte) (*Message, error) {
	fun := &IEFun{
		SrcDeviceID:     deviceID,
		SrcUnitID:       RawDataUnitNumber,
		DstDeviceID:     0,
		DstUnitID:       2,
		AddressType:     0,
		InterfaceType:   1,
		InterfaceID:     RawDataInterfaceID,
		InterfaceMember: 1,
		MessageType:     FunMsgTypeCommand,
		Data:            data,
	}
	return NewFunSendRequest(fun)
}

// NewParamGetRequest creates a PARAM GET_REQ message (0x01).
// The board answers GET_RES echoing the parameter IE with data filled in.
func NewParamGetRequest(addr ParamAddress, id byte) *Message {
	param := &IEParameter{Type: addr, ID: id}
	return NewMessage(0, ServiceParameters, MsgParamGetReq, param.Pack())
}

// NewParamSetRequest creates a PARAM SET_REQ message (0x03).
func NewParamSetRequest(addr ParamAddress, id byte, data []byte) *Message {
	param := &IEParameter{Type: addr, ID: id, Data: data}
	return NewMessage(0, ServiceParameters, MsgParamSetReq, param.Pack())
}

// NewParamGetDirectRequest creates a PARAM GET_DIRECT_REQ message (0x05)
// reading length bytes at the given offset.
func NewParamGetDirectRequest(addr ParamAddress, offset uint32, length uint16) *Message {
	param := &IEParameterDirect{Type: addr, Offset: offset, Length: length}
	return NewMessage(0, ServiceParameters, MsgParamGetDirectReq, param.Pack())
}

// NewParamSetDirectRequest creates a PARAM SET_DIRECT_REQ message (0x07)
// writing data at the given offset.
func NewParamSetDirectRequest(addr ParamAddress, offset uint32, data []byte) *Message {
	param := &IEParameterDirect{Type: addr, Offset: offset, Data: data}
	return NewMessage(0, ServiceParameters, MsgParamSetDirectReq, param.Pack())
}

// NewProductionStartRequest creates a PROD START_REQ message (0x01).
// Production mode takes effect after the next reset; the board confirms with
// PROD_CFM first.
func NewProductionStartRequest() *Message {
	return NewMessage(0, ServiceProduction, MsgProdStartReq, nil)
}

// NewProductionEndRequest creates a PROD END_REQ message (0x02).
func NewProductionEndRequest() *Message {
	return NewMessage(0, ServiceProduction, MsgProdEndReq, nil)
}

// NewPresetRequest creates a PROD SPECIFIC_PRESET_REQ message (0x12)
// re-initializing the EEPROM from the numbered factory preset. Only honored
// while the board runs in production mode.
func NewPresetRequest(preset byte) *Message {
	ie := &IEU8{Value: preset}
	return NewMessage(0, ServiceProduction, MsgProdSpecificPresetReq, ie.Pack())
}

// NewVoiceCallStartRequest creates a ULE_CALL START_REQ message (0x01) from
// the given unit with the given call settings.
func NewVoiceCallStartRequest(unitID byte, settings *IECallSettings) *Message {
	return NewMessage(unitID, ServiceUleVoiceCall, MsgUleCallStartReq, settings.Pack())
}

// NewVoiceCallEndRequest creates a ULE_CALL END_REQ message (0x05) from the
// given unit.
func NewVoiceCallEndRequest(unitID byte) *Message {
	return NewMessage(unitID, ServiceUleVoiceCall, MsgUleCallEndReq, nil)
}

// NewVoiceCallStartResponse creates a ULE_CALL START_RES message (0x04)
// answering an incoming call indication with a result and the accepted
// settings.
func NewVoiceCallStartResponse(unitID byte, result byte, settings *IECallSettings) *Message {
	response := &IEResponse{Result: result}
	payload := response.Pack()
	payload = append(payload, settings.Pack()...)
	return NewMessage(unitID, ServiceUleVoiceCall, MsgUleCallStartRes, payload)
}

// NewVoiceCallEndResponse creates a ULE_CALL END_RES message (0x08)
// acknowledging the end of a call.
func NewVoiceCallEndResponse(unitID byte, result byte) *Message {
	response := &IEResponse{Result: result}
	return NewMessage(unitID, ServiceUleVoiceCall, MsgUleCallEndRes, response.Pack())
}
