// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrIENotFound is returned when a payload holds no element with the
// requested tag
var ErrIENotFound = errors.New("information element not found")

// IE is a single raw information element: a tag plus its value bytes.
// Payloads carry zero or more of these, each encoded as tag, big-endian
// uint16 value length, value.
type IE struct {
	Tag   byte
	Value []byte
}

// AppendIE appends one encoded element to a payload buffer
func AppendIE(payload []byte, tag byte, value []byte) []byte {
	payload = append(payload, tag)
	payload = binary.BigEndian.AppendUint16(payload, uint16(len(value)))
	return append(payload, value...)
}

// ParseIEs collects every complete element in a payload. An incomplete
// trailing record stops the walk; everything parsed up to that point is
// returned along with the error.
func ParseIEs(payload []byte) ([]IE, error) {
	var ies []IE
	for len(payload) > 0 {
		if len(payload) < ieHeaderSize {
			return ies, fmt.Errorf("truncated IE header: %d trailing bytes", len(payload))
		}
		length := int(binary.BigEndian.Uint16(payload[1:3]))
		if len(payload) < ieHeaderSize+length {
			return ies, fmt.Errorf("truncated IE 0x%02X: declared %d bytes, %d available",
				payload[0], length, len(payload)-ieHeaderSize)
		}
		ies = append(ies, IE{Tag: payload[0], Value: payload[ieHeaderSize : ieHeaderSize+length]})
		payload = payload[ieHeaderSize+length:]
	}
	return ies, nil
}

// FindIE returns the value of the first element with the given tag
func FindIE(payload []byte, tag byte) ([]byte, bool) {
	for len(payload) >= ieHeaderSize {
		length := int(binary.BigEndian.Uint16(payload[1:3]))
		if len(payload) < ieHeaderSize+length {
			return nil, false
		}
		if payload[0] == tag {
			return payload[ieHeaderSize : ieHeaderSize+length], true
		}
		payload = payload[ieHeaderSize+length:]
	}
	return nil, false
}

// IEUnpacker is implemented by typed information elements
type IEUnpacker interface {
	Tag() byte
	Unpack(value []byte) error
}

// GetIE finds the first element matching ie's tag in the message payload and
// unpacks it. Returns ErrIENotFound when the payload has no such element.
func (m *Message) GetIE(ie IEUnpacker) error {
	value, ok := FindIE(m.payload, ie.Tag())
	if !ok {
		return fmt.Errorf("IE 0x%02X in %s: %w", ie.Tag(), m, ErrIENotFound)
	}
	return ie.Unpack(value)
}

// IEResponse carries the result code of a request
type IEResponse struct {
	Result byte
}

// Tag returns the element's type tag
func (ie *IEResponse) Tag() byte { return IETagResponse }

// Pack encodes the element including its tag and length header
func (ie *IEResponse) Pack() []byte {
	return AppendIE(nil, IETagResponse, []byte{ie.Result})
}

// Unpack decodes the element from its value bytes
func (ie *IEResponse) Unpack(value []byte) error {
	if len(value) < 1 {
		return fmt.Errorf("response IE: empty value")
	}
	ie.Result = value[0]
	return nil
}

// Ok reports whether the response signals success
func (ie *IEResponse) Ok() bool {
	return ie.Result == ResultOk
}

// IEVersion carries the firmware version string
type IEVersion struct {
	Version string
}

// Tag returns the element's type tag
func (ie *IEVersion) Tag() byte { return IETagVersion }

// Pack encodes the element including its tag and length header
func (ie *IEVersion) Pack() []byte {
	value := make([]byte, 0, 1+len(ie.Version))
	value = append(value, byte(len(ie.Version)))
	value = append(value, ie.Version...)
	return AppendIE(nil, IETagVersion, value)
}

// Unpack decodes the element from its value bytes
func (ie *IEVersion) Unpack(value []byte) error {
	if len(value) < 1 {
		return fmt.Errorf("version IE: empty value")
	}
	length := int(value[0])
	if len(value)-1 < length {
		return fmt.Errorf("version IE: declared %d bytes, %d available", length, len(value)-1)
	}
	ie.Version = string(value[1 : 1+length])
	return nil
}

// IEParameter addresses a parameter by type and identifier
type IEParameter struct {
	Type ParamAddress
	ID   byte
	Data []byte
}

// Tag returns the element's type tag
func (ie *IEParameter) Tag() byte { return IETagParameter }

// Pack encodes the element including its tag and length header
func (ie *IEParameter) Pack() []byte {
	value := make([]byte, 0, 4+len(ie.Data))
	value = append(value, byte(ie.Type), ie.ID)
	value = binary.BigEndian.AppendUint16(value, uint16(len(ie.Data)))
	value = append(value, ie.Data...)
	return AppendIE(nil, IETagParameter, value)
}

// Unpack decodes the element from its value bytes
func (ie *IEParameter) Unpack(value []byte) error {
	if len(value) < 4 {
		return fmt.Errorf("parameter IE: value too short: %d bytes", len(value))
	}
	length := int(binary.BigEndian.Uint16(value[2:4]))
	if len(value)-4 < length {
		return fmt.Errorf("parameter IE: declared %d data bytes, %d available", length, len(value)-4)
	}
	ie.Type = ParamAddress(value[0])
	ie.ID = value[1]
	ie.Data = append([]byte(nil), value[4:4+length]...)
	return nil
}

// IEParameterDirect addresses a memory region by type, offset, and length
type IEParameterDirect struct {
	Type   ParamAddress
	Offset uint32
	Length uint16 // read size when Data is empty
	Data   []byte
}

// Tag returns the element's type tag
func (ie *IEParameterDirect) Tag() byte { return IETagParameterDirect }

// Pack encodes the element including its tag and length header.
// The length field mirrors Data when present, otherwise the explicit Length
// (a read request carries no data, only how much to read).
func (ie *IEParameterDirect) Pack() []byte {
	length := ie.Length
	if len(ie.Data) > 0 {
		length = uint16(len(ie.Data))
	}
	value := make([]byte, 0, 7+len(ie.Data))
	value = append(value, byte(ie.Type))
	value = binary.BigEndian.AppendUint32(value, ie.Offset)
	value = binary.BigEndian.AppendUint16(value, length)
	value = append(value, ie.Data...)
	return AppendIE(nil, IETagParameterDirect, value)
}

// Unpack decodes the element from its value bytes
func (ie *IEParameterDirect) Unpack(value []byte) error {
	if len(value) < 7 {
		return fmt.Errorf("parameter direct IE: value too short: %d bytes", len(value))
	}
	length := int(binary.BigEndian.Uint16(value[5:7]))
	if len(value)-7 < length {
		return fmt.Errorf("parameter direct IE: declared %d data bytes, %d available", length, len(value)-7)
	}
	ie.Type = ParamAddress(value[0])
	ie.Offset = binary.BigEndian.Uint32(value[1:5])
	ie.Length = uint16(length)
	ie.Data = append([]byte(nil), value[7:7+length]...)
	return nil
}

// IEGeneralStatus reports the board's boot and registration state
type IEGeneralStatus struct {
	PowerupMode  PowerupMode
	RegStatus    byte
	EepromStatus byte
	DeviceID     uint16
}

// Tag returns the element's type tag
func (ie *IEGeneralStatus) Tag() byte { return IETagGeneralStatus }

// Pack encodes the element including its tag and length header
func (ie *IEGeneralStatus) Pack() []byte {
	value := make([]byte, 0, 5)
	value = append(value, byte(ie.PowerupMode), ie.RegStatus, ie.EepromStatus)
	value = binary.BigEndian.AppendUint16(value, ie.DeviceID)
	return AppendIE(nil, IETagGeneralStatus, value)
}

// Unpack decodes the element from its value bytes
func (ie *IEGeneralStatus) Unpack(value []byte) error {
	if len(value) < 5 {
		return fmt.Errorf("general status IE: value too short: %d bytes", len(value))
	}
	ie.PowerupMode = PowerupMode(value[0])
	ie.RegStatus = value[1]
	ie.EepromStatus = value[2]
	ie.DeviceID = binary.BigEndian.Uint16(value[3:5])
	return nil
}

// Registered reports whether the board holds a base subscription
func (ie *IEGeneralStatus) Registered() bool {
	return ie.RegStatus == RegStatusRegistered
}

// IEU8 carries a single byte value
type IEU8 struct {
	Value byte
}

// Tag returns the element's type tag
func (ie *IEU8) Tag() byte { return IETagU8 }

// Pack encodes the element including its tag and length header
func (ie *IEU8) Pack() []byte {
	return AppendIE(nil, IETagU8, []byte{ie.Value})
}

// Unpack decodes the element from its value bytes
func (ie *IEU8) Unpack(value []byte) error {
	if len(value) < 1 {
		return fmt.Errorf("u8 IE: empty value")
	}
	ie.Value = value[0]
	return nil
}

// IERegistrationResponse reports the outcome of a registration attempt
type IERegistrationResponse struct {
	ResponseCode  byte
	DeviceAddress uint16
}

// Tag returns the element's type tag
func (ie *IERegistrationResponse) Tag() byte { return IETagRegistrationResponse }

// Pack encodes the element including its tag and length header
func (ie *IERegistrationResponse) Pack() []byte {
	value := make([]byte, 0, 3)
	value = append(value, ie.ResponseCode)
	value = binary.BigEndian.AppendUint16(value, ie.DeviceAddress)
	return AppendIE(nil, IETagRegistrationResponse, value)
}

// Unpack decodes the element from its value bytes
func (ie *IERegistrationResponse) Unpack(value []byte) error {
	if len(value) < 3 {
		return fmt.Errorf("registration response IE: value too short: %d bytes", len(value))
	}
	ie.ResponseCode = value[0]
	ie.DeviceAddress = binary.BigEndian.Uint16(value[1:3])
	return nil
}

// IEBaseWanted restricts registration to one base by its RFPI
type IEBaseWanted struct {
	Rfpi [RfpiSize]byte
}

// Tag returns the element's type tag
func (ie *IEBaseWanted) Tag() byte { return IETagBaseWanted }

// Pack encodes the element including its tag and length header
func (ie *IEBaseWanted) Pack() []byte {
	return AppendIE(nil, IETagBaseWanted, ie.Rfpi[:])
}

// Unpack decodes the element from its value bytes
func (ie *IEBaseWanted) Unpack(value []byte) error {
	if len(value) < RfpiSize {
		return fmt.Errorf("base wanted IE: value too short: %d bytes (RFPI is %d)", len(value), RfpiSize)
	}
	copy(ie.Rfpi[:], value[:RfpiSize])
	return nil
}

// IEAlert reports an alerting unit's type and state bitmask
type IEAlert struct {
	UnitType uint16
	State    uint32
}

// Tag returns the element's type tag
func (ie *IEAlert) Tag() byte { return IETagAlert }

// Pack encodes the element including its tag and length header
func (ie *IEAlert) Pack() []byte {
	value := make([]byte, 0, 6)
	value = binary.BigEndian.AppendUint16(value, ie.UnitType)
	value = binary.BigEndian.AppendUint32(value, ie.State)
	return AppendIE(nil, IETagAlert, value)
}

// Unpack decodes the element from its value bytes
func (ie *IEAlert) Unpack(value []byte) error {
	if len(value) < 6 {
		return fmt.Errorf("alert IE: value too short: %d bytes", len(value))
	}
	ie.UnitType = binary.BigEndian.Uint16(value[0:2])
	ie.State = binary.BigEndian.Uint32(value[2:6])
	return nil
}

// IEFun carries one HAN-FUN frame between a device unit and a base unit
type IEFun struct {
	SrcDeviceID     uint16
	SrcUnitID       byte
	DstDeviceID     uint16
	DstUnitID       byte
	AddressType     byte
	InterfaceType   byte
	InterfaceID     uint16
	InterfaceMember byte
	MessageType     byte
	Data            []byte
}

// Tag returns the element's type tag
func (ie *IEFun) Tag() byte { return IETagFun }

// Pack encodes the element including its tag and length header
func (ie *IEFun) Pack() []byte {
	value := make([]byte, 0, 14+len(ie.Data))
	value = binary.BigEndian.AppendUint16(value, ie.SrcDeviceID)
	value = append(value, ie.SrcUnitID)
	value = binary.BigEndian.AppendUint16(value, ie.DstDeviceID)
	value = append(value, ie.DstUnitID, ie.AddressType, ie.InterfaceType)
	value = binary.BigEndian.AppendUint16(value, ie.InterfaceID)
	value = append(value, ie.InterfaceMember, ie.MessageType)
	value = binary.BigEndian.AppendUint16(value, uint16(len(ie.Data)))
	value = append(value, ie.Data...)
	return AppendIE(nil, IETagFun, value)
}

// Unpack decodes the element from its value bytes
func (ie *IEFun) Unpack(value []byte) error {
	if len(value) < 14 {
		return fmt.Errorf("fun IE: value too short: %d bytes", len(value))
	}
	length := int(binary.BigEndian.Uint16(value[12:14]))
	if len(value)-14 < length {
		return fmt.Errorf("fun IE: declared %d data bytes, %d available", length, len(value)-14)
	}
	ie.SrcDeviceID = binary.BigEndian.Uint16(value[0:2])
	ie.SrcUnitID = value[2]
	ie.DstDeviceID = binary.BigEndian.Uint16(value[3:5])
	ie.DstUnitID = value[5]
	ie.AddressType = value[6]
	ie.InterfaceType = value[7]
	ie.InterfaceID = binary.BigEndian.Uint16(value[8:10])
	ie.InterfaceMember = value[10]
	ie.MessageType = value[11]
	ie.Data = append([]byte(nil), value[14:14+length]...)
	return nil
}

// IECallSettings carries the negotiable settings of a voice call
type IECallSettings struct {
	FieldMask      uint32
	PreferredCodec byte
	Digits         string
	OtherPartyName string
	OtherPartyID   string
}

// Tag returns the element's type tag
func (ie *IECallSettings) Tag() byte { return IETagCallSettings }

// Pack encodes the element including its tag and length header
func (ie *IECallSettings) Pack() []byte {
	value := make([]byte, 0, 8+len(ie.Digits)+len(ie.OtherPartyName)+len(ie.OtherPartyID))
	value = binary.BigEndian.AppendUint32(value, ie.FieldMask)
	value = append(value, ie.PreferredCodec)
	value = append(value, byte(len(ie.Digits)))
	value = append(value, ie.Digits...)
	value = append(value, byte(len(ie.OtherPartyName)))
	value = append(value, ie.OtherPartyName...)
	value = append(value, byte(len(ie.OtherPartyID)))
	value = append(value, ie.OtherPartyID...)
	return AppendIE(nil, IETagCallSettings, value)
}

// Unpack decodes the element from its value bytes
func (ie *IECallSettings) Unpack(value []byte) error {
	if len(value) < 5 {
		return fmt.Errorf("call settings IE: value too short: %d bytes", len(value))
	}
	ie.FieldMask = binary.BigEndian.Uint32(value[0:4])
	ie.PreferredCodec = value[4]
	rest := value[5:]

	var err error
	if ie.Digits, rest, err = readCounted(rest, "digits"); err != nil {
		return err
	}
	if ie.OtherPartyName, rest, err = readCounted(rest, "other party name"); err != nil {
		return err
	}
	if ie.OtherPartyID, _, err = readCounted(rest, "other party id"); err != nil {
		return err
	}
	return nil
}

// readCounted consumes one length-prefixed string field
func readCounted(buf []byte, field string) (string, []byte, error) {
	if len(buf) < 1 {
		return "", nil, fmt.Errorf("call settings IE: missing %s field", field)
	}
	length := int(buf[0])
	if len(buf)-1 < length {
		return "", nil, fmt.Errorf("call settings IE: %s declared %d bytes, %d available", field, length, len(buf)-1)
	}
	return string(buf[1 : 1+length]), buf[1+length:], nil
}
