// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

// Package cmnd provides a reference Go implementation of the CMND serial protocol.
//
// CMND is a framed command/response protocol spoken over a UART between a host
// and a DECT ULE radio expansion board (DU-EB). This package provides frame
// encoding/decoding, checksum validation, information element (IE) codecs,
// per-service message builders, and payload formatting.
//
// The message catalog follows the DU-EB integration guide shipped with the
// ULE starter kit.
package cmnd

// Protocol framing bytes
const (
	SyncByte = 0xDA // transmitted twice at the start of every frame
)

// Packet size limits
const (
	HeaderSize     = 6   // cookie + unitId + serviceId(2) + messageId + checksum
	MaxPayloadSize = 256 // payloads of this size or larger are rejected
	FrameOverhead  = 4   // sync(2) + length(2), precedes the packet on the wire
	MaxFrameSize   = FrameOverhead + HeaderSize + MaxPayloadSize
)

// DefaultCookie is stamped into every locally built packet. Remote ends echo
// whatever cookie they like; the parser records it without judgement.
const DefaultCookie = 0x68

// ServiceID identifies a CMND protocol service
type ServiceID uint16

// Service identifiers
const (
	ServiceGeneral                  ServiceID = 0x0000
	ServiceDeviceManagement         ServiceID = 0x0001
	ServiceIdentify                 ServiceID = 0x0004
	ServiceAttributeReporting       ServiceID = 0x0006
	ServiceAlert                    ServiceID = 0x0100
	ServiceTamperAlert              ServiceID = 0x0101
	ServiceDetectorProblemAlert     ServiceID = 0x0102
	ServiceBattery                  ServiceID = 0x0103
	ServiceKeepAlive                ServiceID = 0x0104
	ServiceArmDisarm                ServiceID = 0x0105
	ServiceOnOff                    ServiceID = 0x0106
	ServiceFun                      ServiceID = 0x0108
	ServiceDebug                    ServiceID = 0x0109
	ServiceKeyPress                 ServiceID = 0x010A
	ServiceSystem                   ServiceID = 0x0201
	ServiceTechnician               ServiceID = 0x0202
	ServiceParameters               ServiceID = 0x0203
	ServiceSleep                    ServiceID = 0x0204
	ServiceManufactureConfiguration ServiceID = 0x0206
	ServiceUleVoiceCall             ServiceID = 0x020A
	ServiceProduction               ServiceID = 0x020B
	ServiceSuota                    ServiceID = 0x020C
	ServiceCertification            ServiceID = 0x020D
	ServiceRemoteControl            ServiceID = 0x020E
	ServiceSuotaProprietary         ServiceID = 0x020F
	ServiceBroadcasting             ServiceID = 0x0210
	ServiceUnknown                  ServiceID = 0xFFFF
)

// Message IDs - General service
const (
	MsgGeneralHelloInd               = 0x05
	MsgGeneralErrorInd               = 0x06
	MsgGeneralLinkCfm                = 0x07
	MsgGeneralGetStatusReq           = 0x08
	MsgGeneralGetStatusRes           = 0x09
	MsgGeneralHelloReq               = 0x0A
	MsgGeneralGetVersionReq          = 0x0B
	MsgGeneralGetVersionRes          = 0x0C
	MsgGeneralTransactionStartReq    = 0x0D
	MsgGeneralTransactionStartCfm    = 0x0E
	MsgGeneralTransactionEndReq      = 0x0F
	MsgGeneralTransactionEndCfm      = 0x10
	MsgGeneralLinkMaintainStartReq   = 0x11
	MsgGeneralLinkMaintainStartCfm   = 0x12
	MsgGeneralLinkMaintainStopReq    = 0x13
	MsgGeneralLinkMaintainStopCfm    = 0x14
	MsgGeneralLinkMaintainStoppedInd = 0x15
)

// Message IDs - DeviceManagement service
const (
	MsgDevMgntRegisterDeviceReq   = 0x01
	MsgDevMgntRegisterDeviceCfm   = 0x02
	MsgDevMgntDeregisterDeviceReq = 0x03
	MsgDevMgntDeregisterDeviceCfm = 0x04
	MsgDevMgntRegisterDeviceInd   = 0x05
)

// Message IDs - System service
const (
	MsgSysBatteryMeasureGetReq = 0x01
	MsgSysBatteryMeasureGetRes = 0x02
	MsgSysRssiGetReq           = 0x03
	MsgSysRssiGetRes           = 0x04
	MsgSysBatteryIndEnableReq  = 0x05
	MsgSysBatteryIndDisableReq = 0x06
	MsgSysBatteryIndLowInd     = 0x07
	MsgSysResetReq             = 0x08
	MsgSysBatteryEndLifeInd    = 0x09
)

// Message IDs - Parameters service
const (
	MsgParamGetReq       = 0x01
	MsgParamGetRes       = 0x02
	MsgParamSetReq       = 0x03
	MsgParamSetRes       = 0x04
	MsgParamGetDirectReq = 0x05
	MsgParamGetDirectRes = 0x06
	MsgParamSetDirectReq = 0x07
	MsgParamSetDirectRes = 0x08
)

// Message IDs - Production service
const (
	MsgProdStartReq              = 0x01 // enable production mode, takes effect after restart
	MsgProdEndReq                = 0x02 // disable production mode, takes effect after restart
	MsgProdCfm                   = 0x03 // default response to a production request
	MsgProdRefClkTuneStartReq    = 0x04
	MsgProdRefClkTuneEndReq      = 0x05
	MsgProdRefClkTuneEndRes      = 0x06
	MsgProdRefClkTuneAdjReq      = 0x07
	MsgProdBgReq                 = 0x08
	MsgProdBgRes                 = 0x09
	MsgProdAteInitReq            = 0x0A
	MsgProdAteStopReq            = 0x0B
	MsgProdAteContinuousStartReq = 0x0C
	MsgProdAteRxStartReq         = 0x0D
	MsgProdAteRxStartRes         = 0x0E
	MsgProdAteTxStartReq         = 0x0F
	MsgProdAteGetBerFerReq       = 0x10
	MsgProdInitEepromDefReq      = 0x11
	MsgProdSpecificPresetReq     = 0x12 // re-initialize EEPROM from a named preset
	MsgProdSleepReq              = 0x13
	MsgProdSetSimpleGpioLow      = 0x14
	MsgProdSetSimpleGpioHigh     = 0x15
	MsgProdGetSimpleGpioState    = 0x16
	MsgProdGetSimpleGpioStateRes = 0x17
	MsgProdSetUleGpioLow         = 0x18
	MsgProdSetUleGpioHigh        = 0x19
	MsgProdGetUleGpioState       = 0x1A
	MsgProdGetUleGpioStateRes    = 0x1B
	MsgProdSetUleGpioDirInputReq = 0x1C
	MsgProdResetEeprom           = 0x1D
	MsgProdFwUpdateReq           = 0x1E
	MsgProdGpioLoopbackTestReq   = 0x1F
	MsgProdAteRxLockingStartReq  = 0x20
)

// Message IDs - Alert and TamperAlert services
const (
	MsgAlertNotifyStatusReq = 0x01
	MsgAlertNotifyStatusRes = 0x02
)

// Message IDs - Fun service
const (
	MsgFunSendReq = 0x01
	MsgFunSendCfm = 0x02
	MsgFunRecvInd = 0x03
)

// Message IDs - KeepAlive service
const (
	MsgKeepAliveImAliveInd = 0x01
)

// Message IDs - UleVoiceCall service
const (
	MsgUleCallStartReq     = 0x01
	MsgUleCallStartCfm     = 0x02
	MsgUleCallStartInd     = 0x03
	MsgUleCallStartRes     = 0x04
	MsgUleCallEndReq       = 0x05
	MsgUleCallEndCfm       = 0x06
	MsgUleCallEndInd       = 0x07
	MsgUleCallEndRes       = 0x08
	MsgUleCallConnectedInd = 0x09
	MsgUleCallReleaseInd   = 0x0A
)

// Framer states (internal)
const (
	stateIdle    = iota // hunting for the first sync byte
	stateSync           // first sync byte seen, expecting the second
	stateLenHigh
	stateLenLow
	statePacket
)

// IE type tags
const (
	IETagResponse             = 0x00
	IETagBaseWanted           = 0x01
	IETagRegistrationResponse = 0x02
	IETagAlert                = 0x03
	IETagVersion              = 0x09
	IETagParameter            = 0x0B
	IETagParameterDirect      = 0x0C
	IETagGeneralStatus        = 0x0D
	IETagFun                  = 0x0E
	IETagCallSettings         = 0x0F
	IETagU8                   = 0x1E
)

// IE header: tag byte + big-endian uint16 value length
const ieHeaderSize = 3

// RfpiSize is the length of a DECT base identity (RFPI)
const RfpiSize = 5

// MaxFunDataSize bounds the raw data carried by a single FUN IE
const MaxFunDataSize = 128

// ResultOk is the success result carried by a response IE
const ResultOk = 0x00

// PowerupMode reports which mode the board booted into
type PowerupMode byte

// Powerup mode values
const (
	PowerupModeNormal     PowerupMode = 0x00
	PowerupModeSafe       PowerupMode = 0x01
	PowerupModeProduction PowerupMode = 0x02
)

// Registration status values reported in the general status IE
const (
	RegStatusNotRegistered = 0x00
	RegStatusRegistered    = 0x01
)

// ParamAddress selects which memory a parameter access targets
type ParamAddress byte

// Parameter address types
const (
	ParamAddressHanEeprom  ParamAddress = 0x00
	ParamAddressRam        ParamAddress = 0x01
	ParamAddressDectEeprom ParamAddress = 0x02
	ParamAddressDaif       ParamAddress = 0x03
)

// EepromParam identifies a HAN EEPROM parameter
type EepromParam byte

// HAN EEPROM parameter identifiers
const (
	ParamRxTun                  EepromParam = 0x00
	ParamIpei                   EepromParam = 0x01
	ParamTbr6                   EepromParam = 0x02
	ParamDectCarrier            EepromParam = 0x03
	ParamProdEnable             EepromParam = 0x04
	ParamExtSlotType            EepromParam = 0x05
	ParamFriendlyName           EepromParam = 0x06
	ParamSwVersion              EepromParam = 0x07
	ParamHwVersion              EepromParam = 0x08
	ParamManufactureName        EepromParam = 0x09
	ParamInfoTable              EepromParam = 0x0A
	ParamPluginMap              EepromParam = 0x0B
	ParamAuxBgProg              EepromParam = 0x0C
	ParamPorBgCfg               EepromParam = 0x0D
	ParamDectFullPower          EepromParam = 0x0E
	ParamDectPa2Comp            EepromParam = 0x0F
	ParamDectSupportFcc         EepromParam = 0x10
	ParamDectDeviation          EepromParam = 0x11
	ParamHanRegRetryTimeout     EepromParam = 0x12
	ParamHanLockMaxRetry        EepromParam = 0x13
	ParamHanRegPinCode          EepromParam = 0x14
	ParamHanEnableAutoReg       EepromParam = 0x15
	ParamHanSysOffUsed          EepromParam = 0x16
	ParamHanInfoLocation        EepromParam = 0x17
	ParamHanHbrOsc              EepromParam = 0x18
	ParamHanRetransmitUrgent    EepromParam = 0x19
	ParamHanRetransmitNormal    EepromParam = 0x1A
	ParamHanPagingCaps          EepromParam = 0x1B
	ParamHanMinSleepTime        EepromParam = 0x1C
	ParamHanPluginSupported     EepromParam = 0x1D
	ParamDectEmc                EepromParam = 0x1E
	ParamRssiSettings           EepromParam = 0x1F
	ParamHanGeneralFlags        EepromParam = 0x20
	ParamHanHandledExternally   EepromParam = 0x21
	ParamHanActualResponseTime  EepromParam = 0x22
	ParamHanDeviceEnable        EepromParam = 0x23
	ParamHanDeviceUid           EepromParam = 0x24
	ParamHanSerialNum           EepromParam = 0x25
	ParamHfCoreReleaseVer       EepromParam = 0x26
	ParamProfileReleaseVer      EepromParam = 0x27
	ParamInterfaceReleaseVer    EepromParam = 0x28
	ParamHanKeepAliveTimeout    EepromParam = 0x29
	ParamRegistrationStatus     EepromParam = 0x2A
	ParamHanHibernationWatchdog EepromParam = 0x2B
	ParamUleGpioMappingEvent    EepromParam = 0x2C
	ParamAttrReportingSupported EepromParam = 0x2D
	ParamHwType                 EepromParam = 0x2E
	ParamMulticastType          EepromParam = 0x2F
)

// Alert states carried by the alert IE state bitmask
const (
	AlertStateCleared  = 0x00000000
	AlertStateAlerting = 0x00000001
)

// FunUnitTypeSmokeDetector is the HAN unit type the starter applications
// report alerts from
const FunUnitTypeSmokeDetector = 0x0203

// FUN message types
const (
	FunMsgTypeCommand = 0x01
)

// Raw data exchange defaults: proprietary interface carried over FUN
const (
	RawDataUnitNumber  = 3
	RawDataInterfaceID = 0x7F16
)

// Call settings field mask bits
const (
	CallSettingPreferredCodec = 0x00000001
	CallSettingDigits         = 0x00000002
	CallSettingOtherPartyName = 0x00000004
	CallSettingOtherPartyID   = 0x00000008
)
