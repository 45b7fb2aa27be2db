// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"fmt"
)

// FormatMessage formats a message into a human-readable string
func FormatMessage(m *Message) string {
	timestamp := m.timestamp.Format("15:04:05.000")

	result := fmt.Sprintf("[%s] %s (0x%04X) %s (0x%02X) unit=%d len=%d\n",
		timestamp, ServiceName(m.serviceID), uint16(m.serviceID),
		MessageName(m.serviceID, m.messageID), m.messageID, m.unitID, m.DataLength())

	if m.DataLength() > 0 {
		result += FormatPayload(m.payload)
	}

	return result
}

// ServiceName returns the human-readable name for a service identifier
func ServiceName(service ServiceID) string {
	switch service {
	case ServiceGeneral:
		return "GENERAL"
	case ServiceDeviceManagement:
		return "DEVICE_MANAGEMENT"
	case ServiceIdentify:
		return "IDENTIFY"
	case ServiceAttributeReporting:
		return "ATTRIBUTE_REPORTING"
	case ServiceAlert:
		return "ALERT"
	case ServiceTamperAlert:
		return "TAMPER_ALERT"
	case ServiceDetectorProblemAlert:
		return "DETECTOR_PROBLEM_ALERT"
	case ServiceBattery:
		return "BATTERY"
	case ServiceKeepAlive:
		return "KEEP_ALIVE"
	case ServiceArmDisarm:
		return "ARM_DISARM"
	case ServiceOnOff:
		return "ON_OFF"
	case ServiceFun:
		return "FUN"
	case ServiceDebug:
		return "DEBUG"
	case ServiceKeyPress:
		return "KEY_PRESS"
	case ServiceSystem:
		return "SYSTEM"
	case ServiceTechnician:
		return "TECHNICIAN"
	case ServiceParameters:
		return "PARAMETERS"
	case ServiceSleep:
		return "SLEEP"
	case ServiceManufactureConfiguration:
		return "MANUFACTURE_CONFIGURATION"
	case ServiceUleVoiceCall:
		return "ULE_VOICE_CALL"
	case ServiceProduction:
		return "PRODUCTION"
	case ServiceSuota:
		return "SUOTA"
	case ServiceCertification:
		return "CERTIFICATION"
	case ServiceRemoteControl:
		return "REMOTE_CONTROL"
	case ServiceSuotaProprietary:
		return "SUOTA_PROPRIETARY"
	case ServiceBroadcasting:
		return "BROADCASTING"
	default:
		return "UNKNOWN"
	}
}

// MessageName returns the human-readable name for a message within a service
func MessageName(service ServiceID, messageID byte) string {
	switch service {
	case ServiceGeneral:
		return generalMessageName(messageID)
	case ServiceDeviceManagement:
		return deviceManagementMessageName(messageID)
	case ServiceSystem:
		return systemMessageName(messageID)
	case ServiceParameters:
		return parametersMessageName(messageID)
	case ServiceProduction:
		return productionMessageName(messageID)
	case ServiceAlert, ServiceTamperAlert, ServiceDetectorProblemAlert:
		return alertMessageName(messageID)
	case ServiceFun:
		return funMessageName(messageID)
	case ServiceKeepAlive:
		return keepAliveMessageName(messageID)
	case ServiceUleVoiceCall:
		return voiceCallMessageName(messageID)
	default:
		return "UNKNOWN"
	}
}

func generalMessageName(messageID byte) string {
	switch messageID {
	case MsgGeneralHelloInd:
		return "HELLO_IND"
	case MsgGeneralErrorInd:
		return "ERROR_IND"
	case MsgGeneralLinkCfm:
		return "LINK_CFM"
	case MsgGeneralGetStatusReq:
		return "GET_STATUS_REQ"
	case MsgGeneralGetStatusRes:
		return "GET_STATUS_RES"
	case MsgGeneralHelloReq:
		return "HELLO_REQ"
	case MsgGeneralGetVersionReq:
		return "GET_VERSION_REQ"
	case MsgGeneralGetVersionRes:
		return "GET_VERSION_RES"
	case MsgGeneralTransactionStartReq:
		return "TRANSACTION_START_REQ"
	case MsgGeneralTransactionStartCfm:
		return "TRANSACTION_START_CFM"
	case MsgGeneralTransactionEndReq:
		return "TRANSACTION_END_REQ"
	case MsgGeneralTransactionEndCfm:
		return "TRANSACTION_END_CFM"
	case MsgGeneralLinkMaintainStartReq:
		return "LINK_MAINTAIN_START_REQ"
	case MsgGeneralLinkMaintainStartCfm:
		return "LINK_MAINTAIN_START_CFM"
	case MsgGeneralLinkMaintainStopReq:
		return "LINK_MAINTAIN_STOP_REQ"
	case MsgGeneralLinkMaintainStopCfm:
		return "LINK_MAINTAIN_STOP_CFM"
	case MsgGeneralLinkMaintainStoppedInd:
		return "LINK_MAINTAIN_STOPPED_IND"
	default:
		return "UNKNOWN"
	}
}

func deviceManagementMessageName(messageID byte) string {
	switch messageID {
	case MsgDevMgntRegisterDeviceReq:
		return "REGISTER_DEVICE_REQ"
	case MsgDevMgntRegisterDeviceCfm:
		return "REGISTER_DEVICE_CFM"
	case MsgDevMgntDeregisterDeviceReq:
		return "DEREGISTER_DEVICE_REQ"
	case MsgDevMgntDeregisterDeviceCfm:
		return "DEREGISTER_DEVICE_CFM"
	case MsgDevMgntRegisterDeviceInd:
		return "REGISTER_DEVICE_IND"
	default:
		return "UNKNOWN"
	}
}

func systemMessageName(messageID byte) string {
	switch messageID {
	case MsgSysBatteryMeasureGetReq:
		return "BATTERY_MEASURE_GET_REQ"
	case MsgSysBatteryMeasureGetRes:
		return "BATTERY_MEASURE_GET_RES"
	case MsgSysRssiGetReq:
		return "RSSI_GET_REQ"
	case MsgSysRssiGetRes:
		return "RSSI_GET_RES"
	case MsgSysBatteryIndEnableReq:
		return "BATTERY_IND_ENABLE_REQ"
	case MsgSysBatteryIndDisableReq:
		return "BATTERY_IND_DISABLE_REQ"
	case MsgSysBatteryIndLowInd:
		return "BATTERY_IND_LOW_IND"
	case MsgSysResetReq:
		return "RESET_REQ"
	case MsgSysBatteryEndLifeInd:
		return "BATTERY_END_LIFE_IND"
	default:
		return "UNKNOWN"
	}
}

func parametersMessageName(messageID byte) string {
	switch messageID {
	case MsgParamGetReq:
		return "GET_REQ"
	case MsgParamGetRes:
		return "GET_RES"
	case MsgParamSetReq:
		return "SET_REQ"
	case MsgParamSetRes:
		return "SET_RES"
	case MsgParamGetDirectReq:
		return "GET_DIRECT_REQ"
	case MsgParamGetDirectRes:
		return "GET_DIRECT_RES"
	case MsgParamSetDirectReq:
		return "SET_DIRECT_REQ"
	case MsgParamSetDirectRes:
		return "SET_DIRECT_RES"
	default:
		return "UNKNOWN"
	}
}

func productionMessageName(messageID byte) string {
	switch messageID {
	case MsgProdStartReq:
		return "START_REQ"
	case MsgProdEndReq:
		return "END_REQ"
	case MsgProdCfm:
		return "CFM"
	case MsgProdRefClkTuneStartReq:
		return "REF_CLK_TUNE_START_REQ"
	case MsgProdRefClkTuneEndReq:
		return "REF_CLK_TUNE_END_REQ"
	case MsgProdRefClkTuneEndRes:
		return "REF_CLK_TUNE_END_RES"
	case MsgProdRefClkTuneAdjReq:
		return "REF_CLK_TUNE_ADJ_REQ"
	case MsgProdBgReq:
		return "BG_REQ"
	case MsgProdBgRes:
		return "BG_RES"
	case MsgProdAteInitReq:
		return "ATE_INIT_REQ"
	case MsgProdAteStopReq:
		return "ATE_STOP_REQ"
	case MsgProdAteContinuousStartReq:
		return "ATE_CONTINUOUS_START_REQ"
	case MsgProdAteRxStartReq:
		return "ATE_RX_START_REQ"
	case MsgProdAteRxStartRes:
		return "ATE_RX_START_RES"
	case MsgProdAteTxStartReq:
		return "ATE_TX_START_REQ"
	case MsgProdAteGetBerFerReq:
		return "ATE_GET_BER_FER_REQ"
	case MsgProdInitEepromDefReq:
		return "INIT_EEPROM_DEF_REQ"
	case MsgProdSpecificPresetReq:
		return "SPECIFIC_PRESET_REQ"
	case MsgProdSleepReq:
		return "SLEEP_REQ"
	case MsgProdSetSimpleGpioLow:
		return "SET_SIMPLE_GPIO_LOW"
	case MsgProdSetSimpleGpioHigh:
		return "SET_SIMPLE_GPIO_HIGH"
	case MsgProdGetSimpleGpioState:
		return "GET_SIMPLE_GPIO_STATE"
	case MsgProdGetSimpleGpioStateRes:
		return "GET_SIMPLE_GPIO_STATE_RES"
	case MsgProdSetUleGpioLow:
		return "SET_ULE_GPIO_LOW"
	case MsgProdSetUleGpioHigh:
		return "SET_ULE_GPIO_HIGH"
	case MsgProdGetUleGpioState:
		return "GET_ULE_GPIO_STATE"
	case MsgProdGetUleGpioStateRes:
		return "GET_ULE_GPIO_STATE_RES"
	case MsgProdSetUleGpioDirInputReq:
		return "SET_ULE_GPIO_DIR_INPUT_REQ"
	case MsgProdResetEeprom:
		return "RESET_EEPROM"
	case MsgProdFwUpdateReq:
		return "FW_UPDATE_REQ"
	case MsgProdGpioLoopbackTestReq:
		return "GPIO_LOOPBACK_TEST_REQ"
	case MsgProdAteRxLockingStartReq:
		return "ATE_RX_LOCKING_START_REQ"
	default:
		return "UNKNOWN"
	}
}

func alertMessageName(messageID byte) string {
	switch messageID {
	case MsgAlertNotifyStatusReq:
		return "NOTIFY_STATUS_REQ"
	case MsgAlertNotifyStatusRes:
		return "NOTIFY_STATUS_RES"
	default:
		return "UNKNOWN"
	}
}

func funMessageName(messageID byte) string {
	switch messageID {
	case MsgFunSendReq:
		return "SEND_REQ"
	case MsgFunSendCfm:
		return "SEND_CFM"
	case MsgFunRecvInd:
		return "RECV_IND"
	default:
		return "UNKNOWN"
	}
}

func keepAliveMessageName(messageID byte) string {
	switch messageID {
	case MsgKeepAliveImAliveInd:
		return "IM_ALIVE_IND"
	default:
		return "UNKNOWN"
	}
}

func voiceCallMessageName(messageID byte) string {
	switch messageID {
	case MsgUleCallStartReq:
		return "START_REQ"
	case MsgUleCallStartCfm:
		return "START_CFM"
	case MsgUleCallStartInd:
		return "START_IND"
	case MsgUleCallStartRes:
		return "START_RES"
	case MsgUleCallEndReq:
		return "END_REQ"
	case MsgUleCallEndCfm:
		return "END_CFM"
	case MsgUleCallEndInd:
		return "END_IND"
	case MsgUleCallEndRes:
		return "END_RES"
	case MsgUleCallConnectedInd:
		return "CONNECTED_IND"
	case MsgUleCallReleaseInd:
		return "RELEASE_IND"
	default:
		return "UNKNOWN"
	}
}

// FormatPayload formats an IE-structured payload, one line per element
func FormatPayload(payload []byte) string {
	ies, err := ParseIEs(payload)
	result := ""
	for _, ie := range ies {
		result += FormatIE(ie)
	}
	if err != nil {
		result += fmt.Sprintf("  (truncated IE data: %s)\n", formatBytes(payload))
	}
	return result
}

// FormatIE formats a single information element
func FormatIE(ie IE) string {
	switch ie.Tag {
	case IETagResponse:
		var resp IEResponse
		if resp.Unpack(ie.Value) == nil {
			if resp.Ok() {
				return "  Response: OK\n"
			}
			return fmt.Sprintf("  Response: FAILED (0x%02X)\n", resp.Result)
		}

	case IETagVersion:
		var ver IEVersion
		if ver.Unpack(ie.Value) == nil {
			return fmt.Sprintf("  Version: %s\n", ver.Version)
		}

	case IETagParameter:
		var param IEParameter
		if param.Unpack(ie.Value) == nil {
			if len(param.Data) > 0 {
				return fmt.Sprintf("  Parameter: %s id=0x%02X data=%s\n",
					formatParamAddress(param.Type), param.ID, formatBytes(param.Data))
			}
			return fmt.Sprintf("  Parameter: %s id=0x%02X\n", formatParamAddress(param.Type), param.ID)
		}

	case IETagParameterDirect:
		var param IEParameterDirect
		if param.Unpack(ie.Value) == nil {
			if len(param.Data) > 0 {
				return fmt.Sprintf("  ParameterDirect: %s offset=0x%08X data=%s\n",
					formatParamAddress(param.Type), param.Offset, formatBytes(param.Data))
			}
			return fmt.Sprintf("  ParameterDirect: %s offset=0x%08X len=%d\n",
				formatParamAddress(param.Type), param.Offset, param.Length)
		}

	case IETagGeneralStatus:
		var status IEGeneralStatus
		if status.Unpack(ie.Value) == nil {
			return fmt.Sprintf("  Status: powerup=%s registration=%s eeprom=0x%02X device=0x%04X\n",
				formatPowerupMode(status.PowerupMode), formatRegStatus(status.RegStatus),
				status.EepromStatus, status.DeviceID)
		}

	case IETagU8:
		var u8 IEU8
		if u8.Unpack(ie.Value) == nil {
			return fmt.Sprintf("  U8: 0x%02X (%d)\n", u8.Value, u8.Value)
		}

	case IETagRegistrationResponse:
		var reg IERegistrationResponse
		if reg.Unpack(ie.Value) == nil {
			outcome := "ACCEPTED"
			if reg.ResponseCode != ResultOk {
				outcome = fmt.Sprintf("REJECTED (0x%02X)", reg.ResponseCode)
			}
			return fmt.Sprintf("  Registration: %s device=0x%04X\n", outcome, reg.DeviceAddress)
		}

	case IETagBaseWanted:
		var base IEBaseWanted
		if base.Unpack(ie.Value) == nil {
			return fmt.Sprintf("  Base RFPI: % X\n", base.Rfpi[:])
		}

	case IETagAlert:
		var alert IEAlert
		if alert.Unpack(ie.Value) == nil {
			state := "CLEARED"
			if alert.State != AlertStateCleared {
				state = fmt.Sprintf("ALERTING (0x%08X)", alert.State)
			}
			return fmt.Sprintf("  Alert: unit_type=0x%04X state=%s\n", alert.UnitType, state)
		}

	case IETagFun:
		var fun IEFun
		if fun.Unpack(ie.Value) == nil {
			result := fmt.Sprintf("  FUN: 0x%04X.%d -> 0x%04X.%d iface=0x%04X member=%d type=0x%02X",
				fun.SrcDeviceID, fun.SrcUnitID, fun.DstDeviceID, fun.DstUnitID,
				fun.InterfaceID, fun.InterfaceMember, fun.MessageType)
			if len(fun.Data) > 0 {
				result += fmt.Sprintf(" data=%s", formatBytes(fun.Data))
			}
			return result + "\n"
		}

	case IETagCallSettings:
		var settings IECallSettings
		if settings.Unpack(ie.Value) == nil {
			result := "  Call:"
			if settings.FieldMask&CallSettingPreferredCodec != 0 {
				result += fmt.Sprintf(" codec=0x%02X", settings.PreferredCodec)
			}
			if settings.FieldMask&CallSettingDigits != 0 {
				result += fmt.Sprintf(" digits=%q", settings.Digits)
			}
			if settings.FieldMask&CallSettingOtherPartyName != 0 {
				result += fmt.Sprintf(" name=%q", settings.OtherPartyName)
			}
			if settings.FieldMask&CallSettingOtherPartyID != 0 {
				result += fmt.Sprintf(" id=%q", settings.OtherPartyID)
			}
			if settings.FieldMask == 0 {
				result += " (no fields)"
			}
			return result + "\n"
		}
	}

	// Unknown tag or a value the typed codec would not accept
	return fmt.Sprintf("  IE 0x%02X: %s\n", ie.Tag, formatBytes(ie.Value))
}

// formatBytes renders a byte string as spaced hex
func formatBytes(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("% X", data)
}

// formatPowerupMode returns a human-readable powerup mode name
func formatPowerupMode(mode PowerupMode) string {
	switch mode {
	case PowerupModeNormal:
		return "NORMAL"
	case PowerupModeSafe:
		return "SAFE"
	case PowerupModeProduction:
		return "PRODUCTION"
	default:
		return "UNKNOWN"
	}
}

// formatRegStatus returns a human-readable registration status name
func formatRegStatus(status byte) string {
	switch status {
	case RegStatusNotRegistered:
		return "NOT_REGISTERED"
	case RegStatusRegistered:
		return "REGISTERED"
	default:
		return "UNKNOWN"
	}
}

// formatParamAddress returns a human-readable parameter address space name
func formatParamAddress(addr ParamAddress) string {
	switch addr {
	case ParamAddressHanEeprom:
		return "HAN_EEPROM"
	case ParamAddressRam:
		return "RAM"
	case ParamAddressDectEeprom:
		return "DECT_EEPROM"
	case ParamAddressDaif:
		return "DAIF"
	default:
		return "UNKNOWN"
	}
}
