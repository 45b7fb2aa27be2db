// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import "fmt"

// AnomalyType represents different types of message anomalies
type AnomalyType int

const (
	AnomalyUnexpectedCookie AnomalyType = iota
	AnomalyUnknownService
	AnomalyUnknownMessage
	AnomalyRequestFailed
	AnomalyMalformedIE
	AnomalyUnexpectedPayload
)

// ValidationError represents a message validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateMessage validates message structure and detects anomalies
// Returns a slice of validation errors (empty if message is valid)
func ValidateMessage(m *Message) []ValidationError {
	errors := []ValidationError{}

	errors = append(errors, validateEnvelope(m)...)
	errors = append(errors, validatePayload(m)...)

	return errors
}

// validateEnvelope checks the header fields against the known protocol tables
func validateEnvelope(m *Message) []ValidationError {
	errors := []ValidationError{}

	if m.cookie != DefaultCookie {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnexpectedCookie,
			Message: fmt.Sprintf("Unexpected cookie 0x%02X (expected 0x%02X)", m.cookie, DefaultCookie),
			Details: map[string]interface{}{"cookie": m.cookie, "expected": byte(DefaultCookie)},
		})
	}

	if ServiceName(m.serviceID) == "UNKNOWN" {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownService,
			Message: fmt.Sprintf("Unknown service 0x%04X", uint16(m.serviceID)),
			Details: map[string]interface{}{"service": uint16(m.serviceID)},
		})
	} else if hasMessageTable(m.serviceID) && MessageName(m.serviceID, m.messageID) == "UNKNOWN" {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownMessage,
			Message: fmt.Sprintf("Unknown message 0x%02X for service %s", m.messageID, ServiceName(m.serviceID)),
			Details: map[string]interface{}{"service": uint16(m.serviceID), "message": m.messageID},
		})
	}

	return errors
}

// validatePayload checks IE structure and the carried response result
func validatePayload(m *Message) []ValidationError {
	errors := []ValidationError{}

	if m.DataLength() == 0 {
		return errors
	}

	if isBodiless(m.serviceID, m.messageID) {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnexpectedPayload,
			Message: fmt.Sprintf("%d payload bytes on %s %s", m.DataLength(), ServiceName(m.serviceID), MessageName(m.serviceID, m.messageID)),
			Details: map[string]interface{}{"length": m.DataLength()},
		})
	}

	ies, err := ParseIEs(m.payload)
	if err != nil {
		errors = append(errors, ValidationError{
			Type:    AnomalyMalformedIE,
			Message: fmt.Sprintf("Inconsistent IE lengths: %v", err),
			Details: map[string]interface{}{"error": err.Error(), "length": m.DataLength()},
		})
	}

	for _, ie := range ies {
		if ie.Tag != IETagResponse {
			continue
		}
		var resp IEResponse
		if resp.Unpack(ie.Value) == nil && !resp.Ok() {
			errors = append(errors, ValidationError{
				Type:    AnomalyRequestFailed,
				Message: fmt.Sprintf("%s %s failed with result 0x%02X", ServiceName(m.serviceID), MessageName(m.serviceID, m.messageID), resp.Result),
				Details: map[string]interface{}{"result": resp.Result, "service": uint16(m.serviceID), "message": m.messageID},
			})
		}
	}

	return errors
}

// hasMessageTable reports whether a service's message identifiers are known.
// Services without a table accept any message id without complaint.
func hasMessageTable(service ServiceID) bool {
	switch service {
	case ServiceGeneral, ServiceDeviceManagement, ServiceSystem, ServiceParameters,
		ServiceProduction, ServiceAlert, ServiceTamperAlert, ServiceDetectorProblemAlert,
		ServiceFun, ServiceKeepAlive, ServiceUleVoiceCall:
		return true
	default:
		return false
	}
}

// isBodiless reports whether a message is defined to carry no payload
func isBodiless(service ServiceID, messageID byte) bool {
	switch service {
	case ServiceGeneral:
		return messageID == MsgGeneralHelloReq ||
			messageID == MsgGeneralGetStatusReq || messageID == MsgGeneralGetVersionReq
	case ServiceSystem:
		return messageID == MsgSysResetReq || messageID == MsgSysBatteryMeasureGetReq ||
			messageID == MsgSysBatteryIndEnableReq || messageID == MsgSysBatteryIndDisableReq ||
			messageID == MsgSysRssiGetReq
	case ServiceProduction:
		return messageID == MsgProdStartReq || messageID == MsgProdEndReq
	case ServiceKeepAlive:
		return messageID == MsgKeepAliveImAliveInd
	default:
		return false
	}
}
