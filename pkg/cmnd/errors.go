// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import "errors"

// FrameErrorType classifies framing failures
type FrameErrorType int

const (
	FrameErrTooShort FrameErrorType = iota
	FrameErrPayloadTooLarge
	FrameErrChecksumInvalid
	FrameErrResynchronized
)

// String returns the frame error type name
func (t FrameErrorType) String() string {
	switch t {
	case FrameErrTooShort:
		return "TOO_SHORT"
	case FrameErrPayloadTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case FrameErrChecksumInvalid:
		return "CHECKSUM_INVALID"
	case FrameErrResynchronized:
		return "RESYNCHRONIZED"
	default:
		return "UNKNOWN"
	}
}

// FrameError represents a recoverable framing failure. The byte-stream path
// wraps the discarding cause in a FrameErrResynchronized error; the
// whole-buffer path returns the cause directly.
type FrameError struct {
	Type    FrameErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *FrameError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *FrameError) Unwrap() error {
	return e.Cause
}

// IsFrameError reports whether err is a FrameError of the given type,
// directly or anywhere in its wrap chain
func IsFrameError(err error, t FrameErrorType) bool {
	var fe *FrameError
	for errors.As(err, &fe) {
		if fe.Type == t {
			return true
		}
		if fe.Cause == nil {
			return false
		}
		err = fe.Cause
	}
	return false
}
