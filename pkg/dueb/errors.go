// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package dueb

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations after the session has shut down,
// either through Close or a fatal read error.
var ErrClosed = errors.New("session closed")

// ResponseError reports a request the board answered with a failure result
type ResponseError struct {
	Op     string
	Result byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: board returned result 0x%02X", e.Op, e.Result)
}

// IsResponseError reports whether err carries a board failure result,
// returning the typed error when it does
func IsResponseError(err error) (*ResponseError, bool) {
	var re *ResponseError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
