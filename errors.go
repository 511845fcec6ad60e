// rfid-util
// Copyright (c) 2025 The rfid-util Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of rfid-util.
//
// rfid-util is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// rfid-util is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with rfid-util; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package rfidutil

import (
	"errors"
	"fmt"
)

// Discovery and session errors
var (
	ErrDiscoveryExhausted = errors.New("reader not found")
	ErrEndpointOpenFailed = errors.New("endpoint open failed")
	ErrHandshakeTimeout   = errors.New("handshake timeout")
	ErrHandshakeMismatch  = errors.New("handshake reply lacks identity marker")
	ErrNotConnected       = errors.New("reader not connected")
	ErrConnectionLost     = errors.New("connection lost")
)

// Command errors
var (
	ErrValidation         = errors.New("invalid command parameters")
	ErrEncoding           = errors.New("command encoding failed")
	ErrUnsupportedCommand = errors.New("command not supported by protocol revision")
	ErrPayloadDecode      = errors.New("sector payload is not valid text")
	ErrProtocolFail       = errors.New("reader reported failure")
)

// Transport errors
var (
	ErrTransportClosed = errors.New("transport closed")
	ErrTransportRead   = errors.New("transport read failed")
	ErrTransportWrite  = errors.New("transport write failed")
)

// ErrorType classifies errors for handling decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates the operation should not be retried
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates a per-candidate failure; try the next one
	ErrorTypeTransient
	// ErrorTypeTimeout indicates the device did not answer in time
	ErrorTypeTimeout
	// ErrorTypeDisconnected indicates the open endpoint went away
	ErrorTypeDisconnected
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError wraps a failure on a serial endpoint with its context
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError. Transient and timeout errors are
// marked retryable.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a handshake timeout error for a port
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrHandshakeTimeout, ErrorTypeTimeout)
}

// ValidationError reports a malformed user supplied command parameter
type ValidationError struct {
	Value  any
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (*ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// EncodingError reports a command whose payload does not match its shape.
// Seeing one means validation was bypassed.
type EncodingError struct {
	Kind   CommandKind
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Kind, e.Reason)
}

func (*EncodingError) Unwrap() error {
	return ErrEncoding
}

// PayloadDecodeError reports sector bytes that could not be read as text
type PayloadDecodeError struct {
	Err error
	Hex string
}

func (e *PayloadDecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %q", ErrPayloadDecode, e.Hex)
	}
	return fmt.Sprintf("%v: %q: %v", ErrPayloadDecode, e.Hex, e.Err)
}

func (e *PayloadDecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPayloadDecode}
	}
	return []error{ErrPayloadDecode, e.Err}
}

// GetErrorType returns the classification of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrHandshakeTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrConnectionLost), errors.Is(err, ErrTransportClosed):
		return ErrorTypeDisconnected
	case errors.Is(err, ErrEndpointOpenFailed), errors.Is(err, ErrHandshakeMismatch),
		errors.Is(err, ErrTransportRead), errors.Is(err, ErrTransportWrite):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// IsRetryable reports whether the failed operation may succeed if repeated.
// Device reported failures are retryable: the caller may reissue the command.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	if errors.Is(err, ErrProtocolFail) {
		return true
	}

	switch GetErrorType(err) {
	case ErrorTypeTransient, ErrorTypeTimeout:
		return true
	case ErrorTypePermanent, ErrorTypeDisconnected:
		return false
	default:
		return false
	}
}
