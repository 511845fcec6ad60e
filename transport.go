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

// Transport is an open serial endpoint. It is owned by exactly one component
// at a time: the Prober while probing, the session once confirmed.
type Transport interface {
	// Write sends a complete frame
	Write(frame []byte) error

	// Close closes the endpoint and stops read delivery
	Close() error

	// Path returns the endpoint name the transport was opened with
	Path() string

	// IsConnected returns true until Close is called or the endpoint fails
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// ReadFunc receives bytes read from an endpoint. A non-nil err means the
// endpoint failed and no further calls follow. Implementations must not
// block for long: it is called from the transport's read goroutine.
type ReadFunc func(data []byte, err error)

// Opener opens candidate endpoints
type Opener interface {
	Open(path string, onRead ReadFunc) (Transport, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(path string, onRead ReadFunc) (Transport, error)

// Open calls f
func (f OpenerFunc) Open(path string, onRead ReadFunc) (Transport, error) {
	return f(path, onRead)
}
