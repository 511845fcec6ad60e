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
	"sync"
)

// ResponderFunc returns the chunks a simulated device sends back for a frame
type ResponderFunc func(frame []byte) [][]byte

// MockTransport is an in-memory Transport for tests. Written frames are
// recorded; replies from the Responder are delivered asynchronously through
// the ReadFunc like a real read goroutine would.
type MockTransport struct {
	onRead    ReadFunc
	Responder ResponderFunc
	WriteErr  error
	path      string
	writes    [][]byte
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates a mock endpoint named path
func NewMockTransport(path string, onRead ReadFunc) *MockTransport {
	return &MockTransport{path: path, onRead: onRead}
}

// Write records frame and schedules the responder's reply
func (m *MockTransport) Write(frame []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrTransportClosed
	}
	if m.WriteErr != nil {
		err := m.WriteErr
		m.mu.Unlock()
		return err
	}
	m.writes = append(m.writes, append([]byte(nil), frame...))
	responder := m.Responder
	m.mu.Unlock()

	if responder != nil {
		if chunks := responder(frame); len(chunks) > 0 {
			go func() {
				for _, chunk := range chunks {
					m.Inject(chunk)
				}
			}()
		}
	}
	return nil
}

// Inject delivers data as if it had been read from the endpoint
func (m *MockTransport) Inject(data []byte) {
	m.mu.Lock()
	closed := m.closed
	onRead := m.onRead
	m.mu.Unlock()

	if !closed && onRead != nil {
		onRead(append([]byte(nil), data...), nil)
	}
}

// Fail simulates the endpoint disappearing, e.g. the reader being unplugged
func (m *MockTransport) Fail(err error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	onRead := m.onRead
	m.mu.Unlock()

	if onRead != nil {
		onRead(nil, err)
	}
}

// Writes returns copies of every frame written
func (m *MockTransport) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	for i, w := range m.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Close marks the transport closed; later injections are dropped
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Path returns the mock endpoint name
func (m *MockTransport) Path() string {
	return m.path
}

// IsConnected returns true until Close or Fail
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// MockOpener opens MockTransports for registered paths
type MockOpener struct {
	responders map[string]ResponderFunc
	failures   map[string]error
	opened     []string
	transports map[string]*MockTransport
	mu         sync.Mutex
}

// NewMockOpener creates an opener with no devices
func NewMockOpener() *MockOpener {
	return &MockOpener{
		responders: make(map[string]ResponderFunc),
		failures:   make(map[string]error),
		transports: make(map[string]*MockTransport),
	}
}

// AddDevice registers a path answered by responder; nil means a device that
// opens but never answers
func (o *MockOpener) AddDevice(path string, responder ResponderFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.responders[path] = responder
	delete(o.failures, path)
}

// AddBroken registers a path whose open fails with err
func (o *MockOpener) AddBroken(path string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err == nil {
		err = errors.New("permission denied")
	}
	o.failures[path] = err
	delete(o.responders, path)
}

// Open implements Opener
func (o *MockOpener) Open(path string, onRead ReadFunc) (Transport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, path)
	if err, ok := o.failures[path]; ok {
		return nil, err
	}
	responder, ok := o.responders[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such device", path)
	}

	transport := NewMockTransport(path, onRead)
	transport.Responder = responder
	o.transports[path] = transport
	return transport, nil
}

// Opened returns every path Open was called with, in order
func (o *MockOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Transport returns the most recent transport opened for path
func (o *MockOpener) Transport(path string) *MockTransport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transports[path]
}
