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

// Package uart opens serial endpoints for the reader using go.bug.st/serial.
package uart

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	rfidutil "github.com/lxxxxl/rfid-util"
	"github.com/lxxxxl/rfid-util/internal/frame"
	"github.com/lxxxxl/rfid-util/internal/transport"
	"go.bug.st/serial"
)

const (
	// DefaultReadTimeout bounds each blocking read so the pump notices Close
	DefaultReadTimeout = 100 * time.Millisecond
	readBufferSize     = 256
	maxWriteRetries    = 3
	// writeRetryDelay lets the driver drain its output buffer after a short write
	writeRetryDelay    = 2 * time.Millisecond
)

type openFunc func(path string, mode *serial.Mode) (serial.Port, error)

// Opener opens serial endpoints at the reader's line settings
type Opener struct {
	mode        *serial.Mode
	openPort    openFunc
	readTimeout time.Duration
}

// NewOpener creates an Opener for 9600 baud, 8 data bits, no parity, one
// stop bit.
func NewOpener() *Opener {
	return &Opener{
		mode: &serial.Mode{
			BaudRate: frame.BaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		openPort:    serial.Open,
		readTimeout: DefaultReadTimeout,
	}
}

// Open opens path and starts delivering reads to onRead
func (o *Opener) Open(path string, onRead rfidutil.ReadFunc) (rfidutil.Transport, error) {
	port, err := o.openPort(path, o.mode)
	if err != nil {
		return nil, rfidutil.NewTransportError("open", path, err, classify(err))
	}

	if err := port.SetReadTimeout(o.readTimeout); err != nil {
		_ = port.Close()
		return nil, rfidutil.NewTransportError("configure", path, err, rfidutil.ErrorTypeTransient)
	}

	t := &Transport{
		port:     port,
		portName: path,
		onRead:   onRead,
		done:     make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

// Transport is an open serial endpoint
type Transport struct {
	port     serial.Port
	onRead   rfidutil.ReadFunc
	done     chan struct{}
	portName string
	mu       sync.Mutex
	closed   atomic.Bool
}

// Write sends a complete frame
func (t *Transport) Write(data []byte) error {
	if t.port == nil || t.closed.Load() {
		return rfidutil.NewTransportError("write", t.portName, rfidutil.ErrTransportClosed, rfidutil.ErrorTypeDisconnected)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := data
	_, err := transport.WithRetry(transport.RetryConfig{
		Op:         "write",
		Port:       t.portName,
		MaxRetries: maxWriteRetries,
		RetryDelay: writeRetryDelay,
		OnRetry: func() error {
			if t.closed.Load() {
				return rfidutil.NewTransportError("write", t.portName, rfidutil.ErrTransportClosed, rfidutil.ErrorTypeDisconnected)
			}
			rfidutil.Logger().Debug().Str("port", t.portName).Int("remaining", len(remaining)).Msg("short write, retrying")
			return nil
		},
	}, func() (struct{}, bool, error) {
		n, err := t.port.Write(remaining)
		if err != nil {
			return struct{}{}, false, rfidutil.NewTransportError("write", t.portName, err, classify(err))
		}
		remaining = remaining[n:]
		return struct{}{}, len(remaining) > 0, nil
	})
	return err
}

// Close closes the port. The read pump exits without reporting an error.
func (t *Transport) Close() error {
	if t.port == nil || t.closed.Swap(true) {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.portName, err)
	}
	return nil
}

// Path returns the port name
func (t *Transport) Path() string {
	return t.portName
}

// IsConnected returns true until the port is closed or fails
func (t *Transport) IsConnected() bool {
	return t.port != nil && !t.closed.Load()
}

// Type returns the transport type
func (*Transport) Type() rfidutil.TransportType {
	return rfidutil.TransportUART
}

// Done is closed when the read pump has exited
func (t *Transport) Done() <-chan struct{} {
	return t.done
}

func (t *Transport) readLoop() {
	defer close(t.done)

	buf := make([]byte, readBufferSize)
	for {
		n, err := t.port.Read(buf)
		if t.closed.Load() {
			return
		}
		if err != nil {
			t.closed.Store(true)
			_ = t.port.Close()
			t.onRead(nil, rfidutil.NewTransportError("read", t.portName, err, classify(err)))
			return
		}
		if n > 0 {
			t.onRead(buf[:n], nil)
		}
	}
}

func classify(err error) rfidutil.ErrorType {
	if IsDisconnect(err) {
		return rfidutil.ErrorTypeDisconnected
	}
	return rfidutil.ErrorTypeTransient
}

// IsDisconnect reports whether err means the device went away rather than a
// configuration or permission problem.
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := portErrorCode(err); ok {
		switch code {
		case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
			return true
		case serial.PortBusy, serial.PermissionDenied, serial.InvalidSpeed,
			serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits,
			serial.InvalidTimeoutValue, serial.ErrorEnumeratingPorts, serial.FunctionNotImplemented:
			return false
		default:
			return false
		}
	}

	if isDisconnectErrno(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such device") ||
		strings.Contains(msg, "device not configured") ||
		strings.Contains(msg, "input/output error")
}

// portErrorCode extracts the serial library error code. The library returns
// PortError both by value and by pointer.
func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var ptr *serial.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code(), true
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val.Code(), true
	}
	return 0, false
}
