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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readLog struct {
	err  error
	data []byte
	mu   sync.Mutex
}

func (r *readLog) onRead(data []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, data...)
	if err != nil {
		r.err = err
	}
}

func (r *readLog) snapshot() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.data), r.err
}

func TestOpenerFunc(t *testing.T) {
	t.Parallel()

	var gotPath string
	opener := OpenerFunc(func(path string, onRead ReadFunc) (Transport, error) {
		gotPath = path
		return NewMockTransport(path, onRead), nil
	})

	transport, err := opener.Open("/dev/ttyACM0", func([]byte, error) {})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", gotPath)
	assert.Equal(t, "/dev/ttyACM0", transport.Path())
	assert.Equal(t, TransportMock, transport.Type())
}

func TestMockTransport_RespondsAsynchronously(t *testing.T) {
	t.Parallel()

	log := &readLog{}
	transport := NewMockTransport("/dev/ttyUSB0", log.onRead)
	transport.Responder = func(frame []byte) [][]byte {
		if frame[0] != '9' {
			return nil
		}
		return [][]byte{[]byte("rfid-"), []byte("util-1\r\n")}
	}

	require.NoError(t, transport.Write([]byte("9\r\n")))
	require.NoError(t, transport.Write([]byte("1\r\n")))

	require.Eventually(t, func() bool {
		data, _ := log.snapshot()
		return data == "rfid-util-1\r\n"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, [][]byte{[]byte("9\r\n"), []byte("1\r\n")}, transport.Writes())
}

func TestMockTransport_CloseAndFail(t *testing.T) {
	t.Parallel()

	log := &readLog{}
	transport := NewMockTransport("/dev/ttyUSB0", log.onRead)
	assert.True(t, transport.IsConnected())

	unplugged := errors.New("device not configured")
	transport.Fail(unplugged)
	transport.Fail(errors.New("second failure is dropped"))
	assert.False(t, transport.IsConnected())

	_, err := log.snapshot()
	require.ErrorIs(t, err, unplugged)

	transport.Inject([]byte("late"))
	data, _ := log.snapshot()
	assert.Empty(t, data)
	require.ErrorIs(t, transport.Write([]byte("9\r\n")), ErrTransportClosed)
	require.NoError(t, transport.Close())
}

func TestMockTransport_WriteErr(t *testing.T) {
	t.Parallel()

	transport := NewMockTransport("/dev/ttyUSB0", nil)
	transport.WriteErr = errors.New("i/o error")

	require.EqualError(t, transport.Write([]byte("9\r\n")), "i/o error")
	assert.Empty(t, transport.Writes())
}

func TestMockOpener(t *testing.T) {
	t.Parallel()

	opener := NewMockOpener()
	opener.AddDevice("/dev/ttyUSB0", nil)
	opener.AddBroken("/dev/ttyS0", nil)

	_, err := opener.Open("/dev/ttyS0", nil)
	require.EqualError(t, err, "permission denied")

	_, err = opener.Open("/dev/ttyS9", nil)
	require.Error(t, err)

	transport, err := opener.Open("/dev/ttyUSB0", nil)
	require.NoError(t, err)
	assert.Same(t, transport, opener.Transport("/dev/ttyUSB0"))
	assert.Equal(t, []string{"/dev/ttyS0", "/dev/ttyS9", "/dev/ttyUSB0"}, opener.Opened())
}
