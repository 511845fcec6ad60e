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

package transport

import (
	"errors"
	"testing"

	rfidutil "github.com/lxxxxl/rfid-util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()

	permanent := errors.New("device gone")

	tests := []struct {
		wantErr   error
		name      string
		finishAt  int
		failAt    int
		wantCalls int
		wantValue int
	}{
		{name: "first attempt succeeds", finishAt: 1, wantCalls: 1, wantValue: 1},
		{name: "succeeds after retries", finishAt: 3, wantCalls: 3, wantValue: 3},
		{name: "exhausted", finishAt: 10, wantCalls: 4, wantErr: ErrRetriesExhausted},
		{name: "error stops retries", finishAt: 10, failAt: 2, wantCalls: 2, wantErr: permanent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls, retries := 0, 0
			value, err := WithRetry(RetryConfig{
				Op:         "write",
				Port:       "/dev/ttyUSB0",
				MaxRetries: 3,
				OnRetry: func() error {
					retries++
					return nil
				},
			}, func() (int, bool, error) {
				calls++
				if calls == tt.failAt {
					return 0, false, permanent
				}
				return calls, calls < tt.finishAt, nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, calls-1, retries)
		})
	}
}

func TestWithRetry_ExhaustedIsTransportError(t *testing.T) {
	t.Parallel()

	_, err := WithRetry(RetryConfig{Op: "write", Port: "COM3"}, func() (struct{}, bool, error) {
		return struct{}{}, true, nil
	})

	var transportErr *rfidutil.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "write", transportErr.Op)
	assert.Equal(t, "COM3", transportErr.Port)
	assert.True(t, rfidutil.IsRetryable(err))
}

func TestWithRetry_OnRetryError(t *testing.T) {
	t.Parallel()

	stop := errors.New("cancelled")
	calls := 0
	_, err := WithRetry(RetryConfig{MaxRetries: 5, OnRetry: func() error { return stop }},
		func() (int, bool, error) {
			calls++
			return 0, true, nil
		})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
