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

package session

import (
	"fmt"
	"time"

	rfidutil "github.com/lxxxxl/rfid-util"
)

// State represents the controller lifecycle
type State int32

const (
	// StateIdle means Run has not started or has returned
	StateIdle State = iota
	// StateDiscovering means a probing pass is in progress
	StateDiscovering
	// StateConnected means a reader is confirmed and accepts commands
	StateConnected
	// StateExhausted means the last pass found no reader
	StateExhausted
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateConnected:
		return "connected"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Info describes the confirmed session
type Info struct {
	ConnectedAt time.Time
	ID          string
	Path        string
	Firmware    string
}

// Metrics tracks controller activity
type Metrics struct {
	Probes      int64 // Candidates tried across all passes
	Passes      int64 // Discovery passes started
	Handshakes  int64 // Confirmed sessions
	Exhaustions int64 // Passes that found no reader
	Lines       int64 // Device lines dispatched
	Commands    int64 // Commands written
	Reconnects  int64 // Sessions torn down by I/O errors
}

// safeTimerStop stops a timer and drains its channel if it already fired
func safeTimerStop(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func debugf(format string, args ...any) {
	rfidutil.Logger().Debug().Msgf(format, args...)
}
