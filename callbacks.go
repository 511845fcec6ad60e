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

// Status texts pushed to the presentation layer
const (
	StatusLooking        = "Looking for reader..."
	StatusNotFound       = "Reader not found"
	StatusConnected      = "Reader connected"
	StatusWaitingForCard = "Waiting for card"
	StatusDone           = "Operation done"
	StatusFailed         = "Operation failed"
)

// Callbacks receives notifications for the presentation layer. Nil fields are
// skipped. All callbacks run on the session goroutine and must not block.
type Callbacks struct {
	OnStatus      func(text string)
	OnUID         func(uid string)
	OnSectorRow   func(index int, hex string)
	OnTextPayload func(text string, err error)
}

func (c *Callbacks) status(text string) {
	if c != nil && c.OnStatus != nil {
		c.OnStatus(text)
	}
}

func (c *Callbacks) uid(uid string) {
	if c != nil && c.OnUID != nil {
		c.OnUID(uid)
	}
}

func (c *Callbacks) sectorRow(index int, hex string) {
	if c != nil && c.OnSectorRow != nil {
		c.OnSectorRow(index, hex)
	}
}

func (c *Callbacks) textPayload(text string, err error) {
	if c != nil && c.OnTextPayload != nil {
		c.OnTextPayload(text, err)
	}
}

// Status pushes a status text through OnStatus
func (c *Callbacks) Status(text string) {
	c.status(text)
}
