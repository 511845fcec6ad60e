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

package frame

// Line terminator bytes shared by both directions of the protocol.
const (
	CR = 0x0D // Carriage return, first trailer byte on host frames
	LF = 0x0A // Line feed, terminates every device line
)

// Host frame layout limits
const (
	TagLength     = 1  // Every host frame starts with a single tag byte
	TrailerLength = 2  // CR LF
	MaxPayload    = 17 // Largest payload (block address + 16 data bytes)
)

// BaudRate is the only line speed the reader firmware speaks.
const BaudRate = 9600

// Trailer terminates every frame sent to the reader.
var Trailer = []byte{CR, LF}
